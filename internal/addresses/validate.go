package addresses

import (
	"regexp"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

var validate = newValidator()

type addressRecord struct {
	Name    string `validate:"required,max=100"`
	Phone   string `validate:"required,phone"`
	Line1   string `validate:"required,max=200"`
	Line2   string `validate:"max=200"`
	City    string `validate:"required,max=100"`
	State   string `validate:"required,max=100"`
	Pincode string `validate:"required,alphanum,min=4,max=10"`
}

var fieldNames = map[string]string{
	"Name":    "name",
	"Phone":   "phone",
	"Line1":   "line1",
	"Line2":   "line2",
	"City":    "city",
	"State":   "state",
	"Pincode": "pincode",
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

func validateAddress(addr models.Address) error {
	record := addressRecord{
		Name:    addr.Name,
		Phone:   addr.Phone,
		Line1:   addr.Line1,
		City:    addr.City,
		State:   addr.State,
		Pincode: addr.Pincode,
	}
	if addr.Line2 != nil {
		record.Line2 = *addr.Line2
	}
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address")
	}
	details := map[string]string{}
	for _, fe := range errs {
		details[fieldNames[fe.StructField()]] = message(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid address").WithDetails(details)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "is too long"
	case "phone":
		return "must be 10 to 15 digits with an optional leading +"
	case "alphanum", "min":
		return "must be 4 to 10 letters or digits"
	}
	return "is invalid"
}
