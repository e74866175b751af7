package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSONBody strictly decodes a single JSON document into dest and runs
// struct validation. Top-level camelCase keys are accepted for the snake_case
// json tags (productId for product_id). Every failure is a CodeValidation
// error whose details name the offending field where one can be identified.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body")
	}
	if len(raw) > MaxBodyBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body too large").
			WithDetails(map[string]any{"max_bytes": MaxBodyBytes})
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	}

	raw, err = foldKeys(raw)
	if err != nil {
		return err
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return decodeError(err)
	}
	if decoder.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body must contain a single JSON object")
	}

	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// foldKeys rewrites the top-level keys of a JSON object to snake_case. Input
// that is not a single object is returned untouched so the strict decoder
// reports it.
func foldKeys(raw []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return raw, nil
	}
	folded := make(map[string]json.RawMessage, len(fields))
	renamed := false
	for key, value := range fields {
		name := snakeCase(key)
		if _, dup := folded[name]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate field").
				WithDetails(map[string]any{"field": name})
		}
		folded[name] = value
		renamed = renamed || name != key
	}
	if !renamed {
		return raw, nil
	}
	out, err := json.Marshal(folded)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	return out, nil
}

// snakeCase maps productId and productID to product_id. Keys that are
// already snake_case come back unchanged.
func snakeCase(key string) string {
	var b strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func decodeError(err error) *pkgerrors.Error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed JSON").
			WithDetails(map[string]any{"offset": syntaxErr.Offset})
	case errors.As(err, &typeErr):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid field type").
			WithDetails(map[string]any{"field": typeErr.Field, "expected": typeErr.Type.String()})
	case errors.Is(err, io.ErrUnexpectedEOF):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed JSON")
	}
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown field").
			WithDetails(map[string]any{"field": strings.Trim(field, `"`)})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = validationMessage(fieldErr)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid url"
	case "alphanum":
		return "must contain only letters and digits"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid uuid"
	}
	return "is invalid"
}
