package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/addresses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
)

// Field rules live in the addresses package; the request structs only cap sizes.
type createAddressRequest struct {
	Type      string  `json:"type" validate:"omitempty,max=10"`
	Name      string  `json:"name" validate:"required,max=100"`
	Phone     string  `json:"phone" validate:"required,max=20"`
	Line1     string  `json:"line1" validate:"required,max=200"`
	Line2     *string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City      string  `json:"city" validate:"required,max=100"`
	State     string  `json:"state" validate:"required,max=100"`
	Pincode   string  `json:"pincode" validate:"required,max=10"`
	IsDefault bool    `json:"is_default"`
}

type updateAddressRequest struct {
	ID        uuid.UUID              `json:"id" validate:"required"`
	Type      *string                `json:"type,omitempty" validate:"omitempty,max=10"`
	Name      *string                `json:"name,omitempty" validate:"omitempty,max=100"`
	Phone     *string                `json:"phone,omitempty" validate:"omitempty,max=20"`
	Line1     *string                `json:"line1,omitempty" validate:"omitempty,max=200"`
	Line2     types.Nullable[string] `json:"line2"`
	City      *string                `json:"city,omitempty" validate:"omitempty,max=100"`
	State     *string                `json:"state,omitempty" validate:"omitempty,max=100"`
	Pincode   *string                `json:"pincode,omitempty" validate:"omitempty,max=10"`
	IsDefault *bool                  `json:"is_default,omitempty"`
}

func AddressList(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AddressCreate saves a new address. The first address is always the default.
func AddressCreate(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body createAddressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), userID, addresses.CreateInput{
			Type:      body.Type,
			Name:      body.Name,
			Phone:     body.Phone,
			Line1:     body.Line1,
			Line2:     body.Line2,
			City:      body.City,
			State:     body.State,
			Pincode:   body.Pincode,
			IsDefault: body.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "address added", result)
	}
}

func AddressUpdate(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateAddressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Update(r.Context(), userID, body.ID, addresses.UpdateInput{
			Type:      body.Type,
			Name:      body.Name,
			Phone:     body.Phone,
			Line1:     body.Line1,
			Line2:     body.Line2,
			City:      body.City,
			State:     body.State,
			Pincode:   body.Pincode,
			IsDefault: body.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "address updated", result)
	}
}

// AddressDelete removes the address named by the id query parameter.
// Deleting the default promotes the oldest remaining address.
func AddressDelete(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addressID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "id query parameter must be a valid uuid"))
			return
		}
		result, err := svc.Delete(r.Context(), userID, addressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "address deleted", result)
	}
}

func AddressSetDefault(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addressID, err := validators.ParseUUIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.SetDefault(r.Context(), userID, addressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "default address updated", result)
	}
}
