package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/addresses"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubAddressService struct {
	result     *addresses.Result
	err        error
	created    []addresses.CreateInput
	updated    []addresses.UpdateInput
	updatedIDs []uuid.UUID
	deleted    []uuid.UUID
	defaults   []uuid.UUID
}

func (s *stubAddressService) List(ctx context.Context, userID uuid.UUID) (models.Addresses, error) {
	if s.result == nil {
		return models.Addresses{}, s.err
	}
	return s.result.Addresses, s.err
}

func (s *stubAddressService) Create(ctx context.Context, userID uuid.UUID, input addresses.CreateInput) (*addresses.Result, error) {
	s.created = append(s.created, input)
	return s.result, s.err
}

func (s *stubAddressService) Update(ctx context.Context, userID, addressID uuid.UUID, input addresses.UpdateInput) (*addresses.Result, error) {
	s.updatedIDs = append(s.updatedIDs, addressID)
	s.updated = append(s.updated, input)
	return s.result, s.err
}

func (s *stubAddressService) Delete(ctx context.Context, userID, addressID uuid.UUID) (*addresses.Result, error) {
	s.deleted = append(s.deleted, addressID)
	return s.result, s.err
}

func (s *stubAddressService) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*addresses.Result, error) {
	s.defaults = append(s.defaults, addressID)
	return s.result, s.err
}

const validAddressBody = `{"name":"Asha","phone":"+919876543210","line1":"12 MG Road","city":"Pune","state":"MH","pincode":"411001"}`

func TestAddressCreate(t *testing.T) {
	svc := &stubAddressService{result: &addresses.Result{}}
	resp := httptest.NewRecorder()
	AddressCreate(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/user/addresses", validAddressBody, uuid.New()))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.created) != 1 || svc.created[0].City != "Pune" || svc.created[0].IsDefault {
		t.Fatalf("unexpected create input %+v", svc.created)
	}
	if env := decodeEnvelope(t, resp); env.Message != "address added" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestAddressCreateMissingFields(t *testing.T) {
	svc := &stubAddressService{}
	resp := httptest.NewRecorder()
	AddressCreate(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/user/addresses", `{"name":"Asha"}`, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(svc.created) != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestAddressUpdateLine2States(t *testing.T) {
	addressID := uuid.New()
	cases := []struct {
		name      string
		body      string
		wantValid bool
		wantNil   bool
	}{
		{"omitted", `{"id":"` + addressID.String() + `","city":"Mumbai"}`, false, true},
		{"null", `{"id":"` + addressID.String() + `","line2":null}`, true, true},
		{"value", `{"id":"` + addressID.String() + `","line2":"Flat 4"}`, true, false},
	}
	for _, tc := range cases {
		svc := &stubAddressService{result: &addresses.Result{}}
		resp := httptest.NewRecorder()
		AddressUpdate(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPut, "/api/v1/user/addresses", tc.body, uuid.New()))

		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d: %s", tc.name, resp.Code, resp.Body.String())
		}
		if svc.updatedIDs[0] != addressID {
			t.Fatalf("%s: unexpected id %s", tc.name, svc.updatedIDs[0])
		}
		got := svc.updated[0].Line2
		if got.Valid != tc.wantValid || (got.Value == nil) != tc.wantNil {
			t.Fatalf("%s: unexpected line2 %+v", tc.name, got)
		}
	}
}

func TestAddressDeleteRequiresID(t *testing.T) {
	svc := &stubAddressService{result: &addresses.Result{}}
	resp := httptest.NewRecorder()
	AddressDelete(svc, nil).ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/user/addresses", "", uuid.New()))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	id := uuid.New()
	resp = httptest.NewRecorder()
	AddressDelete(svc, nil).ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/user/addresses?id="+id.String(), "", uuid.New()))
	if resp.Code != http.StatusOK || len(svc.deleted) != 1 || svc.deleted[0] != id {
		t.Fatalf("expected delete of %s, status %d calls %v", id, resp.Code, svc.deleted)
	}
}

func TestAddressSetDefaultNotFound(t *testing.T) {
	svc := &stubAddressService{err: pkgerrors.New(pkgerrors.CodeNotFound, "address not found")}
	id := uuid.New()
	req := withURLParam(authedRequest(http.MethodPatch, "/api/v1/user/addresses/"+id.String()+"/default", "", uuid.New()), "addressId", id.String())
	resp := httptest.NewRecorder()
	AddressSetDefault(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if len(svc.defaults) != 1 || svc.defaults[0] != id {
		t.Fatalf("unexpected calls %v", svc.defaults)
	}
}

func TestAddressCreateCamelCaseDefault(t *testing.T) {
	svc := &stubAddressService{result: &addresses.Result{}}
	body := `{"name":"Asha","phone":"+919876543210","line1":"12 MG Road","city":"Pune","state":"MH","pincode":"411001","isDefault":true}`
	resp := httptest.NewRecorder()
	AddressCreate(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/user/addresses", body, uuid.New()))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.created) != 1 || !svc.created[0].IsDefault {
		t.Fatalf("unexpected create input %+v", svc.created)
	}
}
