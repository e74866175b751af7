package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

type addCall struct {
	userID    uuid.UUID
	productID uuid.UUID
	quantity  int
}

type stubCartService struct {
	view    *cartsvc.View
	err     error
	added   []addCall
	updated []addCall
	removed []uuid.UUID
	cleared int
}

func (s *stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.View, error) {
	s.added = append(s.added, addCall{userID: userID, productID: productID, quantity: quantity})
	return s.view, s.err
}

func (s *stubCartService) Update(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.View, error) {
	s.updated = append(s.updated, addCall{userID: userID, productID: productID, quantity: quantity})
	return s.view, s.err
}

func (s *stubCartService) Remove(ctx context.Context, userID, productID uuid.UUID) (*cartsvc.View, error) {
	s.removed = append(s.removed, productID)
	return s.view, s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) (*cartsvc.View, error) {
	s.cleared++
	return s.view, s.err
}

func TestCartGetRequiresUser(t *testing.T) {
	handler := CartGet(&stubCartService{view: &cartsvc.View{}}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddDefaultsQuantityToOne(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.View{TotalItems: 1}}
	userID, productID := uuid.New(), uuid.New()

	req := authedRequest(http.MethodPost, "/api/v1/cart", `{"product_id":"`+productID.String()+`"}`, userID)
	resp := httptest.NewRecorder()
	CartAdd(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.added) != 1 || svc.added[0].quantity != 1 || svc.added[0].productID != productID || svc.added[0].userID != userID {
		t.Fatalf("unexpected add calls %+v", svc.added)
	}
	if env := decodeEnvelope(t, resp); !env.Success {
		t.Fatalf("expected success envelope")
	}
}

func TestCartAddSurfacesStockError(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock, only 2 available")}
	req := authedRequest(http.MethodPost, "/api/v1/cart", `{"product_id":"`+uuid.NewString()+`","quantity":5}`, uuid.New())
	resp := httptest.NewRecorder()
	CartAdd(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	env := decodeEnvelope(t, resp)
	if env.Error.Message != "insufficient stock, only 2 available" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
}

func TestCartUpdateRejectsZeroQuantity(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.View{}}
	req := authedRequest(http.MethodPut, "/api/v1/cart", `{"product_id":"`+uuid.NewString()+`","quantity":0}`, uuid.New())
	resp := httptest.NewRecorder()
	CartUpdate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(svc.updated) != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestCartRemoveReadsQuery(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.View{}}
	productID := uuid.New()

	req := authedRequest(http.MethodDelete, "/api/v1/cart?productId="+productID.String(), "", uuid.New())
	resp := httptest.NewRecorder()
	CartRemove(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.removed) != 1 || svc.removed[0] != productID {
		t.Fatalf("unexpected removals %v", svc.removed)
	}

	req = authedRequest(http.MethodDelete, "/api/v1/cart", "", uuid.New())
	resp = httptest.NewRecorder()
	CartRemove(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without productId, got %d", resp.Code)
	}
}

func TestCartClear(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.View{}}
	resp := httptest.NewRecorder()
	CartClear(svc, nil).ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/cart/all", "", uuid.New()))

	if resp.Code != http.StatusOK || svc.cleared != 1 {
		t.Fatalf("expected clear to run, status %d cleared %d", resp.Code, svc.cleared)
	}
}

func TestCartAcceptsCamelCaseBodies(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.View{TotalItems: 2}}
	userID, productID := uuid.New(), uuid.New()

	resp := httptest.NewRecorder()
	CartAdd(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart", `{"productId":"`+productID.String()+`","quantity":2}`, userID))
	if resp.Code != http.StatusOK {
		t.Fatalf("add: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.added) != 1 || svc.added[0].productID != productID || svc.added[0].quantity != 2 {
		t.Fatalf("unexpected add calls %+v", svc.added)
	}

	resp = httptest.NewRecorder()
	CartUpdate(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPut, "/api/v1/cart", `{"productId":"`+productID.String()+`","quantity":5}`, userID))
	if resp.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.updated) != 1 || svc.updated[0].productID != productID || svc.updated[0].quantity != 5 {
		t.Fatalf("unexpected update calls %+v", svc.updated)
	}
}
