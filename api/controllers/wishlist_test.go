package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/wishlist"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubWishlistService struct {
	view  *wishlist.View
	move  *wishlist.MoveResult
	err   error
	calls []uuid.UUID
}

func (s *stubWishlistService) List(ctx context.Context, userID uuid.UUID) (*wishlist.View, error) {
	return s.view, s.err
}

func (s *stubWishlistService) Add(ctx context.Context, userID, productID uuid.UUID) (*wishlist.View, error) {
	s.calls = append(s.calls, productID)
	return s.view, s.err
}

func (s *stubWishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) (*wishlist.View, error) {
	s.calls = append(s.calls, productID)
	return s.view, s.err
}

func (s *stubWishlistService) MoveToCart(ctx context.Context, userID, productID uuid.UUID) (*wishlist.MoveResult, error) {
	s.calls = append(s.calls, productID)
	return s.move, s.err
}

func TestWishlistAdd(t *testing.T) {
	svc := &stubWishlistService{view: &wishlist.View{Count: 1}}
	productID := uuid.New()

	resp := httptest.NewRecorder()
	WishlistAdd(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/wishlist", `{"product_id":"`+productID.String()+`"}`, uuid.New()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.calls) != 1 || svc.calls[0] != productID {
		t.Fatalf("unexpected calls %v", svc.calls)
	}
}

func TestWishlistAddUnknownProduct(t *testing.T) {
	svc := &stubWishlistService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	resp := httptest.NewRecorder()
	WishlistAdd(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/wishlist", `{"product_id":"`+uuid.NewString()+`"}`, uuid.New()))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestWishlistRemoveAcceptsSnakeCaseQuery(t *testing.T) {
	svc := &stubWishlistService{view: &wishlist.View{}}
	productID := uuid.New()

	resp := httptest.NewRecorder()
	WishlistRemove(svc, nil).ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/wishlist?product_id="+productID.String(), "", uuid.New()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.calls) != 1 || svc.calls[0] != productID {
		t.Fatalf("unexpected calls %v", svc.calls)
	}
}

func TestWishlistMoveToCart(t *testing.T) {
	svc := &stubWishlistService{move: &wishlist.MoveResult{}}
	resp := httptest.NewRecorder()
	WishlistMoveToCart(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/wishlist/move-to-cart", `{"product_id":"`+uuid.NewString()+`"}`, uuid.New()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestWishlistAddCamelCaseBody(t *testing.T) {
	svc := &stubWishlistService{view: &wishlist.View{Count: 1}}
	productID := uuid.New()

	resp := httptest.NewRecorder()
	WishlistAdd(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/wishlist", `{"productId":"`+productID.String()+`"}`, uuid.New()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.calls) != 1 || svc.calls[0] != productID {
		t.Fatalf("unexpected calls %v", svc.calls)
	}
}
