package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type memoryRedis struct {
	data   map[string]string
	counts map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", goredis.Nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key], _ = value.(string)
	return nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("idem:%s:%s", scope, id)
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryRedis) Ping(context.Context) error {
	return nil
}

func (m *memoryRedis) FixedWindow(_ context.Context, scope string, limit int64, window time.Duration) (redis.RateWindow, error) {
	m.counts[scope]++
	return redis.RateWindow{Count: m.counts[scope], Limit: limit, ResetIn: window}, nil
}

type stubProducts struct {
	products.Service
}

func (stubProducts) List(ctx context.Context, input products.ListProductsInput) (*products.ProductListResult, error) {
	return &products.ProductListResult{Items: []products.ProductDTO{}}, nil
}

type stubCart struct {
	cart.Service
}

func (stubCart) Get(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	return &cart.View{Items: []cart.LineView{}}, nil
}

type stubOrders struct {
	orders.Service
	creates int
}

func (s *stubOrders) Create(ctx context.Context, userID uuid.UUID, input orders.CreateOrderInput) (*orders.OrderDTO, error) {
	s.creates++
	return &orders.OrderDTO{ID: uuid.New()}, nil
}

func (s *stubOrders) List(ctx context.Context, input orders.AdminListInput) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (s *stubOrders) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 60},
	}
}

func newTestRouter(t *testing.T, ord *stubOrders) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	return NewRouter(Params{
		Config:         cfg,
		DB:             stubPinger{},
		Redis:          newMemoryRedis(),
		SessionChecker: stubSessionChecker{},
		Products:       stubProducts{},
		Cart:           stubCart{},
		Orders:         ord,
	}), cfg
}

func bearer(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func serve(router http.Handler, method, target, body, authz string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	router, _ := newTestRouter(t, &stubOrders{})
	for _, path := range []string{"/health/live", "/health/ready", "/api/v1/health/ready"} {
		if resp := serve(router, http.MethodGet, path, "", "", nil); resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestPublicCatalogNeedsNoAuth(t *testing.T) {
	router, _ := newTestRouter(t, &stubOrders{})
	if resp := serve(router, http.MethodGet, "/api/v1/products", "", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartRequiresAuth(t *testing.T) {
	router, cfg := newTestRouter(t, &stubOrders{})
	if resp := serve(router, http.MethodGet, "/api/v1/cart", "", "", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if resp := serve(router, http.MethodGet, "/api/v1/cart", "", bearer(t, cfg, enums.RoleUser), nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	router, cfg := newTestRouter(t, &stubOrders{})
	if resp := serve(router, http.MethodGet, "/api/v1/admin/orders", "", bearer(t, cfg, enums.RoleUser), nil); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if resp := serve(router, http.MethodGet, "/api/v1/admin/orders", "", bearer(t, cfg, enums.RoleAdmin), nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp := serve(router, http.MethodPatch, "/api/v1/orders/"+uuid.NewString(), `{"status":"SHIPPED"}`, bearer(t, cfg, enums.RoleUser), nil); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for shopper PATCH got %d", resp.Code)
	}
}

func TestOrderCreateIsIdempotent(t *testing.T) {
	ord := &stubOrders{}
	router, cfg := newTestRouter(t, ord)
	token := bearer(t, cfg, enums.RoleUser)

	if resp := serve(router, http.MethodPost, "/api/v1/orders", `{}`, token, nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key got %d", resp.Code)
	}

	headers := map[string]string{"Idempotency-Key": "checkout-1"}
	first := serve(router, http.MethodPost, "/api/v1/orders", `{}`, token, headers)
	second := serve(router, http.MethodPost, "/api/v1/orders", `{}`, token, headers)
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("expected 201 twice, got %d and %d", first.Code, second.Code)
	}
	if ord.creates != 1 {
		t.Fatalf("expected a single checkout, got %d", ord.creates)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected replayed body")
	}
}
