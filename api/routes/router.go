package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/addresses"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/wishlist"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// redisStore is the Redis surface used by idempotency, rate limiting and readiness.
type redisStore interface {
	redis.IdempotencyStore
	redis.Pinger
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FixedWindow(ctx context.Context, scope string, limit int64, window time.Duration) (redis.RateWindow, error)
}

// Params carries everything the router mounts.
type Params struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          redisStore
	SessionChecker session.AccessSessionChecker
	Gatherer       prometheus.Gatherer
	HTTPMetrics    *metrics.HTTPMetrics

	Auth       auth.Service
	Categories categories.Service
	Products   products.Service
	Cart       cart.Service
	Wishlist   wishlist.Service
	Addresses  addresses.Service
	Orders     orders.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	limits := cfg.RateLimit
	loginPolicy := middleware.RateLimitPolicy{
		Name:       "login",
		Window:     limits.LoginWindow,
		IPLimit:    limits.LoginIPLimit,
		EmailLimit: limits.LoginEmailLimit,
	}
	registerPolicy := middleware.RateLimitPolicy{
		Name:       "register",
		Window:     limits.RegisterWindow,
		IPLimit:    limits.RegisterIPLimit,
		EmailLimit: limits.RegisterEmailLimit,
	}
	checkoutPolicy := middleware.RateLimitPolicy{
		Name:      "checkout",
		Window:    limits.CheckoutWindow,
		UserLimit: limits.CheckoutUserLimit,
	}

	deps := map[string]controllers.Pinger{"db": p.DB}
	if p.Redis != nil {
		deps["redis"] = p.Redis
	}
	health := func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	}
	r.Route("/health", health)
	r.Method(http.MethodGet, "/metrics", controllers.Metrics(p.Gatherer))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/health", health)

		r.Route("/auth", func(r chi.Router) {
			r.With(
				middleware.RateLimit(registerPolicy, p.Redis, logg),
				middleware.Idempotency(p.Redis, logg),
			).Post("/register", controllers.AuthRegister(p.Auth, logg))
			r.With(middleware.RateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(p.Auth, logg))
		})

		r.Get("/categories", controllers.CategoryList(p.Categories, logg))
		r.Get("/products", controllers.ProductList(p.Products, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(p.Products, logg))

		// Signed-in shopper routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
			r.Use(middleware.Idempotency(p.Redis, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(p.Cart, logg))
				r.Post("/", controllers.CartAdd(p.Cart, logg))
				r.Put("/", controllers.CartUpdate(p.Cart, logg))
				r.Delete("/", controllers.CartRemove(p.Cart, logg))
				r.Delete("/all", controllers.CartClear(p.Cart, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistGet(p.Wishlist, logg))
				r.Post("/", controllers.WishlistAdd(p.Wishlist, logg))
				r.Delete("/", controllers.WishlistRemove(p.Wishlist, logg))
				r.Post("/move-to-cart", controllers.WishlistMoveToCart(p.Wishlist, logg))
			})

			r.Route("/user/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(p.Addresses, logg))
				r.Post("/", controllers.AddressCreate(p.Addresses, logg))
				r.Put("/", controllers.AddressUpdate(p.Addresses, logg))
				r.Delete("/", controllers.AddressDelete(p.Addresses, logg))
				r.Patch("/{addressId}/default", controllers.AddressSetDefault(p.Addresses, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(middleware.RateLimit(checkoutPolicy, p.Redis, logg)).Post("/", controllers.OrderCreate(p.Orders, logg))
				r.Get("/", controllers.OrderList(p.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(p.Orders, logg))
				r.With(middleware.RequireRole(logg, enums.RoleAdmin)).Patch("/{orderId}", controllers.AdminOrderUpdate(p.Orders, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
			r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
			r.Use(middleware.Idempotency(p.Redis, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(p.Orders, logg))
				r.Get("/{orderId}", controllers.AdminOrderDetail(p.Orders, logg))
				r.Patch("/{orderId}", controllers.AdminOrderUpdate(p.Orders, logg))
			})
			r.Post("/categories", controllers.AdminCategoryCreate(p.Categories, logg))
			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.AdminProductCreate(p.Products, logg))
				r.Patch("/{productId}", controllers.AdminProductUpdate(p.Products, logg))
				r.Delete("/{productId}", controllers.AdminProductDelete(p.Products, logg))
			})
		})
	})

	return r
}
