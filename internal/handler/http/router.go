package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomeriko7/finalProject-sub000/internal/auth"
	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	"github.com/tomeriko7/finalProject-sub000/internal/service"
	"github.com/tomeriko7/finalProject-sub000/pkg/health"
	"github.com/tomeriko7/finalProject-sub000/pkg/middleware"
)

// RouterConfig bundles everything the router needs.
type RouterConfig struct {
	Catalog        *service.CatalogService
	Cart           *service.CartService
	Guest          *service.GuestService
	Favorites      *service.FavoritesService
	Orders         *service.OrderService
	Users          *service.UserService
	Sync           *service.SyncService
	JWTManager     *auth.JWTManager
	HealthHandler  *health.Handler
	Logger         *slog.Logger
	Environment    string
	AllowedOrigins []string
	PprofCIDRs     []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Environment:    cfg.Environment,
	}))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	validate := tokenValidator(cfg.JWTManager)

	productHandler := NewProductHandler(cfg.Catalog, cfg.Logger)
	cartHandler := NewCartHandler(cfg.Cart, cfg.Guest, cfg.Logger)
	favoritesHandler := NewFavoritesHandler(cfg.Favorites, cfg.Guest, cfg.Logger)
	authHandler := NewAuthHandler(cfg.Users, cfg.Logger)
	userHandler := NewUserHandler(cfg.Users, cfg.Logger)
	orderHandler := NewOrderHandler(cfg.Orders, cfg.Logger)
	syncHandler := NewSyncHandler(cfg.Sync, cfg.Logger)
	adminHandler := NewAdminHandler(cfg.Catalog, cfg.Orders, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public catalog.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60))
			r.Get("/products", productHandler.List)
			r.Get("/products/slug/{slug}", productHandler.GetBySlug)
			r.Get("/products/{productID}", productHandler.Get)
		})

		// Auth.
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(validate))
			r.Post("/auth/logout", authHandler.Logout)
		})

		// Dual-path shopper endpoints: a valid bearer token routes to
		// the authoritative stores, a guest token to the Redis holding
		// area. The branch is re-evaluated per request.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(validate))

			r.Get("/cart", cartHandler.Get)
			r.Delete("/cart", cartHandler.Clear)
			r.Post("/cart/items", cartHandler.AddItem)
			r.Put("/cart/items/{itemID}", cartHandler.UpdateItem)
			r.Delete("/cart/items/{itemID}", cartHandler.RemoveItem)

			r.Get("/favorites", favoritesHandler.List)
			r.Delete("/favorites", favoritesHandler.Clear)
			r.Post("/favorites/{productID}", favoritesHandler.Add)
			r.Delete("/favorites/{productID}", favoritesHandler.Remove)
			r.Post("/favorites/{productID}/toggle", favoritesHandler.Toggle)
			r.Put("/favorites/{productID}/quantity", favoritesHandler.SetQuantity)
		})

		// Authenticated shopper endpoints.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(validate))

			r.Get("/users/me", userHandler.Me)
			r.Put("/users/me", userHandler.UpdateMe)

			r.Post("/orders", orderHandler.Create)
			r.Get("/orders", orderHandler.List)
			r.Get("/orders/{orderID}", orderHandler.Get)

			r.Post("/sync", syncHandler.Reconcile)
		})

		// Admin back-office.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(validate))
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Get("/admin/products", adminHandler.ListProducts)
			r.Post("/admin/products", adminHandler.CreateProduct)
			r.Get("/admin/products/{productID}", adminHandler.GetProduct)
			r.Put("/admin/products/{productID}", adminHandler.UpdateProduct)
			r.Delete("/admin/products/{productID}", adminHandler.DeleteProduct)
			r.Post("/admin/products/{productID}/stock", adminHandler.AdjustStock)

			r.Get("/admin/orders", adminHandler.ListOrders)
			r.Get("/admin/orders/{orderID}", adminHandler.GetOrder)
			r.Put("/admin/orders/{orderID}/status", adminHandler.UpdateOrderStatus)
		})
	})

	return r
}

// tokenValidator bridges the JWT manager into the auth middleware.
func tokenValidator(m *auth.JWTManager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := m.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}
}
