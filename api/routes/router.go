package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/foodlink-backend/api/controllers"
	"github.com/angelmondragon/foodlink-backend/api/middleware"
	"github.com/angelmondragon/foodlink-backend/internal/announcements"
	"github.com/angelmondragon/foodlink-backend/internal/catalog"
	"github.com/angelmondragon/foodlink-backend/internal/chat"
	"github.com/angelmondragon/foodlink-backend/internal/checkout"
	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/internal/inquiries"
	"github.com/angelmondragon/foodlink-backend/internal/orders"
	"github.com/angelmondragon/foodlink-backend/internal/payments"
	"github.com/angelmondragon/foodlink-backend/internal/wholesalers"
	"github.com/angelmondragon/foodlink-backend/pkg/config"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/foodlink-backend/pkg/redis"
)

// redisStore is the slice of the redis client the HTTP layer uses.
type redisStore interface {
	pkgredis.IdempotencyStore
	controllers.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient redisStore,
	storageP controllers.Pinger,
	gatherer prometheus.Gatherer,
	resolver identity.Resolver,
	catalogService catalog.Service,
	checkoutService checkout.Service,
	paymentsService payments.Service,
	ordersService orders.Service,
	inquiriesService inquiries.Service,
	chatService chat.Service,
	announcementsService announcements.Service,
	wholesalersService wholesalers.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	checks := []controllers.ReadinessCheck{{Name: "db", Pinger: dbP}, {Name: "storage", Pinger: storageP}}
	if redisClient != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks...))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	var idempotencyStore pkgredis.IdempotencyStore
	var limiter interface {
		FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	}
	if redisClient != nil {
		idempotencyStore = redisClient
		limiter = redisClient
	}
	chatPolicy := middleware.NewRateLimitPolicy("chat", cfg.Limits.ChatWindow, cfg.Limits.ChatPerWindow)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, resolver, logg),
			middleware.Idempotency(idempotencyStore, cfg.Limits.IdempotencyTTL, logg),
		)

		retailerOnly := middleware.RequireRole(logg, enums.RoleRetailer)
		wholesalerOnly := middleware.RequireRole(logg, enums.RoleWholesaler)
		inquirers := middleware.RequireRole(logg, enums.RoleRetailer, enums.RoleWholesaler)
		adminOnly := middleware.RequireRole(logg, enums.RoleAdmin)

		r.Get("/me", controllers.Me(logg))

		r.Get("/products", controllers.ProductList(catalogService, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(catalogService, logg))
		r.Get("/announcements", controllers.AnnouncementList(announcementsService, logg))

		r.With(retailerOnly).Post("/cart/validate", controllers.CartValidate(checkoutService, logg))
		r.With(retailerOnly).Post("/checkout", controllers.Checkout(checkoutService, logg))
		r.With(retailerOnly).Post("/payments/confirm", controllers.PaymentConfirm(paymentsService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.With(retailerOnly).Post("/{orderId}/cancel", controllers.OrderCancel(ordersService, logg))
		})

		r.Route("/wholesaler", func(r chi.Router) {
			r.Use(wholesalerOnly)
			r.Post("/products/{productId}/standardize-name", controllers.ProductStandardizeName(catalogService, logg))
			r.Post("/orders/{orderId}/status", controllers.OrderAdvanceStatus(ordersService, logg))
		})

		r.Route("/inquiries", func(r chi.Router) {
			r.With(inquirers).Post("/", controllers.InquiryCreate(inquiriesService, logg))
			r.With(inquirers).Get("/", controllers.InquiryList(inquiriesService, logg))
			r.Get("/{inquiryId}", controllers.InquiryDetail(inquiriesService, logg))
			r.Patch("/{inquiryId}", controllers.InquiryUpdate(inquiriesService, logg))
			r.Delete("/{inquiryId}", controllers.InquiryDelete(inquiriesService, logg))
			r.Post("/{inquiryId}/feedback", controllers.InquiryFeedback(inquiriesService, logg))
		})

		r.With(middleware.RateLimit(chatPolicy, limiter, logg)).Post("/chat", controllers.Chat(chatService, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/inquiries/{inquiryId}/answer", controllers.AdminInquiryAnswer(inquiriesService, logg))
			r.Get("/wholesalers", controllers.AdminWholesalerList(wholesalersService, logg))
			r.Post("/wholesalers/{wholesalerId}/approve", controllers.AdminWholesalerApprove(wholesalersService, logg))
			r.Post("/wholesalers/{wholesalerId}/reject", controllers.AdminWholesalerReject(wholesalersService, logg))
		})
	})

	return r
}
