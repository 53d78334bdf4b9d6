package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adriancampa/storeloom-backend/api/controllers"
	ordercontrollers "github.com/adriancampa/storeloom-backend/api/controllers/orders"
	webhookcontrollers "github.com/adriancampa/storeloom-backend/api/controllers/webhooks"
	"github.com/adriancampa/storeloom-backend/api/middleware"
	"github.com/adriancampa/storeloom-backend/internal/auth"
	"github.com/adriancampa/storeloom-backend/internal/cart"
	checkoutsvc "github.com/adriancampa/storeloom-backend/internal/checkout"
	"github.com/adriancampa/storeloom-backend/internal/exports"
	"github.com/adriancampa/storeloom-backend/internal/notifications"
	"github.com/adriancampa/storeloom-backend/internal/orders"
	"github.com/adriancampa/storeloom-backend/internal/products"
	"github.com/adriancampa/storeloom-backend/internal/tenants"
	stripewebhook "github.com/adriancampa/storeloom-backend/internal/webhooks/stripe"
	"github.com/adriancampa/storeloom-backend/pkg/config"
	"github.com/adriancampa/storeloom-backend/pkg/db"
	"github.com/adriancampa/storeloom-backend/pkg/enums"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
	"github.com/adriancampa/storeloom-backend/pkg/metrics"
	"github.com/adriancampa/storeloom-backend/pkg/redis"
	"github.com/adriancampa/storeloom-backend/pkg/stripe"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	StripeClient *stripe.Client
	HTTPMetrics  *metrics.HTTPMetrics
	Registry     *prometheus.Registry

	Auth          auth.Service
	Tenants       tenants.Service
	Products      products.Service
	Cart          cart.Service
	Checkout      checkoutsvc.Service
	Orders        orders.Service
	Notifications notifications.Service
	Exports       exports.Service
	StripeEvents  stripewebhook.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	var redisP redis.Pinger
	var idemStore redis.IdempotencyStore
	if deps.Redis != nil {
		redisP = deps.Redis
		idemStore = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisP))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.StripeEvents, deps.StripeClient, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
	})

	staffRoles := []string{
		string(enums.MemberRoleOwner),
		string(enums.MemberRoleAdmin),
		string(enums.MemberRoleStaff),
	}
	adminRoles := staffRoles[:2]

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/auth/me", controllers.AuthProfile(deps.Auth, logg))

		r.Post("/tenants", controllers.TenantCreate(deps.Tenants, logg))
		r.Route("/tenants/me", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, staffRoles...))
			r.Get("/", controllers.TenantProfile(deps.Tenants, logg))
			r.Patch("/", controllers.TenantUpdate(deps.Tenants, logg))
			r.Get("/members", controllers.TenantMembers(deps.Tenants, logg))
			r.With(middleware.RequireRole(logg, adminRoles...)).
				Post("/members", controllers.TenantAddMember(deps.Tenants, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.Products, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, staffRoles...))
				r.Post("/", controllers.ProductCreate(deps.Products, logg))
				r.Patch("/{productId}", controllers.ProductUpdate(deps.Products, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Put("/items/{productId}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/mine", ordercontrollers.ListMine(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, staffRoles...))
				r.Get("/", ordercontrollers.List(deps.Orders, logg))
				r.Get("/export.csv", ordercontrollers.ExportCSV(deps.Exports, logg))
				r.Post("/{orderId}/confirm", ordercontrollers.Confirm(deps.Orders, logg))
				r.Post("/{orderId}/ship", ordercontrollers.Ship(deps.Orders, logg))
				r.Post("/{orderId}/deliver", ordercontrollers.Deliver(deps.Orders, logg))
				r.Post("/{orderId}/cancel", ordercontrollers.Cancel(deps.Orders, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
		})
	})

	return r
}
