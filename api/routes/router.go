package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Params lists what the API router serves. Idempotency and Gatherer may be nil.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	Ready       map[string]controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Carts     cart.Service
	Checkout  checkout.Service
	Orders    orders.Service
	Addresses address.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
	)
	if len(cfg.App.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.App.CORSOrigins))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Ready))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if p.Idempotency != nil {
			r.Use(middleware.Idempotency(p.Idempotency, logg))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.ActorBuyer))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(p.Carts, logg))
				r.Post("/", controllers.CartAdd(p.Carts, logg))
				r.Post("/checkout", controllers.CartCheckoutPreview(p.Checkout, logg))
			})
			r.Put("/cart-item/{itemId}", controllers.CartUpdateItem(p.Carts, logg))
			r.Delete("/cart-item/{itemId}", controllers.CartDeleteItem(p.Carts, logg))

			r.Route("/checkout/intents", func(r chi.Router) {
				r.Post("/", controllers.CheckoutIntentCreate(p.Checkout, logg))
				r.Post("/{intentId}/consume", controllers.CheckoutIntentConsume(p.Checkout, logg))
			})

			r.Route("/user-address", func(r chi.Router) {
				r.Get("/", controllers.AddressList(p.Addresses, logg))
				r.Post("/", controllers.AddressCreate(p.Addresses, logg))
			})

			r.Post("/orders", controllers.OrdersCreate(p.Orders, logg))
			r.Post("/orders/{orderId}/details/{detailId}/review", controllers.OrderReview(p.Orders, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.ActorBuyer, enums.ActorSeller, enums.ActorAdmin, enums.ActorPaymentChannel))
			r.Get("/orders", controllers.OrdersList(p.Orders, logg))
			r.Get("/orders/{orderId}", controllers.OrderDetail(p.Orders, logg))
			r.Post("/orders/{orderId}/transitions", controllers.OrderTransition(p.Orders, logg))
		})
	})

	return r
}
