package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tillworks/tillworks-backend/api/controllers"
	"github.com/tillworks/tillworks-backend/api/middleware"
	"github.com/tillworks/tillworks-backend/internal/inventory"
	"github.com/tillworks/tillworks-backend/internal/orders"
	"github.com/tillworks/tillworks-backend/internal/shifts"
	"github.com/tillworks/tillworks-backend/pkg/config"
	"github.com/tillworks/tillworks-backend/pkg/db"
	"github.com/tillworks/tillworks-backend/pkg/logger"
	pkgredis "github.com/tillworks/tillworks-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	promRegistry *prometheus.Registry,
	ordersService orders.Service,
	inventoryService inventory.Service,
	shiftsService shifts.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	healthDeps := map[string]controllers.Pinger{}
	if dbP != nil {
		healthDeps["database"] = dbP
	}
	if redisClient != nil {
		healthDeps["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	var idempotencyStore pkgredis.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisClient
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Post("/orders", controllers.OrderCreate(ordersService, logg))
		r.Get("/orders", controllers.OrderList(ordersService, logg))
		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Get("/", controllers.OrderDetail(ordersService, logg))
			r.Post("/items", controllers.OrderAddItem(ordersService, logg))
			r.Post("/checkout", controllers.OrderCheckout(ordersService, logg))
			r.Post("/discount", controllers.OrderDiscount(ordersService, logg))
			r.Post("/customer", controllers.OrderCustomer(ordersService, logg))
			r.Post("/capture", controllers.OrderCapture(ordersService, logg))
			r.Post("/refund", controllers.OrderRefund(ordersService, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/{variantID}", controllers.StockOnHand(inventoryService, logg))
			r.Post("/adjustments", controllers.StockAdjust(inventoryService, logg))
		})

		r.Post("/shifts", controllers.ShiftOpen(shiftsService, logg))
		r.Route("/shifts/{shiftID}", func(r chi.Router) {
			r.Post("/close", controllers.ShiftClose(shiftsService, logg))
			r.Post("/movements", controllers.ShiftMoveCash(shiftsService, logg))
			r.Post("/orders/{orderID}", controllers.ShiftAttachOrder(shiftsService, logg))
			r.Get("/report", controllers.ShiftReport(shiftsService, logg))
		})
	})

	return r
}
