package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/tienda-backend/api/controllers"
	"github.com/angelmondragon/tienda-backend/api/middleware"
	"github.com/angelmondragon/tienda-backend/internal/badges"
	"github.com/angelmondragon/tienda-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/tienda-backend/internal/checkout"
	"github.com/angelmondragon/tienda-backend/internal/orders"
	"github.com/angelmondragon/tienda-backend/internal/payments"
	"github.com/angelmondragon/tienda-backend/internal/shares"
	"github.com/angelmondragon/tienda-backend/internal/shipments"
	"github.com/angelmondragon/tienda-backend/internal/users"
	"github.com/angelmondragon/tienda-backend/pkg/config"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
	"github.com/angelmondragon/tienda-backend/pkg/metrics"
)

const bytesPerMB = 1 << 20

// Services bundles what the handlers call.
type Services struct {
	Checkout  checkoutsvc.Service
	Payments  payments.Service
	Orders    orders.Service
	Shipments shipments.Service
	Cart      cart.Service
	Shares    shares.Service
	Badges    *badges.Engine
	Users     users.Service
}

// Observability carries the readiness dependencies and the metrics registry.
// Ready entries that are nil are skipped; Gatherer nil disables /metrics.
type Observability struct {
	Ready       map[string]controllers.Pinger
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svcs Services, obs Observability) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, obs.HTTPMetrics),
		middleware.CORS(cfg.App.AllowedOrigins),
	)

	staff := middleware.RequireRoles(logg, enums.UserRoleEmployee, enums.UserRoleAdmin)
	couriers := middleware.RequireRoles(logg, enums.UserRoleCourier, enums.UserRoleEmployee, enums.UserRoleAdmin)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, obs.Ready))
	})
	if cfg.Metrics.Enabled && obs.Gatherer != nil {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{}))
	}

	// Gateway return URL; the buyer arrives here without our session.
	r.Get("/verificar-pago", controllers.VerifyPayment(svcs.Payments, cfg.App.FrontendURL, cfg.Gateway.FailurePage, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/comprar", controllers.Checkout(svcs.Checkout, logg))

		r.Route("/carrito", func(r chi.Router) {
			r.Get("/", controllers.GetCart(svcs.Cart, logg))
			r.Delete("/", controllers.ClearCart(svcs.Cart, logg))
			r.Post("/agregar", controllers.AddToCart(svcs.Cart, logg))
		})

		r.Route("/ventas", func(r chi.Router) {
			r.Get("/historial/{usuario_id}", controllers.UserOrderHistory(svcs.Orders, logg))
			r.Get("/productos-comprados/{usuario_id}", controllers.PurchasedItems(svcs.Orders, logg))
			r.Post("/{id}/pago", controllers.RetryPayment(svcs.Payments, logg))

			r.Group(func(r chi.Router) {
				r.Use(staff)
				r.Get("/historial-todos", controllers.ListAllOrders(svcs.Orders, logg))
				r.Get("/{id}/detalle", controllers.OrderDetail(svcs.Orders, logg))
				r.Put("/{id}/estado", controllers.OverridePaymentStatus(svcs.Orders, logg))
				r.Put("/{id}/envio", controllers.OverrideShipmentStatus(svcs.Orders, logg))
			})
		})

		r.Get("/pedidos/{id}", controllers.GetOrder(svcs.Orders, logg))

		r.With(couriers).Post("/envio/actualizar", controllers.RecordShipmentEvent(svcs.Shipments, int64(cfg.GCS.MaxPhotoMB)*bytesPerMB, logg))
		r.Get("/envio/seguimiento/{venta_id}", controllers.GetShipment(svcs.Orders, "venta_id", logg))
		r.With(couriers).Get("/envios/pendientes", controllers.PendingShipments(svcs.Orders, logg))
		r.Get("/envios/{id}", controllers.GetShipment(svcs.Orders, "id", logg))

		r.Post("/compartir", controllers.Share(svcs.Shares, logg))
		r.Get("/insignias", controllers.ListBadges(svcs.Badges, logg))
		r.Post("/guardar-token", controllers.SavePushToken(svcs.Users, logg))
	})

	return r
}
