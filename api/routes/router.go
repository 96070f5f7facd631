package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mknind/backoffice/api/controllers"
	cartcontrollers "github.com/mknind/backoffice/api/controllers/cart"
	catalogcontrollers "github.com/mknind/backoffice/api/controllers/catalog"
	ordercontrollers "github.com/mknind/backoffice/api/controllers/orders"
	supportcontrollers "github.com/mknind/backoffice/api/controllers/support"
	"github.com/mknind/backoffice/api/middleware"
	"github.com/mknind/backoffice/internal/cart"
	"github.com/mknind/backoffice/internal/catalog"
	"github.com/mknind/backoffice/internal/orders"
	"github.com/mknind/backoffice/internal/support"
	"github.com/mknind/backoffice/pkg/config"
	"github.com/mknind/backoffice/pkg/enums"
	"github.com/mknind/backoffice/pkg/logger"
	"github.com/mknind/backoffice/pkg/metrics"
	pkgredis "github.com/mknind/backoffice/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	deps controllers.Dependencies,
	idempotencyStore pkgredis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	ordersSvc orders.Service,
	cartSvc cart.Service,
	catalogSvc catalog.Service,
	supportSvc support.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.AdminCreate(ordersSvc, logg))
			r.Get("/", ordercontrollers.AdminList(ordersSvc, logg))
			r.Get("/summary", ordercontrollers.AdminSummary(ordersSvc, logg))
			r.Post("/bulk-delete", ordercontrollers.AdminBulkDelete(ordersSvc, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", ordercontrollers.AdminDetail(ordersSvc, logg))
				r.Patch("/", ordercontrollers.AdminUpdate(ordersSvc, logg))
				r.Delete("/", ordercontrollers.AdminDelete(ordersSvc, logg))
				r.Patch("/status", ordercontrollers.AdminChangeStatus(ordersSvc, logg))
				r.Get("/invoice", ordercontrollers.AdminInvoice(ordersSvc, logg))
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", catalogcontrollers.CustomerCreate(catalogSvc, logg))
			r.Get("/", catalogcontrollers.CustomerList(catalogSvc, logg))
			r.Get("/{customerId}", catalogcontrollers.CustomerGet(catalogSvc, logg))
			r.Put("/{customerId}", catalogcontrollers.CustomerUpdate(catalogSvc, logg))
			r.Delete("/{customerId}", catalogcontrollers.CustomerDelete(catalogSvc, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", catalogcontrollers.ProductCreate(catalogSvc, logg))
			r.Get("/", catalogcontrollers.ProductList(catalogSvc, logg))
			r.Get("/{productId}", catalogcontrollers.ProductGet(catalogSvc, logg))
			r.Put("/{productId}", catalogcontrollers.ProductUpdate(catalogSvc, logg))
			r.Delete("/{productId}", catalogcontrollers.ProductDelete(catalogSvc, logg))
		})

		r.Route("/support-tickets", func(r chi.Router) {
			r.Get("/", supportcontrollers.AdminList(supportSvc, logg))
			r.Get("/customer/{customerId}", supportcontrollers.AdminListByCustomer(supportSvc, logg))
			r.Route("/{ticketId}", func(r chi.Router) {
				r.Get("/", supportcontrollers.AdminDetail(supportSvc, logg))
				r.Put("/", supportcontrollers.AdminUpdate(supportSvc, logg))
				r.Delete("/", supportcontrollers.AdminDelete(supportSvc, logg))
				r.Patch("/status", supportcontrollers.AdminChangeStatus(supportSvc, logg))
			})
		})
	})

	r.Route("/api/v1/customers/{customerId}", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.CustomerScope("customerId", logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/", catalogcontrollers.CustomerGet(catalogSvc, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.CustomerCreate(ordersSvc, logg))
			r.Get("/", ordercontrollers.CustomerList(ordersSvc, logg))
			r.Get("/{orderId}", ordercontrollers.CustomerDetail(ordersSvc, logg))
			r.Get("/{orderId}/invoice", ordercontrollers.CustomerInvoice(ordersSvc, logg))
		})

		r.Route("/support-tickets", func(r chi.Router) {
			r.Post("/", supportcontrollers.CustomerCreate(supportSvc, logg))
			r.Get("/", supportcontrollers.CustomerList(supportSvc, logg))
			r.Get("/{ticketId}", supportcontrollers.CustomerDetail(supportSvc, logg))
		})

		r.Get("/cart-wishlist", cartcontrollers.CartWishlist(cartSvc, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartSvc, logg))
			r.Post("/", cartcontrollers.CartAdd(cartSvc, logg))
			r.Put("/", cartcontrollers.CartReplace(cartSvc, logg))
			r.Delete("/", cartcontrollers.CartClear(cartSvc, logg))
			r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(cartSvc, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", cartcontrollers.WishlistFetch(cartSvc, logg))
			r.Post("/", cartcontrollers.WishlistAdd(cartSvc, logg))
			r.Put("/", cartcontrollers.WishlistReplace(cartSvc, logg))
			r.Delete("/{productId}", cartcontrollers.WishlistRemove(cartSvc, logg))
		})
	})

	return r
}
