package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/licimar/licimar-backend/api/controllers"
	"github.com/licimar/licimar-backend/api/middleware"
	"github.com/licimar/licimar-backend/internal/auditlog"
	authsvc "github.com/licimar/licimar-backend/internal/auth"
	"github.com/licimar/licimar-backend/internal/billingrules"
	"github.com/licimar/licimar-backend/internal/catalog"
	"github.com/licimar/licimar-backend/internal/consignments"
	"github.com/licimar/licimar-backend/internal/debts"
	"github.com/licimar/licimar-backend/internal/orders"
	"github.com/licimar/licimar-backend/internal/parties"
	"github.com/licimar/licimar-backend/internal/reports"
	"github.com/licimar/licimar-backend/internal/users"
	"github.com/licimar/licimar-backend/pkg/auth/session"
	"github.com/licimar/licimar-backend/pkg/config"
	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/enums"
	"github.com/licimar/licimar-backend/pkg/logger"
	"github.com/licimar/licimar-backend/pkg/metrics"
	"github.com/licimar/licimar-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Registry *prometheus.Registry
	HTTP     *metrics.HTTPMetrics

	Auth         authsvc.Service
	Users        users.Service
	Parties      parties.Service
	Catalog      catalog.Service
	BillingRules billingrules.Service
	Orders       orders.Service
	Debts        debts.Service
	Consignments consignments.Service
	Reports      reports.Service
	Audit        auditlog.Service
}

// NewRouter assembles the full HTTP surface.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(d.HTTP),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginAccountLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Registry))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.Login(d.Auth, logg))
		r.Post("/refresh", controllers.Refresh(d.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Post("/logout", controllers.Logout(d.Auth, logg))
			r.Get("/me", controllers.Me(d.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		admin := middleware.RequireRole(enums.UserRoleAdmin, logg)

		r.Route("/users", func(r chi.Router) {
			r.Use(admin)
			r.Post("/", controllers.CreateUser(d.Users, d.Audit, logg))
			r.Get("/", controllers.ListUsers(d.Users, logg))
			r.Get("/{id}", controllers.GetUser(d.Users, logg))
			r.Patch("/{id}", controllers.UpdateUser(d.Users, d.Audit, logg))
			r.Delete("/{id}", controllers.DeleteUser(d.Users, d.Audit, logg))
		})

		r.Route("/parties", func(r chi.Router) {
			r.Post("/", controllers.CreateParty(d.Parties, d.Audit, logg))
			r.Get("/", controllers.ListParties(d.Parties, logg))
			r.Get("/{id}", controllers.GetParty(d.Parties, logg))
			r.Patch("/{id}", controllers.UpdateParty(d.Parties, d.Audit, logg))
			r.With(admin).Delete("/{id}", controllers.DeleteParty(d.Parties, d.Audit, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CreateCategory(d.Catalog, d.Audit, logg))
			r.Get("/", controllers.ListCategories(d.Catalog, logg))
			r.Get("/{id}", controllers.GetCategory(d.Catalog, logg))
			r.Patch("/{id}", controllers.UpdateCategory(d.Catalog, d.Audit, logg))
			r.With(admin).Delete("/{id}", controllers.DeleteCategory(d.Catalog, d.Audit, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(d.Catalog, d.Audit, logg))
			r.Get("/", controllers.ListProducts(d.Catalog, logg))
			r.Get("/{id}", controllers.GetProduct(d.Catalog, logg))
			r.Patch("/{id}", controllers.UpdateProduct(d.Catalog, d.Audit, logg))
			r.With(admin).Delete("/{id}", controllers.DeleteProduct(d.Catalog, d.Audit, logg))
		})

		r.Route("/billing-rules", func(r chi.Router) {
			r.Get("/", controllers.ListBillingRules(d.BillingRules, logg))
			r.Get("/{id}", controllers.GetBillingRule(d.BillingRules, logg))
			r.Post("/preview", controllers.PreviewDiscount(d.BillingRules, logg))
			r.With(admin).Post("/", controllers.CreateBillingRule(d.BillingRules, d.Audit, logg))
			r.With(admin).Patch("/{id}", controllers.UpdateBillingRule(d.BillingRules, d.Audit, logg))
			r.With(admin).Delete("/{id}", controllers.DeleteBillingRule(d.BillingRules, d.Audit, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.Checkout(d.Orders, d.Audit, logg))
			r.Get("/", controllers.ListOrders(d.Orders, logg))
			r.Get("/{id}", controllers.GetOrder(d.Orders, logg))
			r.Post("/{id}/return", controllers.Return(d.Orders, d.Audit, logg))
			r.With(admin).Delete("/{id}", controllers.DeleteOrder(d.Orders, d.Audit, logg))
		})

		r.Route("/debts", func(r chi.Router) {
			r.Post("/", controllers.RegisterDebt(d.Debts, d.Audit, logg))
			r.Get("/", controllers.ListDebts(d.Debts, logg))
			r.Get("/{id}", controllers.GetDebt(d.Debts, logg))
			r.With(admin).Delete("/{id}", controllers.DeleteDebt(d.Debts, d.Audit, logg))
		})

		r.Post("/debt-payments", controllers.RegisterPayment(d.Debts, d.Audit, logg))

		r.Route("/consignments", func(r chi.Router) {
			r.Post("/", controllers.CreateConsignment(d.Consignments, d.Audit, logg))
			r.Get("/", controllers.ListConsignments(d.Consignments, logg))
			r.Get("/{id}", controllers.GetConsignment(d.Consignments, logg))
			r.Post("/{id}/close", controllers.CloseConsignment(d.Consignments, d.Audit, logg))
			r.Post("/{id}/cancel", controllers.CancelConsignment(d.Consignments, d.Audit, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(admin)
			r.Get("/sales", controllers.SalesReport(d.Reports, logg))
			r.Get("/top-products", controllers.TopProductsReport(d.Reports, logg))
			r.Get("/vendor-performance", controllers.VendorPerformanceReport(d.Reports, logg))
			r.Get("/stock", controllers.StockReport(d.Reports, logg))
			r.Get("/dashboard", controllers.DashboardReport(d.Reports, logg))
		})

		r.Route("/audit-logs", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", controllers.ListAuditLogs(d.Audit, logg))
			r.Post("/cleanup", controllers.CleanupAuditLogs(d.Audit, logg))
		})
	})

	return r
}
