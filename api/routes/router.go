package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orlie/affiliatehub-backend/api/controllers"
	"github.com/orlie/affiliatehub-backend/api/middleware"
	"github.com/orlie/affiliatehub-backend/internal/accounts"
	"github.com/orlie/affiliatehub-backend/internal/analytics"
	claimsvc "github.com/orlie/affiliatehub-backend/internal/claims"
	productsvc "github.com/orlie/affiliatehub-backend/internal/products"
	"github.com/orlie/affiliatehub-backend/pkg/config"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
	"github.com/orlie/affiliatehub-backend/pkg/logger"
	"github.com/orlie/affiliatehub-backend/pkg/metrics"
	"github.com/orlie/affiliatehub-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	Redis   *redis.Client
	Session middleware.AccessSessionChecker

	Accounts  accounts.Service
	Products  productsvc.Service
	Claims    claimsvc.Service
	Analytics analytics.Service

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	// Pingers surfaced on /health/ready.
	ReadyChecks map[string]controllers.Pinger
}

// importBodyLimit bounds CSV uploads well above the row limit so oversized
// files fail fast at the transport.
const importBodyLimit = 8 << 20

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadyChecks))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.Register(deps.Accounts, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.Login(deps.Accounts, logg))
		r.Post("/refresh", controllers.Refresh(deps.Accounts, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/password-reset", controllers.RequestPasswordReset(deps.Accounts, cfg.App.IsDev(), logg))
		r.Post("/password-reset/confirm", controllers.ConfirmPasswordReset(deps.Accounts, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Session, logg))
			r.Post("/logout", controllers.Logout(deps.Accounts, logg))
		})
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.RegisterAdmin(deps.Accounts, logg))
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Session, logg))

		r.Get("/me", controllers.Me(deps.Accounts, logg))
		r.Patch("/me", controllers.UpdateMe(deps.Accounts, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Get("/{productID}", controllers.GetProduct(deps.Products, logg))
			r.Get("/{productID}/eligibility", controllers.CheckEligibility(deps.Claims, logg))
			r.Post("/{productID}/claims", controllers.CreateClaim(deps.Claims, logg))
		})

		r.Route("/claims", func(r chi.Router) {
			r.Get("/", controllers.ListMyClaims(deps.Claims, logg))
			r.Post("/{claimID}/content", controllers.SubmitContent(deps.Claims, logg))
			r.Get("/{claimID}/qr", controllers.ClaimQR(deps.Claims, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Session, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(deps.Products, logg))
			r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
			r.Post("/import", controllers.AdminImportProducts(deps.Products, importBodyLimit, logg))
			r.Get("/{productID}", controllers.AdminGetProduct(deps.Products, logg))
			r.Patch("/{productID}", controllers.AdminUpdateProduct(deps.Products, logg))
			r.Delete("/{productID}", controllers.AdminDeleteProduct(deps.Products, logg))
			r.Post("/{productID}/restore", controllers.AdminRestoreProduct(deps.Products, logg))
		})

		r.Route("/claims", func(r chi.Router) {
			r.Get("/", controllers.AdminListClaims(deps.Claims, logg))
			r.Post("/bulk-status", controllers.AdminBulkSetClaimStatus(deps.Claims, logg))
			r.Patch("/{claimID}/status", controllers.AdminSetClaimStatus(deps.Claims, logg))
		})

		r.Route("/affiliates", func(r chi.Router) {
			r.Get("/", controllers.AdminListAffiliates(deps.Accounts, logg))
			r.Patch("/{affiliateID}/status", controllers.AdminSetAffiliateStatus(deps.Accounts, logg))
		})

		r.Get("/analytics/dashboard", controllers.AdminDashboard(deps.Analytics, logg))
	})

	return r
}
