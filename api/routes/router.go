package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studiosite/studiosite-backend/api/controllers"
	"github.com/studiosite/studiosite-backend/api/middleware"
	"github.com/studiosite/studiosite-backend/internal/auth"
	"github.com/studiosite/studiosite-backend/internal/pricing"
	product "github.com/studiosite/studiosite-backend/internal/products"
	"github.com/studiosite/studiosite-backend/internal/projects"
	"github.com/studiosite/studiosite-backend/internal/services"
	"github.com/studiosite/studiosite-backend/internal/showcase"
	"github.com/studiosite/studiosite-backend/internal/team"
	"github.com/studiosite/studiosite-backend/internal/users"
	"github.com/studiosite/studiosite-backend/pkg/config"
	"github.com/studiosite/studiosite-backend/pkg/logger"
	"github.com/studiosite/studiosite-backend/pkg/metrics"
)

// Params carries everything the HTTP surface needs. Nil services answer 500
// from their controllers; nil infrastructure disables the matching feature.
type Params struct {
	Config *config.Config
	Logger *logger.Logger

	Mongo controllers.Pinger
	Redis controllers.Pinger

	RateLimits  middleware.RateLimitStore
	Idempotency middleware.IdempotencyStore
	Identity    middleware.IdentityParams
	Guards      *middleware.Guards

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Auth          auth.Service
	PasswordReset auth.PasswordResetService
	Users         users.Service
	Products      product.Service
	Showcase      showcase.Service
	Pricing       pricing.Service
	Projects      projects.Service
	Services      services.Service
	Team          team.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger
	guards := p.Guards
	if guards == nil {
		guards = middleware.NewGuards(middleware.GuardParams{Logger: logg})
	}
	secureCookie := cfg.App.IsProd()
	idem := middleware.Idempotency(p.Idempotency, cfg.Redis.IdempotencyTTL, logg)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
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
	resetPolicy := middleware.NewAuthRateLimitPolicy(
		"reset",
		cfg.AuthRateLimit.ResetWindow,
		cfg.AuthRateLimit.ResetIPLimit,
		cfg.AuthRateLimit.ResetEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, map[string]controllers.Pinger{
			"mongo": p.Mongo,
			"redis": p.Redis,
		}))
	})
	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.ResolveIdentity(p.Identity))

		r.With(middleware.AuthRateLimit(registerPolicy, p.RateLimits, logg), idem).Post("/register-cookie", controllers.AuthRegister(p.Auth, secureCookie, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.RateLimits, logg)).Post("/login-cookie", controllers.AuthLogin(p.Auth, secureCookie, logg))
		r.Post("/google-login", controllers.AuthGoogleLogin(p.Auth, secureCookie, logg))
		r.With(idem).Post("/google-register", controllers.AuthGoogleRegister(p.Auth, secureCookie, logg))
		r.Post("/logout", controllers.AuthLogout(secureCookie))
		r.Get("/profile", controllers.AuthProfile(p.Auth, logg))
		r.With(guards.RequireAnyIdentity).Get("/me", controllers.AuthMe(p.Auth, logg))
		r.With(middleware.AuthRateLimit(resetPolicy, p.RateLimits, logg)).Post("/forgot-password", controllers.ForgotPassword(p.PasswordReset, logg))
		r.With(middleware.AuthRateLimit(resetPolicy, p.RateLimits, logg)).Post("/reset-password", controllers.ResetPassword(p.PasswordReset, logg))
		r.With(guards.RequireAdmin, idem).Post("/create-user", controllers.AdminCreateUser(p.Auth, logg))

		r.Route("/users", func(r chi.Router) {
			ownerOrAdmin := guards.RequireOwnerOrAdmin(controllers.UserOwner)

			r.With(guards.RequireAdmin).Get("/", controllers.UsersList(p.Users, logg))
			r.With(guards.RequireAdmin).Get("/status/all", controllers.UsersListStatuses(p.Users, logg))
			r.With(guards.RequireAdmin).Get("/role/all", controllers.UsersListRoles(p.Users, logg))
			r.With(guards.RequireAdmin).Get("/{id}/status", controllers.UsersGetStatus(p.Users, logg))
			r.With(guards.RequireAdmin).Patch("/{id}/status", controllers.UsersUpdateStatus(p.Users, logg))
			r.With(ownerOrAdmin).Get("/{id}/role", controllers.UsersGetRole(p.Users, logg))
			r.With(guards.RequireAdmin).Patch("/{id}/role", controllers.UsersUpdateRole(p.Users, logg))
			r.With(ownerOrAdmin).Get("/{id}", controllers.UsersGet(p.Users, logg))
			r.With(ownerOrAdmin).Put("/{id}", controllers.UsersUpdate(p.Users, logg))
			r.With(ownerOrAdmin).Patch("/{id}", controllers.UsersUpdate(p.Users, logg))
			r.With(guards.RequireAdmin).Delete("/{id}", controllers.UsersDelete(p.Users, logg))
		})

		r.Route("/products", func(r chi.Router) {
			ownerOrAdmin := guards.RequireOwnerOrAdmin(controllers.ProductOwner(p.Products))

			r.Get("/", controllers.ProductsList(p.Products, logg))
			r.Get("/{id}", controllers.ProductsGet(p.Products, logg))
			r.With(guards.RequireAnyIdentity, idem).Post("/", controllers.ProductsCreate(p.Products, logg))
			r.With(ownerOrAdmin).Put("/{id}", controllers.ProductsUpdate(p.Products, logg))
			r.With(ownerOrAdmin).Delete("/{id}", controllers.ProductsDelete(p.Products, logg))
		})

		r.Route("/products-module", func(r chi.Router) {
			r.With(guards.OptionalIdentity).Get("/", controllers.ShowcaseList(p.Showcase, logg))
			r.With(guards.RequireOwnerOrAdmin(pathOwner("userId")), idem).Post("/{userId}", controllers.ShowcaseCreate(p.Showcase, logg))
			r.With(guards.RequireAdmin).Put("/{id}", controllers.ShowcaseUpdate(p.Showcase, logg))
			r.With(guards.RequireAdmin).Delete("/{id}", controllers.ShowcaseDelete(p.Showcase, logg))
		})

		r.Route("/pricing", func(r chi.Router) {
			r.Get("/", controllers.PricingList(p.Pricing, logg))
			r.Get("/categories/{id}", controllers.PricingGetCategory(p.Pricing, logg))

			r.Group(func(r chi.Router) {
				r.Use(guards.RequireAdmin)
				r.With(idem).Post("/categories", controllers.PricingCreateCategory(p.Pricing, logg))
				r.Put("/categories/{id}", controllers.PricingUpdateCategory(p.Pricing, logg))
				r.Patch("/categories/{id}", controllers.PricingUpdateCategory(p.Pricing, logg))
				r.Delete("/categories/{id}", controllers.PricingDeleteCategory(p.Pricing, logg))
				r.With(idem).Post("/categories/{categoryId}/plans", controllers.PricingAddPlan(p.Pricing, logg))
				r.Put("/categories/{categoryId}/plans/{planId}", controllers.PricingUpdatePlan(p.Pricing, logg))
				r.Patch("/categories/{categoryId}/plans/{planId}", controllers.PricingUpdatePlan(p.Pricing, logg))
				r.Delete("/categories/{categoryId}/plans/{planId}", controllers.PricingRemovePlan(p.Pricing, logg))
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", controllers.ProjectsList(p.Projects, logg))
			r.Get("/categories/{id}", controllers.ProjectsGetCategory(p.Projects, logg))

			r.Group(func(r chi.Router) {
				r.Use(guards.RequireAdmin)
				r.With(idem).Post("/categories", controllers.ProjectsCreateCategory(p.Projects, logg))
				r.Put("/categories/{id}", controllers.ProjectsUpdateCategory(p.Projects, logg))
				r.Patch("/categories/{id}", controllers.ProjectsUpdateCategory(p.Projects, logg))
				r.Delete("/categories/{id}", controllers.ProjectsDeleteCategory(p.Projects, logg))
				r.With(idem).Post("/categories/{categoryId}/projects", controllers.ProjectsAddProject(p.Projects, logg))
				r.Put("/categories/{categoryId}/projects/{projectId}", controllers.ProjectsUpdateProject(p.Projects, logg))
				r.Patch("/categories/{categoryId}/projects/{projectId}", controllers.ProjectsUpdateProject(p.Projects, logg))
				r.Delete("/categories/{categoryId}/projects/{projectId}", controllers.ProjectsRemoveProject(p.Projects, logg))
			})
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", controllers.ServicesList(p.Services, logg))
			r.Get("/categories", controllers.ServicesCategories(p.Services, logg))
			r.Get("/category/{category}", controllers.ServicesByCategory(p.Services, logg))
			r.Get("/{id}", controllers.ServicesGet(p.Services, logg))
			r.With(guards.RequireAdmin, idem).Post("/", controllers.ServicesCreate(p.Services, logg))
			r.With(guards.RequireAdmin).Put("/{id}", controllers.ServicesUpdate(p.Services, logg))
			r.With(guards.RequireAdmin).Patch("/{id}", controllers.ServicesUpdate(p.Services, logg))
			r.With(guards.RequireAdmin).Delete("/{id}", controllers.ServicesDelete(p.Services, logg))
		})

		r.Route("/team", func(r chi.Router) {
			r.Get("/", controllers.TeamList(p.Team, logg))
			r.Get("/departments", controllers.TeamDepartments(p.Team, logg))
			r.Get("/department/{department}", controllers.TeamByDepartment(p.Team, logg))
			r.Get("/{id}", controllers.TeamGet(p.Team, logg))
			r.With(guards.RequireAdmin, idem).Post("/", controllers.TeamCreate(p.Team, logg))
			r.With(guards.RequireAdmin).Put("/{id}", controllers.TeamUpdate(p.Team, logg))
			r.With(guards.RequireAdmin).Patch("/{id}", controllers.TeamUpdate(p.Team, logg))
			r.With(guards.RequireAdmin).Delete("/{id}", controllers.TeamDelete(p.Team, logg))
			r.With(guards.RequireAdmin, idem).Post("/departments", controllers.TeamCreateDepartment(p.Team, logg))
			r.With(guards.RequireAdmin).Delete("/departments/{name}", controllers.TeamDeleteDepartment(p.Team, logg))
		})
	})

	return r
}

// pathOwner treats a URL param as the owning user id.
func pathOwner(key string) middleware.OwnerFunc {
	return func(r *http.Request) (string, error) {
		return chi.URLParam(r, key), nil
	}
}
