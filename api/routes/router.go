package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/merchantiq/pricewise-backend/api/controllers"
	"github.com/merchantiq/pricewise-backend/api/middleware"
	authsvc "github.com/merchantiq/pricewise-backend/internal/auth"
	catalogsvc "github.com/merchantiq/pricewise-backend/internal/catalog"
	categorysvc "github.com/merchantiq/pricewise-backend/internal/categories"
	configsvc "github.com/merchantiq/pricewise-backend/internal/configfields"
	"github.com/merchantiq/pricewise-backend/internal/previews"
	reportsvc "github.com/merchantiq/pricewise-backend/internal/reports"
	scenariosvc "github.com/merchantiq/pricewise-backend/internal/scenarios"
	usersvc "github.com/merchantiq/pricewise-backend/internal/users"
	"github.com/merchantiq/pricewise-backend/pkg/auth/session"
	"github.com/merchantiq/pricewise-backend/pkg/bigquery"
	"github.com/merchantiq/pricewise-backend/pkg/config"
	"github.com/merchantiq/pricewise-backend/pkg/db"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
	"github.com/merchantiq/pricewise-backend/pkg/redis"
	"github.com/merchantiq/pricewise-backend/pkg/storage/gcs"
	"github.com/merchantiq/pricewise-backend/pkg/version"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles the wired domain services the router exposes.
type Services struct {
	Auth       *authsvc.Service
	Users      *usersvc.Service
	Categories *categorysvc.Service
	Catalog    *catalogsvc.Service
	Configs    *configsvc.Service
	Scenarios  *scenariosvc.Service
	Reports    *reportsvc.Service
	Previews   *previews.Store
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	bigqueryClient bigquery.Pinger,
	sessions sessionManager,
	metricsGatherer prometheus.Gatherer,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient, bigqueryClient))
	})
	r.Get("/version", controllers.Version(version.Resolve(cfg.Version)))
	if metricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	// Public surface consumed by the embeddable simulator and shared
	// preview links. Read-only catalog plus guest submissions.
	r.Route("/api/v1/public", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Get("/previews/{previewId}", controllers.PreviewFetch(svcs.Previews, logg))
		r.Post("/invites/accept", controllers.InviteAccept(svcs.Users, logg))
		r.Get("/categories", controllers.CategoryList(svcs.Categories, logg))
		r.Get("/services", controllers.ServiceList(svcs.Catalog, logg))
		r.Get("/tags", controllers.TagList(svcs.Catalog, logg))
		r.Post("/quote", controllers.ScenarioQuote(svcs.Scenarios, logg))
		r.Post("/guest-submissions", controllers.GuestScenarioCreate(svcs.Scenarios, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/v1/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(svcs.Categories, logg))
			r.Post("/", controllers.CategoryCreate(svcs.Categories, logg))
			r.Post("/reorder", controllers.CategoryReorder(svcs.Categories, logg))
			r.Patch("/{categoryId}", controllers.CategoryUpdate(svcs.Categories, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(svcs.Categories, logg))
		})

		r.Route("/v1/services", func(r chi.Router) {
			r.Get("/", controllers.ServiceList(svcs.Catalog, logg))
			r.Post("/", controllers.ServiceCreate(svcs.Catalog, logg))
			r.Get("/{serviceId}", controllers.ServiceDetail(svcs.Catalog, logg))
			r.Patch("/{serviceId}", controllers.ServiceUpdate(svcs.Catalog, logg))
			r.Delete("/{serviceId}", controllers.ServiceDelete(svcs.Catalog, logg))
		})
		r.Get("/v1/tags", controllers.TagList(svcs.Catalog, logg))

		r.Route("/v1/configurations", func(r chi.Router) {
			r.Get("/", controllers.DefinitionList(svcs.Configs, logg))
			r.Post("/", controllers.DefinitionCreate(svcs.Configs, logg))
			r.Get("/{definitionId}", controllers.DefinitionDetail(svcs.Configs, logg))
			r.Patch("/{definitionId}", controllers.DefinitionUpdate(svcs.Configs, logg))
			r.Delete("/{definitionId}", controllers.DefinitionDelete(svcs.Configs, logg))
		})

		r.Route("/v1/scenarios", func(r chi.Router) {
			r.Get("/", controllers.ScenarioList(svcs.Scenarios, logg))
			r.Post("/", controllers.ScenarioCreate(svcs.Scenarios, logg))
			r.Post("/quote", controllers.ScenarioQuote(svcs.Scenarios, logg))
			r.Get("/{scenarioId}", controllers.ScenarioDetail(svcs.Scenarios, logg))
			r.Post("/{scenarioId}/duplicate", controllers.ScenarioDuplicate(svcs.Scenarios, logg))
		})

		r.Route("/v1/templates", func(r chi.Router) {
			r.Get("/", controllers.TemplateList(svcs.Reports, logg))
			r.Post("/", controllers.TemplateCreate(svcs.Reports, logg))
			r.Get("/{templateId}", controllers.TemplateDetail(svcs.Reports, logg))
			r.Patch("/{templateId}", controllers.TemplateUpdate(svcs.Reports, logg))
			r.Delete("/{templateId}", controllers.TemplateDelete(svcs.Reports, logg))
		})

		r.Route("/v1/reports", func(r chi.Router) {
			r.Get("/", controllers.ReportList(svcs.Reports, logg))
			r.Post("/", controllers.ReportGenerate(svcs.Reports, logg))
			r.Get("/{reportId}", controllers.ReportDetail(svcs.Reports, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUserManager(logg))
			r.Route("/v1/users", func(r chi.Router) {
				r.Get("/", controllers.UserList(svcs.Users, logg))
				r.Post("/", controllers.UserCreate(svcs.Users, logg))
				r.Patch("/{userId}", controllers.UserUpdate(svcs.Users, logg))
			})
			r.Route("/v1/invites", func(r chi.Router) {
				r.Get("/", controllers.InviteList(svcs.Users, logg))
				r.Post("/", controllers.InviteCreate(svcs.Users, logg))
				r.Delete("/{inviteId}", controllers.InviteRevoke(svcs.Users, logg))
			})
		})
	})

	return r
}
