package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/backoffice/internal/audit"
	"github.com/frahmantamala/backoffice/internal/auth"
	"github.com/frahmantamala/backoffice/internal/category"
	"github.com/frahmantamala/backoffice/internal/pipeline"
	"github.com/frahmantamala/backoffice/internal/role"
	"github.com/frahmantamala/backoffice/internal/stats"
	"github.com/frahmantamala/backoffice/internal/transport"
	"github.com/frahmantamala/backoffice/internal/transport/middleware"
	"github.com/frahmantamala/backoffice/internal/transport/swagger"
	"github.com/frahmantamala/backoffice/internal/user"
	"github.com/frahmantamala/backoffice/pkg/metrics"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"
)

type Handlers struct {
	Auth       *auth.Handler
	Users      *user.Handler
	Roles      *role.Handler
	Categories *category.Handler
	Audit      *audit.Handler
	Stats      *stats.Handler
}

type RouterConfig struct {
	DB             *sqlx.DB
	Base           *transport.BaseHandler
	Pipeline       *pipeline.Pipeline
	Handlers       Handlers
	LoginLimiter   *middleware.IPRateLimiter
	AllowedOrigins []string
	OpenAPIPath    string
	MetricsPath    string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router chi.Router, cfg RouterConfig) {
	healthHandler := NewHealthHandler(cfg.Base, cfg.DB)
	p := cfg.Pipeline
	h := cfg.Handlers

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Metrics)
	router.Use(middleware.Logging(cfg.Logger))
	router.Use(middleware.Recovery(cfg.Base))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.MetricsPath != "" {
		router.Handle(cfg.MetricsPath, metrics.Handler())
	}
	if cfg.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, cfg.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)

		r.Route("/auth", func(ar chi.Router) {
			ar.Get("/me", p.Handle(OpAuthMe, h.Auth.Me))
			ar.Post("/logout", p.Handle(OpAuthLogout, h.Auth.Logout))
		})

		r.Route("/users", func(ur chi.Router) {
			ur.With(cfg.LoginLimiter.Limit(cfg.Base)).Post("/login", h.Auth.Login)
			ur.With(cfg.LoginLimiter.Limit(cfg.Base)).Post("/register", p.Handle(OpUsersRegister, h.Users.Register))

			ur.Get("/", p.Handle(OpUsersList, h.Users.List))
			ur.Post("/", p.Handle(OpUsersCreate, h.Users.Create))
			ur.Put("/{id}", p.Handle(OpUsersUpdate, h.Users.Update))
			ur.Delete("/{id}", p.Handle(OpUsersDelete, h.Users.Delete))
		})

		r.Route("/roles", func(rr chi.Router) {
			rr.Get("/", p.Handle(OpRolesList, h.Roles.List))
			rr.Get("/permissions", p.Handle(OpRolesCatalog, h.Roles.Catalog))
			rr.Post("/", p.Handle(OpRolesCreate, h.Roles.Create))
			rr.Put("/{id}", p.Handle(OpRolesUpdate, h.Roles.Update))
			rr.Delete("/{id}", p.Handle(OpRolesDelete, h.Roles.Delete))
			rr.Put("/{id}/privileges", p.Handle(OpRolesSetPrivileges, h.Roles.SetPrivileges))
		})

		r.Route("/categories", func(cr chi.Router) {
			cr.Get("/", p.Handle(OpCategoriesList, h.Categories.List))
			cr.Post("/", p.Handle(OpCategoriesCreate, h.Categories.Create))
			cr.Put("/{id}", p.Handle(OpCategoriesUpdate, h.Categories.Update))
			cr.Delete("/{id}", p.Handle(OpCategoriesDelete, h.Categories.Delete))
		})

		r.Post("/auditlogs", p.Handle(OpAuditLogsList, h.Audit.List))
		r.Get("/stats", p.Handle(OpStatsDashboard, h.Stats.Dashboard))
	})
}
