package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/audit"
	auditPostgres "github.com/frahmantamala/backoffice/internal/audit/postgres"
	"github.com/frahmantamala/backoffice/internal/auth"
	authPostgres "github.com/frahmantamala/backoffice/internal/auth/postgres"
	"github.com/frahmantamala/backoffice/internal/category"
	categoryPostgres "github.com/frahmantamala/backoffice/internal/category/postgres"
	"github.com/frahmantamala/backoffice/internal/core/events"
	"github.com/frahmantamala/backoffice/internal/pipeline"
	"github.com/frahmantamala/backoffice/internal/role"
	rolePostgres "github.com/frahmantamala/backoffice/internal/role/postgres"
	"github.com/frahmantamala/backoffice/internal/stats"
	statsPostgres "github.com/frahmantamala/backoffice/internal/stats/postgres"
	"github.com/frahmantamala/backoffice/internal/store"
	"github.com/frahmantamala/backoffice/internal/transport"
	"github.com/frahmantamala/backoffice/internal/transport/middleware"
	"github.com/frahmantamala/backoffice/internal/transport/rest"
	"github.com/frahmantamala/backoffice/internal/transport/swagger"
	"github.com/frahmantamala/backoffice/internal/user"
	userPostgres "github.com/frahmantamala/backoffice/internal/user/postgres"
	"github.com/frahmantamala/backoffice/pkg/i18n"
	"github.com/frahmantamala/backoffice/pkg/logger"
	"github.com/frahmantamala/backoffice/pkg/metrics"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			_ = deps.DB.Close()
			os.Exit(1)
		}
	}

	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}
	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	router, err := buildRouter(cfg, db, lg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Dependencies{
		Config: cfg,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

func buildRouter(cfg *internal.Config, db *sqlx.DB, lg *slog.Logger) (*chi.Mux, error) {
	gormDB, err := store.Open(db.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	base := transport.NewBaseHandler(lg, i18n.New(cfg.I18n.DefaultLanguage))
	bus := events.NewEventBus(lg)

	recorder := audit.NewRecorder(auditPostgres.NewAuditRepository(gormDB), lg, cfg.Audit)

	authRepo := authPostgres.NewRepository(gormDB)
	resolver := auth.NewPrivilegeResolver(authRepo, lg,
		auth.WithTTL(cfg.Authorization.PermissionCacheTTL),
		auth.WithStoreTimeout(cfg.Database.QueryTimeout),
	)
	resolver.Subscribe(bus)

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration,
		auth.WithIssuer(cfg.Security.JWTIssuer))
	authService := auth.NewService(authRepo, tokens, resolver, recorder, lg,
		auth.WithQueryTimeout(cfg.Database.QueryTimeout))

	p := pipeline.New(base, authService, auth.NewGate(resolver, lg), recorder,
		store.NewTxManager(gormDB), cfg.Authorization.OperationTimeout)

	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metrics.Register()
		metricsPath = cfg.Observability.Metrics.Path
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.RouterConfig{
		DB:       db,
		Base:     base,
		Pipeline: p,
		Handlers: rest.Handlers{
			Auth:       auth.NewHandler(base, authService),
			Users:      user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(gormDB), cfg.Security.BCryptCost, lg)),
			Roles:      role.NewHandler(base, role.NewService(rolePostgres.NewRoleRepository(gormDB), bus, lg)),
			Categories: category.NewHandler(base, category.NewService(categoryPostgres.NewCategoryRepository(gormDB), lg)),
			Audit:      audit.NewHandler(base, recorder),
			Stats:      stats.NewHandler(base, statsPostgres.NewStatsRepository(db)),
		},
		LoginLimiter:   middleware.NewIPRateLimiter(cfg.Security.LoginRatePerSecond, cfg.Security.LoginBurst),
		AllowedOrigins: cfg.Server.Origins(),
		OpenAPIPath:    cfg.Server.OpenAPIPath,
		MetricsPath:    metricsPath,
		Logger:         lg,
	})

	if err := p.Validate(lg); err != nil {
		return nil, fmt.Errorf("route permissions: %w", err)
	}

	if cfg.Server.OpenAPIPath != "" {
		doc, err := swagger.LoadSpec(context.Background(), cfg.Server.OpenAPIPath)
		if err != nil {
			return nil, err
		}
		missing, err := swagger.Undocumented(doc, router, "/api")
		if err != nil {
			return nil, err
		}
		for _, route := range missing {
			lg.Warn("route missing from openapi document", "route", route)
		}
	}

	return router, nil
}

// initDB opens the shared pool; gorm and the health check run on top of it.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Open(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
