package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"paycore/internal/app/backend"
	"paycore/internal/domain/payroll"
	"paycore/internal/domain/reports"
	"paycore/internal/domain/rostersync"
	"paycore/internal/platform/alerts"
	"paycore/internal/platform/config"
	cryptoutil "paycore/internal/platform/crypto"
	"paycore/internal/platform/db"
	"paycore/internal/platform/email"
	"paycore/internal/platform/events"
	"paycore/internal/platform/metrics"
	"paycore/internal/platform/storage"
	"paycore/internal/transport/http/api"
	attendancehandler "paycore/internal/transport/http/handlers/attendance"
	audithandler "paycore/internal/transport/http/handlers/audit"
	"paycore/internal/transport/http/handlers/base"
	deductionhandler "paycore/internal/transport/http/handlers/deductions"
	employeehandler "paycore/internal/transport/http/handlers/employees"
	jobshandler "paycore/internal/transport/http/handlers/jobs"
	notificationshandler "paycore/internal/transport/http/handlers/notifications"
	payrollhandler "paycore/internal/transport/http/handlers/payroll"
	reportshandler "paycore/internal/transport/http/handlers/reports"
	requesthandler "paycore/internal/transport/http/handlers/requests"
	rosterhandler "paycore/internal/transport/http/handlers/roster"
	"paycore/internal/transport/http/middleware"
)

const attendanceBodyBytes = 8 * 1024 * 1024

type App struct {
	Config   config.Config
	Pools    *db.Registry
	Backends *backend.Registry
	Metrics  *metrics.Collector
	Router   http.Handler

	closers []func() error
}

// New connects every organization database, applies migrations and builds the
// router. Close releases what New opened.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg, Pools: db.NewRegistry(cfg.DefaultOrganization), Metrics: metrics.New()}

	orgs := map[string]string{cfg.DefaultOrganization: cfg.DatabaseURL}
	if cfg.SecondaryDatabaseURL != "" {
		orgs[cfg.SecondaryOrganization] = cfg.SecondaryDatabaseURL
	}
	for name, url := range orgs {
		pool, err := db.Connect(ctx, url)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect %s: %w", name, err)
		}
		app.Pools.Add(name, pool)
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				app.Close()
				return nil, fmt.Errorf("migrate %s: %w", name, err)
			}
		}
	}

	shared, err := app.buildShared(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Backends = backend.NewRegistry(cfg.DefaultOrganization)
	for _, name := range app.Pools.Names() {
		_, pool, err := app.Pools.Resolve(name)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Backends.Add(backend.New(name, pool, shared))
	}

	app.Router = NewRouter(cfg, app.Backends, app.Pools.Ping, app.Metrics)
	return app, nil
}

func (a *App) buildShared(ctx context.Context, cfg config.Config) (backend.Shared, error) {
	shared := backend.Shared{
		MailFrom:          email.FromAddress(cfg),
		Publisher:         events.Noop(),
		Alerts:            alerts.Noop(),
		LockTTL:           cfg.PeriodLockTTL,
		NotifyConcurrency: cfg.NotifyConcurrency,
		NotifyTimeout:     cfg.NotifyTimeout,
		Policy: payroll.Policy{
			IncludeOtherDeductions: cfg.IncludeOtherDeductions,
			Scope:                  cfg.DeductionScope,
		},
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return shared, err
	}
	shared.Crypto = crypto

	mailer, err := email.New(ctx, cfg)
	if err != nil {
		return shared, fmt.Errorf("email: %w", err)
	}
	shared.Mailer = mailer

	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		a.closers = append(a.closers, kafka.Close)
		shared.Publisher = kafka
	}
	if cfg.SlackWebhookURL != "" {
		shared.Alerts = alerts.NewSlack(cfg.SlackWebhookURL)
	}

	switch cfg.StorageBackend {
	case config.StorageS3:
		s3, err := storage.NewS3(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			return shared, fmt.Errorf("storage: %w", err)
		}
		shared.Files = s3
	default:
		shared.Files = storage.NewLocal(cfg.StorageDir)
	}

	if cfg.RedisURL != "" {
		client, err := db.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return shared, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		shared.Redis = client
	}

	if cfg.HRPartnerAPIKey != "" {
		shared.Directory = rostersync.NewClient(cfg.HRPartnerBaseURL, cfg.HRPartnerAPIKey)
	}

	if cfg.ReportColumnsFile != "" {
		presets, err := reports.LoadColumnPresets(cfg.ReportColumnsFile)
		if err != nil {
			return shared, err
		}
		shared.Presets = presets
	}
	return shared, nil
}

func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			slog.Warn("shutdown close failed", "err", err)
		}
	}
	if a.Pools != nil {
		a.Pools.Close()
	}
}

// NewRouter mounts the API. ready reports whether every organization store
// answers.
func NewRouter(cfg config.Config, backends *backend.Registry, ready func(context.Context) error, collector *metrics.Collector) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.OrganizationHeader, middleware.IdempotencyHeader},
		ExposedHeaders:   []string{"X-Request-ID", "X-Total-Count", "Content-Disposition"},
		AllowCredentials: true,
	}).Handler)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, map[string]int64{"/attendance/logs": attendanceBodyBytes}))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if ready != nil {
			if err := ready(ctx); err != nil {
				slog.Warn("readiness check failed", "err", err)
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && collector != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	common := base.Handler{Backends: backends, Metrics: collector}
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Organization(backends))

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(cfg.StoreTimeout))
			employeehandler.NewHandler(common).RegisterRoutes(r)
			requesthandler.NewHandler(common).RegisterRoutes(r)
			payrollhandler.NewHandler(common).RegisterRoutes(r)
			deductionhandler.NewHandler(common).RegisterRoutes(r)
			reportshandler.NewHandler(common).RegisterRoutes(r)
			attendancehandler.NewHandler(common, cfg.IngestKeyHash).RegisterRoutes(r)
			jobshandler.NewHandler(common).RegisterRoutes(r)
			audithandler.NewHandler(common).RegisterRoutes(r)
		})

		// Dispatch and roster sync bound each outbound call themselves.
		r.Group(func(r chi.Router) {
			notificationshandler.NewHandler(common).RegisterRoutes(r)
			rosterhandler.NewHandler(common).RegisterRoutes(r)
		})
	})

	return router
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown failed", "err", err)
		}
	}()

	log.Printf("payroll server listening on %s (organizations: %v)", cfg.Addr, app.Pools.Names())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}
