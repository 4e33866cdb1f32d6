package server

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swalih2233/hr.employee/internal/domain/audit"
	"github.com/swalih2233/hr.employee/internal/domain/auth"
	"github.com/swalih2233/hr.employee/internal/domain/calendar"
	"github.com/swalih2233/hr.employee/internal/domain/leave"
	"github.com/swalih2233/hr.employee/internal/domain/ledger"
	"github.com/swalih2233/hr.employee/internal/domain/notifications"
	"github.com/swalih2233/hr.employee/internal/domain/people"
	"github.com/swalih2233/hr.employee/internal/domain/reports"
	"github.com/swalih2233/hr.employee/internal/platform/config"
	"github.com/swalih2233/hr.employee/internal/platform/db"
	"github.com/swalih2233/hr.employee/internal/platform/email"
	"github.com/swalih2233/hr.employee/internal/platform/jobs"
	"github.com/swalih2233/hr.employee/internal/platform/metrics"
	"github.com/swalih2233/hr.employee/internal/transport/http/api"
	audithandler "github.com/swalih2233/hr.employee/internal/transport/http/handlers/audit"
	authhandler "github.com/swalih2233/hr.employee/internal/transport/http/handlers/auth"
	leavehandler "github.com/swalih2233/hr.employee/internal/transport/http/handlers/leave"
	notificationshandler "github.com/swalih2233/hr.employee/internal/transport/http/handlers/notifications"
	peoplehandler "github.com/swalih2233/hr.employee/internal/transport/http/handlers/people"
	policyhandler "github.com/swalih2233/hr.employee/internal/transport/http/handlers/policy"
	reportshandler "github.com/swalih2233/hr.employee/internal/transport/http/handlers/reports"
	"github.com/swalih2233/hr.employee/internal/transport/http/middleware"
)

type App struct {
	Config    config.Config
	DB        *pgxpool.Pool
	Router    http.Handler
	Scheduler *jobs.Scheduler
	Logger    *slog.Logger
}

// New connects to the database, runs migrations and seeding as
// configured, and wires every store, service and handler into one
// router. The returned App owns the pool; callers close it via Close.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()

	peopleStore := people.NewStore(pool)
	holidayStore := calendar.NewStore(pool)
	ledgerStore := ledger.NewStore(pool)
	notificationStore := notifications.NewStore(pool)
	leaveStore := leave.NewStore(pool, ledgerStore)
	auditSvc := audit.New(pool)

	mailer := email.New(cfg)
	notifySvc := notifications.New(notificationStore, mailer, cfg.EmailFrom, logger)
	leaveSvc := leave.NewService(leaveStore, peopleStore, holidayStore, notifySvc, logger)
	authSvc := auth.NewService(pool, peopleStore, cfg.JWTSecret, cfg.TokenTTL)
	reportSvc := reports.NewService(reports.NewStore(pool))

	policy := ledger.PolicyConfig{
		AnnualAllocation:     cfg.AnnualAllocation,
		MedicalAllocation:    cfg.MedicalAllocation,
		CarryforwardLimit:    cfg.CarryforwardLimit,
		EligibilityThreshold: cfg.CarryforwardThreshold,
	}
	runner := &jobs.Runner{
		DB:       pool,
		Ledgers:  ledgerStore,
		People:   peopleStore,
		Notifier: notifySvc,
		Policy:   policy,
		Logger:   logger,
		Metrics:  collector,
	}

	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("scheduler timezone: %w", err)
	}
	retry := jobs.RetryPolicy{MaxAttempts: cfg.JobMaxAttempts, Backoff: cfg.JobRetryBackoff}
	scheduler := jobs.NewScheduler(runner, retry, loc, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger, collector))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireAuth, middleware.RequireRole(people.RoleFounder)).
			Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
			})
	}

	router.Route("/api/v1", func(r chi.Router) {
		loginLimiter := middleware.LoginRateLimit(cfg.RateLimitPerMinute, time.Minute)
		authhandler.NewHandler(authSvc, peopleStore).RegisterRoutes(r, loginLimiter)
		peoplehandler.NewHandler(peopleStore, auditSvc).RegisterRoutes(r)
		r.Route("/leave", func(lr chi.Router) {
			leavehandler.NewHandler(leaveSvc, peopleStore, holidayStore, ledgerStore, auditSvc, collector).RegisterRoutes(lr)
			policyhandler.NewHandler(runner, auditSvc).RegisterRoutes(lr)
			reportshandler.NewHandler(reportSvc).RegisterRoutes(lr)
		})
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	return &App{
		Config:    cfg,
		DB:        pool,
		Router:    router,
		Scheduler: scheduler,
		Logger:    logger,
	}, nil
}

func (a *App) Close() {
	a.DB.Close()
}

// Run serves the API until the context is cancelled or a SIGINT/SIGTERM
// arrives, then drains in-flight requests and stops the scheduler.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.Config.SchedulerEnabled {
		a.Scheduler.Start(ctx)
	}

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if a.Config.SchedulerEnabled {
		a.Scheduler.Stop()
	}
	return nil
}
