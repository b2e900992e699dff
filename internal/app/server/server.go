package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"capworks/internal/domain/workshop"
	"capworks/internal/platform/config"
	"capworks/internal/platform/crypto"
	"capworks/internal/platform/db"
	"capworks/internal/platform/email"
	"capworks/internal/platform/jobs"
	"capworks/internal/platform/logger"
	"capworks/internal/platform/metrics"
	"capworks/internal/platform/sheets"
	"capworks/internal/storage"
	"capworks/internal/storage/memory"
	mongostore "capworks/internal/storage/mongo"
	pgstore "capworks/internal/storage/postgres"
	"capworks/internal/transport/http/api"
	customershandler "capworks/internal/transport/http/handlers/customers"
	dashboardhandler "capworks/internal/transport/http/handlers/dashboard"
	jobshandler "capworks/internal/transport/http/handlers/jobs"
	rosterhandler "capworks/internal/transport/http/handlers/roster"
	stockhandler "capworks/internal/transport/http/handlers/stock"
	wageshandler "capworks/internal/transport/http/handlers/wages"
	"capworks/internal/transport/http/middleware"
)

type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Store    storage.SnapshotStore
	Workshop *workshop.Service
	Jobs     *jobs.Service
	Metrics  *metrics.Collector
	Router   http.Handler

	pool *pgxpool.Pool
}

// New wires the store, the workshop, the job scheduler and the router. The
// workshop is loaded from the latest snapshot before New returns.
func New(ctx context.Context, cfg config.Config, base *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if base == nil {
		base = zap.NewNop()
	}
	app := &App{Config: cfg, Logger: base, Metrics: metrics.New()}

	if err := app.openStore(ctx); err != nil {
		return nil, err
	}

	app.Workshop = workshop.NewService(app.Store, logger.Named(base, "svc.workshop"), workshop.Options{
		SeedDefaultCatalog: cfg.SeedDefaultCatalog,
		OnCommit:           app.Metrics.RecordCommit,
	})
	if err := app.Workshop.Load(ctx); err != nil {
		app.closeStore(ctx)
		return nil, fmt.Errorf("load workshop: %w", err)
	}

	if err := app.registerJobs(ctx); err != nil {
		app.closeStore(ctx)
		return nil, err
	}
	app.Router = app.routes()
	return app, nil
}

func (a *App) openStore(ctx context.Context) error {
	var codec storage.Codec
	if a.Config.SnapshotEncryptionKey != "" {
		sealer, err := crypto.New(a.Config.SnapshotEncryptionKey)
		if err != nil {
			return err
		}
		codec.Cipher = sealer
	}

	switch a.Config.StoreDriver {
	case config.StorePostgres:
		pool, err := db.Connect(ctx, a.Config.DatabaseURL, db.DefaultPoolOptions())
		if err != nil {
			return fmt.Errorf("db connect failed: %w", err)
		}
		if a.Config.RunMigrations {
			applied, err := db.Migrate(ctx, pool, a.Config.MigrationsDir)
			if err != nil {
				pool.Close()
				return fmt.Errorf("migrations failed: %w", err)
			}
			if len(applied) > 0 {
				a.Logger.Info("migrations applied", zap.Strings("versions", applied))
			}
		}
		a.pool = pool
		a.Store = pgstore.New(pool, logger.Named(a.Logger, "store.postgres")).WithCodec(codec)
	case config.StoreMongo:
		store, err := mongostore.Open(ctx, a.Config.MongoURI, a.Config.MongoDBName)
		if err != nil {
			return err
		}
		a.Store = store.WithCodec(codec)
	default:
		a.Store = memory.New()
	}
	a.Logger.Info("snapshot store ready",
		zap.String("driver", a.Config.StoreDriver),
		zap.Bool("sealed", codec.Cipher != nil && a.Config.StoreDriver != config.StoreMemory),
	)
	return nil
}

func (a *App) registerJobs(ctx context.Context) error {
	var recorder jobs.Recorder = jobs.NewMemoryRecorder(100)
	if a.pool != nil {
		recorder = jobs.NewPostgresRecorder(a.pool)
	}
	jobsLogger := logger.Named(a.Logger, "jobs")
	a.Jobs = jobs.New(recorder, jobsLogger)

	alert := jobs.LowStockAlert{To: a.Config.LowStockAlertTo}
	if a.Config.SMTPHost != "" {
		alert.Mailer = email.New(email.Config{
			Host:     a.Config.SMTPHost,
			Port:     a.Config.SMTPPort,
			User:     a.Config.SMTPUser,
			Password: a.Config.SMTPPassword,
			UseTLS:   a.Config.SMTPUseTLS,
			From:     a.Config.AlertFrom,
		})
	}
	if err := a.Jobs.Register(jobs.JobLowStockScan, a.Config.LowStockCron, jobs.LowStockScan(a.Workshop, jobsLogger, alert)); err != nil {
		return err
	}

	publish := jobs.WagePublish{
		Workshop:   a.Workshop,
		SheetRange: a.Config.WageSheetRange,
		ExportDir:  a.Config.ExportDir,
		Currency:   a.Config.Currency,
	}
	if a.Config.SheetsEnabled() {
		publisher, err := sheets.New(ctx, a.Config.SheetsCredentials, a.Config.SheetID, logger.Named(a.Logger, "sheets"))
		if err != nil {
			return err
		}
		publish.Publisher = publisher
	}
	return a.Jobs.Register(jobs.JobWagePublish, a.Config.WagePublishCron, publish.Run)
}

func (a *App) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger.Named(a.Logger, "http"), a.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(a.Config.Environment == "production"))
	router.Use(middleware.BodyLimit(a.Config.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Workshop.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
	})

	idempotency := middleware.NewIdempotencyStore(24 * time.Hour)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(a.Config.RateLimitPerMinute, time.Minute))

		wagesHandler := wageshandler.NewHandler(a.Workshop, a.Config.Currency)
		wagesHandler.RegisterRoutes(r)

		rosterHandler := rosterhandler.NewHandler(a.Workshop)
		rosterHandler.RegisterRoutes(r)

		customersHandler := customershandler.NewHandler(a.Workshop, a.Config.Currency, idempotency)
		customersHandler.RegisterRoutes(r)

		stockHandler := stockhandler.NewHandler(a.Workshop)
		stockHandler.RegisterRoutes(r)

		dashboardHandler := dashboardhandler.NewHandler(a.Workshop, a.Config.Currency)
		dashboardHandler.RegisterRoutes(r)

		jobsHandler := jobshandler.NewHandler(a.Jobs)
		jobsHandler.RegisterRoutes(r)
	})

	return router
}

// Serve runs the HTTP server and the job scheduler until ctx is cancelled,
// then shuts both down and writes a final snapshot.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	a.Jobs.Start(jobsCtx)

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info("capworks server listening", zap.String("addr", a.Config.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
	case err := <-serveErr:
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("server shutdown failed", zap.Error(err))
	}
	a.Jobs.Stop()
	stopJobs()

	return errors.Join(runErr, a.Close(shutdownCtx))
}

// Close writes a final snapshot and releases the store.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Workshop.Commit(ctx); err != nil {
		errs = append(errs, fmt.Errorf("final commit: %w", err))
	}
	if err := a.Store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if len(errs) == 0 {
		a.Logger.Info("workshop saved", zap.Int64("version", a.Workshop.Version()))
	}
	return errors.Join(errs...)
}

func (a *App) closeStore(ctx context.Context) {
	if err := a.Store.Close(ctx); err != nil {
		a.Logger.Warn("close store failed", zap.Error(err))
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
