package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"gatefold.io/internal/access"
	"gatefold.io/internal/config"
	"gatefold.io/internal/httpapi"
	"gatefold.io/internal/obs"
	"gatefold.io/internal/product"
	"gatefold.io/internal/staff"
	"gatefold.io/internal/stream"
	"gatefold.io/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	logger := obs.Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	if cfg.StaffAuthSecret == "" {
		logger.Printf("GATEFOLD_AUTH_SECRET is not set; staff login will be unavailable")
	}

	var (
		db        *sql.DB
		tokens    access.TokenStore
		rfqs      access.RFQStore
		catalog   product.Catalog
		events    telemetry.EventStore
		staffRepo staff.Store
	)
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			logger.Fatalf("open postgres: %v", err)
		}
		db.SetMaxOpenConns(16)
		db.SetConnMaxIdleTime(5 * time.Minute)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			logger.Fatalf("ping postgres: %v", err)
		}
		cancel()

		pg := access.NewPGStore(db)
		tokens, rfqs = pg, pg
		catalog = product.NewPGCatalog(db)
		events = telemetry.NewPGStore(db)
		staffRepo = staff.NewPGStore(db)
		logger.Printf("storage: postgres")
	} else {
		// In-memory stores keep local development and smoke tests free of
		// database setup. Nothing survives a restart.
		mem := access.NewMemoryStore()
		tokens, rfqs = mem, mem
		catalog = product.NewMemoryCatalog()
		events = telemetry.NewMemoryStore()
		staffRepo = staff.NewMemoryStore()
		logger.Printf("storage: memory (GATEFOLD_PG_DSN not set)")
	}

	staffSvc := staff.NewService(staffRepo)
	accessSvc := access.NewService(tokens, rfqs, catalog)
	resolver := access.NewResolver(tokens, staffSvc, nil)
	telemetrySvc := telemetry.NewService(events, catalog)
	feed := stream.New()

	api := httpapi.New(
		httpapi.ReadyProbe{DB: db},
		version,
		accessSvc,
		resolver,
		telemetrySvc,
		staffSvc,
		catalog,
		feed,
	)
	api.SetSessionTTL(cfg.StaffSessionTTL)
	api.SetRateLimit(cfg.RateBurst, cfg.RatePerSecond)
	api.SetMaxBodyBytes(cfg.MaxBodyBytes)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Printf("received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("serve: %v", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	if db != nil {
		_ = db.Close()
	}
}
