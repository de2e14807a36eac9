package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/bluecarbon/internal/config"
	"github.com/MrJamesThe3rd/bluecarbon/internal/database"
	"github.com/MrJamesThe3rd/bluecarbon/internal/demo"
	"github.com/MrJamesThe3rd/bluecarbon/internal/export"
	bcHttp "github.com/MrJamesThe3rd/bluecarbon/internal/http"
	authHandler "github.com/MrJamesThe3rd/bluecarbon/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/bluecarbon/internal/http/export"
	intakeHandler "github.com/MrJamesThe3rd/bluecarbon/internal/http/intake"
	reportHandler "github.com/MrJamesThe3rd/bluecarbon/internal/http/report"
	submissionHandler "github.com/MrJamesThe3rd/bluecarbon/internal/http/submission"
	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/intake"
	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/metrics"
	"github.com/MrJamesThe3rd/bluecarbon/internal/report"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
	subStore "github.com/MrJamesThe3rd/bluecarbon/internal/submission/store"
	"github.com/MrJamesThe3rd/bluecarbon/internal/verification"
)

type backend interface {
	submission.Repository
	submission.Snapshotter
	ledger.Reader
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(cfg.Logger())

	signingKey, err := cfg.TokenSigningKey()
	if err != nil {
		slog.Error("refusing to start", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}

	if db != nil {
		defer db.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		recorder          = ledger.NewRecorder(store)
		submissionService = submission.NewService(store, recorder, submission.WithMetrics(metrics.New(reg)))
		intakeService     = intake.NewService(submissionService)
		reportService     = report.NewService(store, recorder)
		tokens            = identity.NewJWTProvider(signingKey, cfg.Auth.Issuer)
		rules             = verification.NewRules(cfg.Verify.MaxAge, cfg.Verify.MaxCarbonValue)
	)

	if cfg.App.SeedDemo {
		seeded, err := demo.Seed(ctx, submissionService)
		if err != nil {
			slog.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}

		slog.Info("seeded demo data", "submissions", len(seeded))
	}

	var authH *authHandler.Handler
	if cfg.Auth.DemoLogin {
		slog.Warn("demo login enabled: any caller can obtain a token for a demo account, including admin")

		authH = authHandler.NewHandler(identity.DemoDirectory(), tokens, cfg.Auth.TokenTTL)
	}

	var (
		submissionH = submissionHandler.NewHandler(submissionService, rules)
		intakeH     = intakeHandler.NewHandler(intakeService)
		reportH     = reportHandler.NewHandler(reportService, recorder)
		exportH     = exportHandler.NewHandler(export.NewService(store))
	)

	router := bcHttp.New(tokens, authH, submissionH, intakeH, reportH, exportH, bcHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr, "store", cfg.Store.Backend)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (backend, *sql.DB, error) {
	if cfg.Store.Backend != "postgres" {
		return subStore.NewMemory(), nil, nil
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, nil, err
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return subStore.NewPostgres(db), db, nil
}
