package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nurpe/pestcare-visits/internal/auth"
	"github.com/nurpe/pestcare-visits/internal/clock"
	"github.com/nurpe/pestcare-visits/internal/config"
	"github.com/nurpe/pestcare-visits/internal/db"
	"github.com/nurpe/pestcare-visits/internal/excel"
	httphandler "github.com/nurpe/pestcare-visits/internal/http"
	"github.com/nurpe/pestcare-visits/internal/http/middleware"
	"github.com/nurpe/pestcare-visits/internal/ics"
	"github.com/nurpe/pestcare-visits/internal/jobs"
	"github.com/nurpe/pestcare-visits/internal/logger"
	"github.com/nurpe/pestcare-visits/internal/pdf"
	"github.com/nurpe/pestcare-visits/internal/repository"
	"github.com/nurpe/pestcare-visits/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)
	clk := clock.Real()

	var store service.Store
	switch cfg.DB.Driver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		store = repository.NewMemoryStore(clk.Now)
	default:
		database, err := db.New(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect database")
		}
		store = repository.NewPostgresStore(database)
	}

	renderers := service.Renderers{
		Excel:    excel.NewGenerator(),
		PDF:      pdf.NewGenerator(cfg.Documents.CompanyName),
		Calendar: ics.NewEncoder(cfg.Documents.CalendarDomain),
	}
	clientService := service.NewClientService(store)
	visitService := service.NewVisitService(store, renderers, clk, cfg, log)

	runner, err := jobs.NewRunner(visitService, jobs.Config{
		RebuildSpec: cfg.Schedule.RebuildCron,
		ExpirySpec:  cfg.Schedule.ExpiryCron,
		Location:    cfg.Schedule.Location,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule jobs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.RunOnce(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load schedule")
	}
	runner.Start()

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(clientService, visitService, log)
	authMiddleware := middleware.Auth(tokenParser)
	feedAuthMiddleware := middleware.FeedAuth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, feedAuthMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("driver", cfg.DB.Driver).Msg("starting visits service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
		exitCode = 1
	}
	if err := runner.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("jobs did not stop in time")
		exitCode = 1
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
