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

	"github.com/timmy/jobpilot/internal/api"
	"github.com/timmy/jobpilot/internal/api/handler"
	"github.com/timmy/jobpilot/internal/config"
	"github.com/timmy/jobpilot/internal/logger"
	"github.com/timmy/jobpilot/internal/repository"
	"github.com/timmy/jobpilot/internal/service"
	"github.com/timmy/jobpilot/internal/source"
	"github.com/timmy/jobpilot/internal/source/arbetsformedlingen"
	"github.com/timmy/jobpilot/internal/source/remoteok"
	"github.com/timmy/jobpilot/internal/storage"
)

func main() {
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// CONFIG_PATH overrides the ./configs lookup in deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to get database handle")
	}
	defer sqlDB.Close()

	sources := buildSources(cfg)
	if len(sources) == 0 {
		appLogger.Warn("No job sources enabled; searches will return nothing")
	}

	searchService := service.NewSearchService(sources, appLogger, &service.SearchConfig{
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxLimit:       cfg.Search.MaxLimit,
		AdapterTimeout: cfg.Search.AdapterTimeout,
	})

	applicationService := service.NewApplicationService(
		repository.NewApplicationRepository(db),
		repository.NewJobRepository(db),
		appLogger,
		&service.ApplicationConfig{UniquePerJob: cfg.Applications.UniquePerJob},
	)

	resumeService := service.NewResumeService(
		repository.NewResumeRepository(db),
		buildStorage(cfg, appLogger),
		appLogger,
	)

	agentService := service.NewAgentService(&service.AgentConfig{
		BaseURL: cfg.Agent.BaseURL,
		APIKey:  cfg.Agent.APIKey,
		Timeout: cfg.Agent.Timeout,
	}, applicationService, appLogger)
	if !agentService.IsConfigured() {
		appLogger.Info("Agent endpoint not configured; agent runs will fail with agent_failure")
	}

	router := api.SetupRouter(&api.Services{
		Search:       searchService,
		Applications: applicationService,
		Resumes:      resumeService,
		Agent:        agentService,
		HealthChecks: map[string]handler.HealthCheck{
			"database": sqlDB.PingContext,
		},
	}, &cfg.Server, appLogger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":    cfg.Server.Port,
			"mode":    cfg.Server.Mode,
			"sources": len(sources),
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}

func buildSources(cfg *config.Config) []source.Source {
	var sources []source.Source
	if c := cfg.Sources.Arbetsformedlingen; c.Enabled {
		sources = append(sources, arbetsformedlingen.NewAdapter(arbetsformedlingen.Config{
			BaseURL:              c.BaseURL,
			Timeout:              cfg.Search.AdapterTimeout,
			DescriptionMaxLength: cfg.Search.DescriptionMaxLength,
		}))
	}
	if c := cfg.Sources.RemoteOK; c.Enabled {
		sources = append(sources, remoteok.NewAdapter(remoteok.Config{
			BaseURL:              c.BaseURL,
			UserAgent:            c.UserAgent,
			Timeout:              cfg.Search.AdapterTimeout,
			DescriptionMaxLength: cfg.Search.DescriptionMaxLength,
		}))
	}
	return sources
}

// buildStorage returns nil when storage is not configured or unreachable;
// resume uploads then fail with a storage error and everything else runs.
func buildStorage(cfg *config.Config, log *logger.Logger) storage.ObjectStorage {
	if !cfg.Storage.Enabled() {
		log.Info("Resume storage not configured")
		return nil
	}
	objectStorage, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		log.WithError(err).Error("Failed to initialize resume storage")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		log.WithError(err).WithField("bucket", cfg.Storage.Bucket).Error("Failed to ensure storage bucket")
		return nil
	}
	return objectStorage
}
