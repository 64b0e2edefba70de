package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nurpe/fieldops-service/internal/auth"
	"github.com/nurpe/fieldops-service/internal/config"
	"github.com/nurpe/fieldops-service/internal/db"
	"github.com/nurpe/fieldops-service/internal/excel"
	httphandler "github.com/nurpe/fieldops-service/internal/http"
	"github.com/nurpe/fieldops-service/internal/http/middleware"
	"github.com/nurpe/fieldops-service/internal/logger"
	"github.com/nurpe/fieldops-service/internal/metrics"
	"github.com/nurpe/fieldops-service/internal/pdf"
	"github.com/nurpe/fieldops-service/internal/repository"
	"github.com/nurpe/fieldops-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	registry := prometheus.NewRegistry()
	m := metrics.New("fieldops", registry)

	contractRepo := repository.NewContractRepository(database)
	occurrenceRepo := repository.NewOccurrenceRepository(database)
	taskRepo := repository.NewTaskRepository(database)
	serviceLogRepo := repository.NewServiceLogRepository(database)

	contractService := service.NewContractService(contractRepo, m, log)
	occurrenceService := service.NewOccurrenceService(occurrenceRepo, log)
	taskService := service.NewTaskService(taskRepo, log)
	serviceLogService := service.NewServiceLogService(serviceLogRepo, log)
	reconciler := service.NewReconciler(taskRepo, occurrenceRepo, serviceLogRepo, contractRepo, m, log)
	timelineService := service.NewTimelineService(occurrenceRepo, taskRepo, serviceLogRepo, m, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(
		contractService,
		occurrenceService,
		taskService,
		serviceLogService,
		reconciler,
		timelineService,
		excel.NewGenerator(),
		pdf.NewGenerator(),
		cfg,
		log,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, registry, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting fieldops service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
