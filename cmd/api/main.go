package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/incident-bridge/internal/api/http"
	"github.com/spec-kit/incident-bridge/internal/api/http/handlers"
	"github.com/spec-kit/incident-bridge/internal/chatwoot"
	"github.com/spec-kit/incident-bridge/internal/config"
	"github.com/spec-kit/incident-bridge/internal/events"
	"github.com/spec-kit/incident-bridge/internal/observability"
	"github.com/spec-kit/incident-bridge/internal/service"
	"github.com/spec-kit/incident-bridge/internal/soap"
	"github.com/spec-kit/incident-bridge/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	recorder := service.NewEventRecorder(dispatcher, logger, metrics)
	worker.StartEventRecorder(recorder)

	incidentService := service.NewIncidentService(cfg, logger, service.IncidentDependencies{
		Validator:    service.NewIncidentValidator(cfg.Oet.ValidateNitChecksum),
		Fetcher:      chatwoot.NewClient(cfg.Chatwoot, logger),
		Materializer: service.NewImageMaterializer(cfg.Files, logger, metrics),
		Gateway:      soap.NewGateway(cfg.Oet, logger),
		Dispatcher:   dispatcher,
	})

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Files.MaxTotalSizeBytes),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg)
	incidentsHandler := handlers.NewIncidentsHandler(incidentService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    healthHandler,
		Incidents: incidentsHandler,
		Metrics:   metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
