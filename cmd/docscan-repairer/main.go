package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/avelichko/docscan/internal/bootstrap"
	"github.com/avelichko/docscan/internal/config"
	"github.com/avelichko/docscan/internal/observability/logging"
	"github.com/avelichko/docscan/internal/observability/metrics"
)

const serviceName = "docscan-repairer"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if app.Queue == nil {
		log.Fatalf("repairer requires the repair queue: NATS is not reachable at %s", cfg.NATSURL)
	}

	m := metrics.NewRepairerMetrics(serviceName)
	go serveMetrics(cfg.RepairerMetricsPort, m, logger)

	if cfg.RepairOnStart {
		repaired, err := app.Repairer.RepairAll(ctx)
		if err != nil {
			logger.Warn("startup_sweep_failed", "error", err)
		}
		m.SetSweepRepaired(repaired)
	}

	logger.Info("repairer_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeIndexPending(ctx, func(handlerCtx context.Context, recordID int64) error {
		repairCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
		defer cancel()

		start := time.Now()
		repairErr := app.Repairer.RepairByID(repairCtx, recordID)
		m.ObserveRepair(serviceName, time.Since(start), repairErr)
		return repairErr
	})
	if err != nil {
		log.Fatalf("repairer subscribe error: %v", err)
	}
}

func serveMetrics(port string, m *metrics.RepairerMetrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics_server_failed", "error", err)
	}
}
