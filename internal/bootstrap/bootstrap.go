// Package bootstrap wires configuration into adapters and use cases.
// External dependencies that can recover later (search index, repair queue)
// degrade to warnings at startup; only the record store is required.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/avelichko/docscan/internal/config"
	"github.com/avelichko/docscan/internal/core/ports"
	"github.com/avelichko/docscan/internal/core/usecase"
	"github.com/avelichko/docscan/internal/infrastructure/extract"
	"github.com/avelichko/docscan/internal/infrastructure/ocr/tesseract"
	natsqueue "github.com/avelichko/docscan/internal/infrastructure/queue/nats"
	"github.com/avelichko/docscan/internal/infrastructure/repository/postgres"
	"github.com/avelichko/docscan/internal/infrastructure/resilience"
	"github.com/avelichko/docscan/internal/infrastructure/search/elastic"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Repo     ports.RecordRepository
	Index    ports.SearchIndex
	Submit   ports.DocumentSubmitter
	Lister   ports.RecordLister
	Searcher ports.KeywordSearcher
	Repairer ports.IndexRepairer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewRecordRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure store schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	index := elastic.New(cfg.ElasticURL, cfg.ElasticIndex, executor, logger)
	if err := index.EnsureSchema(ctx); err != nil {
		// The record store stays usable; searches will report the index as
		// unavailable until it comes back.
		logger.Warn("search_index_setup_failed", "url", cfg.ElasticURL, "error", err)
	}

	var queue ports.MessageQueue
	closeQueue := func() {}
	q, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, logger, natsqueue.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		logger.Warn("repair_queue_unavailable", "url", cfg.NATSURL, "error", err)
	} else {
		queue = q
		closeQueue = q.Close
	}

	engine := tesseract.New(cfg.TesseractDataPath, cfg.TesseractLanguage)
	extractor := extract.New(engine, logger)

	limiter := rate.NewLimiter(rate.Limit(cfg.RepairRatePerSecond), 1)

	return &App{
		Config: cfg,

		Queue: queue,
		Repo:  repo,
		Index: index,

		Submit:   usecase.NewSubmitDocumentUseCase(extractor, repo, index, queue, logger),
		Lister:   usecase.NewListRecordsUseCase(repo),
		Searcher: usecase.NewSearchRecordsUseCase(index),
		Repairer: usecase.NewRepairIndexUseCase(repo, index, limiter, logger),

		closeFn: func() {
			closeQueue()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
