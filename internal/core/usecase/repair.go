package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/avelichko/docscan/internal/core/domain"
	"github.com/avelichko/docscan/internal/core/ports"
)

// RepairIndexUseCase pushes already-stored records back into the search
// index. RepairByID serves queued retries after a degraded submission;
// RepairAll sweeps the whole store, throttled so a large backlog cannot
// flood the index.
type RepairIndexUseCase struct {
	repo    ports.RecordRepository
	index   ports.SearchIndex
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewRepairIndexUseCase(
	repo ports.RecordRepository,
	index ports.SearchIndex,
	limiter *rate.Limiter,
	logger *slog.Logger,
) *RepairIndexUseCase {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &RepairIndexUseCase{
		repo:    repo,
		index:   index,
		limiter: limiter,
		logger:  logger,
	}
}

func (uc *RepairIndexUseCase) RepairByID(ctx context.Context, recordID int64) error {
	rec, err := uc.repo.GetByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("load record %d: %w", recordID, err)
	}
	if err := uc.index.Index(ctx, *rec); err != nil {
		return domain.WrapError(domain.ErrIndexUnavailable, fmt.Sprintf("reindex record %d", recordID), err)
	}
	uc.logger.Info("record_reindexed", "record_id", recordID)
	return nil
}

// RepairAll re-indexes every stored record and returns how many succeeded.
// Individual index faults are logged and skipped so one bad document does
// not abort the sweep.
func (uc *RepairIndexUseCase) RepairAll(ctx context.Context) (int, error) {
	records, err := uc.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list records for repair: %w", err)
	}

	repaired := 0
	for _, rec := range records {
		if err := uc.limiter.Wait(ctx); err != nil {
			return repaired, err
		}
		if err := uc.index.Index(ctx, rec); err != nil {
			uc.logger.Warn("reindex_failed", "record_id", rec.ID, "error", err)
			continue
		}
		repaired++
	}
	uc.logger.Info("repair_sweep_done", "total", len(records), "repaired", repaired)
	return repaired, nil
}
