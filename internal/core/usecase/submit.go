package usecase

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/docscan/internal/core/domain"
	"github.com/avelichko/docscan/internal/core/ports"
)

// SubmitDocumentUseCase drives one document through extraction, storage and
// indexing. Stages short-circuit: nothing is stored for empty text, nothing
// is indexed for a duplicate, and an indexing failure after a successful
// insert degrades the submission instead of failing it.
type SubmitDocumentUseCase struct {
	extractor ports.TextExtractor
	repo      ports.RecordRepository
	index     ports.SearchIndex
	queue     ports.MessageQueue
	logger    *slog.Logger
	now       func() time.Time
}

func NewSubmitDocumentUseCase(
	extractor ports.TextExtractor,
	repo ports.RecordRepository,
	index ports.SearchIndex,
	queue ports.MessageQueue,
	logger *slog.Logger,
) *SubmitDocumentUseCase {
	return &SubmitDocumentUseCase{
		extractor: extractor,
		repo:      repo,
		index:     index,
		queue:     queue,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *SubmitDocumentUseCase) Submit(ctx context.Context, path string) (*domain.Submission, error) {
	correlationID := uuid.NewString()
	log := uc.logger.With("correlation_id", correlationID, "path", path)

	rec, err := uc.extract(ctx, path, log)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &domain.Submission{CorrelationID: correlationID, Status: domain.StatusNoText}, nil
	}

	stored, duplicate, err := uc.store(ctx, rec, log)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return &domain.Submission{CorrelationID: correlationID, Status: domain.StatusDuplicate}, nil
	}

	status := uc.indexStored(ctx, stored, log)
	return &domain.Submission{
		CorrelationID: correlationID,
		Status:        status,
		Record:        stored,
	}, nil
}

func (uc *SubmitDocumentUseCase) extract(ctx context.Context, path string, log *slog.Logger) (*domain.Record, error) {
	extraction, err := uc.extractor.Extract(ctx, path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", err)
	}
	if extraction.Empty() {
		log.Info("extraction_empty")
		return nil, nil
	}
	return &domain.Record{
		Filename:   filepath.Base(path),
		Text:       extraction.Text,
		Confidence: extraction.Confidence,
		UploadedAt: uc.now().UTC().Truncate(time.Second),
	}, nil
}

func (uc *SubmitDocumentUseCase) store(ctx context.Context, rec *domain.Record, log *slog.Logger) (*domain.Record, bool, error) {
	id, err := uc.repo.Insert(ctx, rec)
	if err != nil {
		if domain.IsKind(err, domain.ErrDuplicate) {
			log.Info("duplicate_skipped", "filename", rec.Filename)
			return nil, true, nil
		}
		return nil, false, domain.WrapError(domain.ErrStoreUnavailable, "insert record", err)
	}
	if id <= 0 {
		return nil, false, domain.WrapError(domain.ErrStoreUnavailable, "insert record", errors.New("store returned non-positive id"))
	}
	rec.ID = id
	log.Info("record_stored", "record_id", id, "filename", rec.Filename)
	return rec, false, nil
}

// indexStored never fails the submission: the record is already durable, so
// an index fault is surfaced as a degraded status and queued for repair.
func (uc *SubmitDocumentUseCase) indexStored(ctx context.Context, rec *domain.Record, log *slog.Logger) domain.SubmissionStatus {
	if err := uc.index.Index(ctx, *rec); err != nil {
		log.Warn("index_degraded", "record_id", rec.ID, "error", err)
		uc.enqueueRepair(ctx, rec.ID, log)
		return domain.StatusIndexDegraded
	}
	log.Info("record_indexed", "record_id", rec.ID)
	return domain.StatusIndexed
}

func (uc *SubmitDocumentUseCase) enqueueRepair(ctx context.Context, recordID int64, log *slog.Logger) {
	if uc.queue == nil {
		log.Warn("repair_queue_unconfigured", "record_id", recordID)
		return
	}
	if err := uc.queue.PublishIndexPending(ctx, recordID); err != nil {
		log.Warn("repair_enqueue_failed", "record_id", recordID, "error", err)
	}
}
