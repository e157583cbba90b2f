package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/avelichko/docscan/internal/core/domain"
)

type extractorFake struct {
	extraction domain.Extraction
	err        error
	calls      int
}

func (f *extractorFake) Extract(context.Context, string) (domain.Extraction, error) {
	f.calls++
	return f.extraction, f.err
}

type repoFake struct {
	nextID      int64
	insertErr   error
	inserted    []domain.Record
	records     []domain.Record
	listErr     error
	getByIDRecs map[int64]*domain.Record
}

func (f *repoFake) Insert(_ context.Context, rec *domain.Record) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	f.inserted = append(f.inserted, *rec)
	return f.nextID, nil
}

func (f *repoFake) GetByID(_ context.Context, id int64) (*domain.Record, error) {
	rec, ok := f.getByIDRecs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrRecordNotFound, "get record", errors.New("missing"))
	}
	return rec, nil
}

func (f *repoFake) ListAll(context.Context) ([]domain.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

type indexFake struct {
	indexErr  error
	searchErr error
	result    domain.SearchResult
	indexed   []domain.Record
	searches  []string
}

func (f *indexFake) EnsureSchema(context.Context) error { return nil }

func (f *indexFake) Index(_ context.Context, rec domain.Record) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed = append(f.indexed, rec)
	return nil
}

func (f *indexFake) Search(_ context.Context, keyword string) (domain.SearchResult, error) {
	f.searches = append(f.searches, keyword)
	if f.searchErr != nil {
		return domain.SearchResult{}, f.searchErr
	}
	return f.result, nil
}

type queueFake struct {
	published []int64
	err       error
}

func (f *queueFake) PublishIndexPending(_ context.Context, recordID int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, recordID)
	return nil
}

func (f *queueFake) SubscribeIndexPending(context.Context, func(context.Context, int64) error) error {
	return errors.New("not implemented")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSubmitUC(extractor *extractorFake, repo *repoFake, index *indexFake, queue *queueFake) *SubmitDocumentUseCase {
	uc := NewSubmitDocumentUseCase(extractor, repo, index, queue, discardLogger())
	uc.now = func() time.Time {
		return time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	}
	return uc
}

func TestSubmitStoresAndIndexesExtractedText(t *testing.T) {
	extractor := &extractorFake{extraction: domain.Extraction{Text: "Total Due: $42.00", Confidence: 95.0}}
	repo := &repoFake{}
	index := &indexFake{}
	queue := &queueFake{}
	uc := newSubmitUC(extractor, repo, index, queue)

	sub, err := uc.Submit(context.Background(), "/scans/invoice.png")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if sub.Status != domain.StatusIndexed {
		t.Fatalf("expected indexed status, got %s", sub.Status)
	}
	if sub.Record == nil || sub.Record.ID != 1 {
		t.Fatalf("expected record with id 1, got %+v", sub.Record)
	}
	if sub.Record.Filename != "invoice.png" {
		t.Fatalf("expected base filename, got %q", sub.Record.Filename)
	}
	if sub.CorrelationID == "" {
		t.Fatalf("expected correlation id")
	}
	if len(index.indexed) != 1 || index.indexed[0].ID != 1 {
		t.Fatalf("expected record indexed under store id, got %+v", index.indexed)
	}
	if len(queue.published) != 0 {
		t.Fatalf("successful indexing must not enqueue repair, got %v", queue.published)
	}
}

func TestSubmitAbortsOnEmptyExtraction(t *testing.T) {
	extractor := &extractorFake{extraction: domain.Extraction{}}
	repo := &repoFake{}
	index := &indexFake{}
	uc := newSubmitUC(extractor, repo, index, &queueFake{})

	sub, err := uc.Submit(context.Background(), "/scans/blank.png")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if sub.Status != domain.StatusNoText {
		t.Fatalf("expected no_text status, got %s", sub.Status)
	}
	if sub.Record != nil {
		t.Fatalf("no record expected, got %+v", sub.Record)
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("store must not be called for empty text, got %d inserts", len(repo.inserted))
	}
	if len(index.indexed) != 0 {
		t.Fatalf("index must not be called for empty text, got %d calls", len(index.indexed))
	}
}

func TestSubmitReportsFileErrorForInvalidPath(t *testing.T) {
	extractor := &extractorFake{err: domain.WrapError(domain.ErrInvalidInput, "stat path", errors.New("no such file"))}
	repo := &repoFake{}
	uc := newSubmitUC(extractor, repo, &indexFake{}, &queueFake{})

	_, err := uc.Submit(context.Background(), "/scans/missing.png")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("nothing may be stored on a file error")
	}
}

func TestSubmitReportsDuplicateAsInformational(t *testing.T) {
	extractor := &extractorFake{extraction: domain.Extraction{Text: "same text", Confidence: 95.0}}
	repo := &repoFake{insertErr: domain.WrapError(domain.ErrDuplicate, "insert record", errors.New("unique violation"))}
	index := &indexFake{}
	uc := newSubmitUC(extractor, repo, index, &queueFake{})

	sub, err := uc.Submit(context.Background(), "/scans/invoice.png")
	if err != nil {
		t.Fatalf("duplicate must not be an error, got %v", err)
	}
	if sub.Status != domain.StatusDuplicate {
		t.Fatalf("expected duplicate status, got %s", sub.Status)
	}
	if len(index.indexed) != 0 {
		t.Fatalf("duplicate must not be indexed")
	}
}

func TestSubmitFailsOnStoreFault(t *testing.T) {
	extractor := &extractorFake{extraction: domain.Extraction{Text: "text", Confidence: 95.0}}
	repo := &repoFake{insertErr: errors.New("connection refused")}
	index := &indexFake{}
	uc := newSubmitUC(extractor, repo, index, &queueFake{})

	_, err := uc.Submit(context.Background(), "/scans/invoice.png")
	if !domain.IsKind(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if len(index.indexed) != 0 {
		t.Fatalf("index must not be called after a store fault")
	}
}

func TestSubmitDegradesWhenIndexingFails(t *testing.T) {
	extractor := &extractorFake{extraction: domain.Extraction{Text: "text", Confidence: 95.0}}
	repo := &repoFake{}
	index := &indexFake{indexErr: domain.WrapError(domain.ErrIndexUnavailable, "index record", errors.New("503"))}
	queue := &queueFake{}
	uc := newSubmitUC(extractor, repo, index, queue)

	sub, err := uc.Submit(context.Background(), "/scans/invoice.png")
	if err != nil {
		t.Fatalf("index failure must not fail the submission, got %v", err)
	}
	if sub.Status != domain.StatusIndexDegraded {
		t.Fatalf("expected index_degraded status, got %s", sub.Status)
	}
	if sub.Record == nil || sub.Record.ID != 1 {
		t.Fatalf("record must remain stored, got %+v", sub.Record)
	}
	if len(queue.published) != 1 || queue.published[0] != 1 {
		t.Fatalf("expected record id queued for repair, got %v", queue.published)
	}
}

func TestSubmitToleratesMissingRepairQueue(t *testing.T) {
	extractor := &extractorFake{extraction: domain.Extraction{Text: "text", Confidence: 95.0}}
	index := &indexFake{indexErr: errors.New("down")}
	uc := NewSubmitDocumentUseCase(extractor, &repoFake{}, index, nil, discardLogger())

	sub, err := uc.Submit(context.Background(), "/scans/invoice.png")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if sub.Status != domain.StatusIndexDegraded {
		t.Fatalf("expected index_degraded status, got %s", sub.Status)
	}
}
