package ports

import (
	"context"

	"github.com/avelichko/docscan/internal/core/domain"
)

// DocumentSubmitter is the inbound contract for the submit pipeline.
type DocumentSubmitter interface {
	Submit(ctx context.Context, path string) (*domain.Submission, error)
}

// RecordLister is the inbound read model over stored records.
type RecordLister interface {
	ListRecords(ctx context.Context) ([]domain.Record, error)
}

// KeywordSearcher is the inbound contract for keyword search.
type KeywordSearcher interface {
	Search(ctx context.Context, keyword string) (*domain.SearchResult, error)
}

// IndexRepairer re-indexes stored records that never reached the search index.
type IndexRepairer interface {
	RepairByID(ctx context.Context, recordID int64) error
	RepairAll(ctx context.Context) (int, error)
}
