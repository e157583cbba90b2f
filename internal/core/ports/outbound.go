package ports

import (
	"context"

	"github.com/avelichko/docscan/internal/core/domain"
)

// TextExtractor converts a document file into raw text plus a confidence
// signal. Engine-level extraction failures degrade to an empty Extraction
// rather than an error; errors are reserved for unusable input paths.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (domain.Extraction, error)
}

// RecordRepository persists and reads extracted records.
type RecordRepository interface {
	Insert(ctx context.Context, rec *domain.Record) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Record, error)
	ListAll(ctx context.Context) ([]domain.Record, error)
}

// SearchIndex mirrors records into the full-text index and answers keyword
// queries. Documents are keyed by the store-assigned record id.
type SearchIndex interface {
	EnsureSchema(ctx context.Context) error
	Index(ctx context.Context, rec domain.Record) error
	Search(ctx context.Context, keyword string) (domain.SearchResult, error)
}

// MessageQueue carries ids of records whose indexing is pending retry.
type MessageQueue interface {
	PublishIndexPending(ctx context.Context, recordID int64) error
	SubscribeIndexPending(ctx context.Context, handler func(context.Context, int64) error) error
}
