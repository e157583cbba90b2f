package usecase

import (
	"context"

	"github.com/avelichko/docscan/internal/core/domain"
	"github.com/avelichko/docscan/internal/core/ports"
)

// ListRecordsUseCase exposes the stored records, most recent first.
type ListRecordsUseCase struct {
	repo ports.RecordRepository
}

func NewListRecordsUseCase(repo ports.RecordRepository) *ListRecordsUseCase {
	return &ListRecordsUseCase{repo: repo}
}

func (uc *ListRecordsUseCase) ListRecords(ctx context.Context) ([]domain.Record, error) {
	records, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStoreUnavailable, "list records", err)
	}
	return records, nil
}
