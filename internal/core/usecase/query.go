package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/avelichko/docscan/internal/core/domain"
	"github.com/avelichko/docscan/internal/core/ports"
)

// SearchRecordsUseCase validates the keyword and delegates to the search
// index. Zero hits is a normal result, not an error.
type SearchRecordsUseCase struct {
	index ports.SearchIndex
}

func NewSearchRecordsUseCase(index ports.SearchIndex) *SearchRecordsUseCase {
	return &SearchRecordsUseCase{index: index}
}

func (uc *SearchRecordsUseCase) Search(ctx context.Context, keyword string) (*domain.SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search records", errors.New("empty keyword"))
	}

	result, err := uc.index.Search(ctx, keyword)
	if err != nil {
		return nil, domain.WrapError(domain.ErrSearchUnavailable, "search records", err)
	}
	return &result, nil
}
