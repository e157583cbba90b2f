// Package elastic adapts the Elasticsearch REST API to the SearchIndex port:
// index bootstrap, per-record upsert keyed by the store id, and keyword
// queries with highlighted snippets.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avelichko/docscan/internal/core/domain"
	"github.com/avelichko/docscan/internal/infrastructure/resilience"
)

const (
	// Highlight markers; chosen not to collide with document content and
	// rewritten at presentation time.
	PreTag  = ">>>"
	PostTag = "<<<"

	maxResults       = 10
	fragmentSize     = 150
	fragmentsPerHit  = 1
	fragmentJoinWith = "..."
)

type Client struct {
	baseURL    string
	index      string
	httpClient *http.Client
	executor   *resilience.Executor
	logger     *slog.Logger
}

func New(baseURL, index string, executor *resilience.Executor, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		index:      index,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
		logger:     logger,
	}
}

// EnsureSchema creates the index with its field mapping when it does not
// exist yet. Safe to call on every process start.
func (c *Client) EnsureSchema(ctx context.Context) error {
	exists, err := c.indexExists(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrIndexUnavailable, "check index", err)
	}
	if exists {
		return nil
	}

	mapping := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":         map[string]any{"type": "keyword"},
				"filename":   map[string]any{"type": "keyword"},
				"text":       map[string]any{"type": "text", "analyzer": "english"},
				"confidence": map[string]any{"type": "double"},
				"uploadTime": map[string]any{"type": "date", "format": "yyyy-MM-dd HH:mm:ss"},
			},
		},
	}

	err = c.do(ctx, "elastic.create_index", http.MethodPut, c.baseURL+"/"+c.index, mapping, nil)
	if err != nil {
		return domain.WrapError(domain.ErrIndexUnavailable, "create index", err)
	}
	c.logger.Info("search_index_created", "index", c.index)
	return nil
}

// Index upserts the record's document under its store-assigned id, keeping
// the store and the index joined on the same key.
func (c *Client) Index(ctx context.Context, rec domain.Record) error {
	if rec.ID <= 0 {
		return domain.WrapError(domain.ErrInvalidInput, "index record", errors.New("record id is unbound"))
	}

	doc := map[string]any{
		"id":         rec.ID,
		"filename":   rec.Filename,
		"text":       rec.Text,
		"confidence": rec.Confidence,
		"uploadTime": rec.UploadedAt.UTC().Format(domain.UploadTimeLayout),
	}

	url := fmt.Sprintf("%s/%s/_doc/%d", c.baseURL, c.index, rec.ID)
	if err := c.do(ctx, "elastic.index", http.MethodPut, url, doc, nil); err != nil {
		return domain.WrapError(domain.ErrIndexUnavailable, "index record", err)
	}
	return nil
}

// Search runs a relevance-ranked match query on the text field and returns
// the top hits in engine order, each with one highlighted fragment.
func (c *Client) Search(ctx context.Context, keyword string) (domain.SearchResult, error) {
	query := map[string]any{
		"size": maxResults,
		"query": map[string]any{
			"match": map[string]any{
				"text": map[string]any{"query": keyword},
			},
		},
		"highlight": map[string]any{
			"fields": map[string]any{
				"text": map[string]any{
					"pre_tags":            []string{PreTag},
					"post_tags":           []string{PostTag},
					"number_of_fragments": fragmentsPerHit,
					"fragment_size":       fragmentSize,
				},
			},
		},
	}

	var resp searchResponse
	url := c.baseURL + "/" + c.index + "/_search"
	if err := c.do(ctx, "elastic.search", http.MethodPost, url, query, &resp); err != nil {
		return domain.SearchResult{}, domain.WrapError(domain.ErrSearchUnavailable, "search index", err)
	}

	result := domain.SearchResult{Total: resp.Hits.Total.Value}
	for _, hit := range resp.Hits.Hits {
		if hit.Source.Filename == "" {
			// Malformed document in the index; skip the hit rather than
			// fail the whole query.
			c.logger.Warn("malformed_search_hit", "index", c.index, "id", hit.ID)
			continue
		}
		snippet := domain.SnippetUnavailable
		if fragments := hit.Highlight["text"]; len(fragments) > 0 {
			snippet = strings.Join(fragments, fragmentJoinWith)
		}
		result.Hits = append(result.Hits, domain.Hit{
			Filename: hit.Source.Filename,
			Score:    hit.Score,
			Snippet:  snippet,
		})
	}
	return result, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string  `json:"_id"`
			Score  float64 `json:"_score"`
			Source struct {
				Filename string `json:"filename"`
			} `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *Client) indexExists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/"+c.index, nil)
	if err != nil {
		return false, fmt.Errorf("create exists request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("index exists request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("index exists status: %s", resp.Status)
	}
}

func (c *Client) do(ctx context.Context, operation, method, url string, body any, out any) error {
	call := func(callCtx context.Context) error {
		return c.doOnce(callCtx, method, url, body, out)
	}
	if c.executor == nil {
		return call(ctx)
	}
	return c.executor.Execute(ctx, operation, call, classifyElasticError)
}

func (c *Client) doOnce(ctx context.Context, method, url string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		statusErr := &statusError{code: resp.StatusCode, status: resp.Status}
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			statusErr.body = msg
		}
		return statusErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

type transportError struct{ err error }

func (e *transportError) Error() string { return fmt.Sprintf("elasticsearch request: %v", e.err) }
func (e *transportError) Unwrap() error { return e.err }

type statusError struct {
	code   int
	status string
	body   string
}

func (e *statusError) Error() string {
	if e.body != "" {
		return fmt.Sprintf("elasticsearch status: %s: %s", e.status, e.body)
	}
	return fmt.Sprintf("elasticsearch status: %s", e.status)
}

// classifyElasticError marks network faults and server-side errors as
// retryable; client-side errors are neither retried nor counted against the
// breaker.
func classifyElasticError(err error) resilience.ErrorClassification {
	var sErr *statusError
	if errors.As(err, &sErr) {
		if sErr.code >= 500 {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	var tErr *transportError
	if errors.As(err, &tErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
