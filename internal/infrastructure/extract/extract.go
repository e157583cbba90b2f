// Package extract implements the text extraction boundary: it validates the
// submitted path, routes it to a format-specific reader and applies the
// uniform confidence policy (a constant for non-empty text, zero otherwise).
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/avelichko/docscan/internal/core/domain"
	"github.com/avelichko/docscan/internal/infrastructure/ocr"
)

type Extractor struct {
	engine ocr.Engine
	logger *slog.Logger
}

func New(engine ocr.Engine, logger *slog.Logger) *Extractor {
	return &Extractor{engine: engine, logger: logger}
}

// Extract returns the text content of the file at path. Engine-level
// failures (corrupt file, unsupported encoding) degrade to an empty
// Extraction so the pipeline applies its uniform empty-text handling; only
// an unusable path is an error.
func (e *Extractor) Extract(ctx context.Context, path string) (domain.Extraction, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Extraction{}, domain.WrapError(domain.ErrInvalidInput, "stat path", err)
	}
	if info.IsDir() {
		return domain.Extraction{}, domain.WrapError(domain.ErrInvalidInput, "stat path", errors.New("path is a directory"))
	}

	text, err := e.extractByFormat(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Extraction{}, err
		}
		e.logger.Warn("extraction_degraded", "path", path, "error", err)
		return domain.Extraction{}, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Extraction{}, nil
	}
	return domain.Extraction{Text: text, Confidence: domain.ExtractedConfidence}, nil
}

func (e *Extractor) extractByFormat(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return readPDFText(path)
	case ".xlsx", ".xlsm":
		return readSpreadsheetText(path)
	case ".txt", ".md", ".csv":
		return readPlainText(path)
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
		return e.engine.Recognize(ctx, path)
	default:
		// Unknown extensions go through OCR; Tesseract rejects what it
		// cannot decode and that rejection degrades to empty text.
		return e.engine.Recognize(ctx, path)
	}
}

func readPlainText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(raw), nil
}
