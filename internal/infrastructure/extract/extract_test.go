package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/avelichko/docscan/internal/core/domain"
)

type engineFake struct {
	text  string
	err   error
	calls int
}

func (f *engineFake) Name() string { return "fake" }

func (f *engineFake) Recognize(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestExtractRejectsMissingPath(t *testing.T) {
	e := New(&engineFake{}, discardLogger())

	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtractRejectsDirectory(t *testing.T) {
	e := New(&engineFake{}, discardLogger())

	_, err := e.Extract(context.Background(), t.TempDir())
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtractRoutesImagesToOCR(t *testing.T) {
	engine := &engineFake{text: "Total Due: $42.00"}
	e := New(engine, discardLogger())

	path := writeFile(t, "invoice.png", "binary")
	got, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if engine.calls != 1 {
		t.Fatalf("expected one OCR call, got %d", engine.calls)
	}
	if got.Text != "Total Due: $42.00" {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if got.Confidence != domain.ExtractedConfidence {
		t.Fatalf("expected confidence %v, got %v", domain.ExtractedConfidence, got.Confidence)
	}
}

func TestExtractDegradesOnEngineFailure(t *testing.T) {
	engine := &engineFake{err: errors.New("unsupported format")}
	e := New(engine, discardLogger())

	path := writeFile(t, "corrupt.png", "junk")
	got, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("expected degrade, got error %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty extraction, got %+v", got)
	}
	if got.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", got.Confidence)
	}
}

func TestExtractDegradesOnWhitespaceOnlyText(t *testing.T) {
	engine := &engineFake{text: "  \n\t "}
	e := New(engine, discardLogger())

	path := writeFile(t, "blank.png", "binary")
	got, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty extraction, got %+v", got)
	}
}

func TestExtractReadsPlainTextWithoutOCR(t *testing.T) {
	engine := &engineFake{}
	e := New(engine, discardLogger())

	path := writeFile(t, "notes.txt", "meeting notes\n")
	got, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if engine.calls != 0 {
		t.Fatalf("expected no OCR call for plain text, got %d", engine.calls)
	}
	if got.Text != "meeting notes" {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestExtractPropagatesCancellation(t *testing.T) {
	engine := &engineFake{err: context.Canceled}
	e := New(engine, discardLogger())

	path := writeFile(t, "slow.png", "binary")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Extract(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
