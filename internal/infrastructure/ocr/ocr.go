// Package ocr defines the optical character recognition boundary. The
// concrete engine lives in a subpackage so that importing this package does
// not force a cgo dependency on callers that never run recognition.
package ocr

import "context"

// Engine is the OCR provider contract: one image file in, plain text out.
// An engine-level recognition failure is returned as an error; the caller
// decides whether that is fatal or a degrade-to-empty outcome.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, path string) (string, error)
}
