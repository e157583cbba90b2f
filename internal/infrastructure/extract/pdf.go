package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// readPDFText pulls the embedded text layer out of a PDF. Scanned PDFs with
// no text layer yield an empty string, which the caller treats the same as
// an empty OCR result.
func readPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text layer: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, content); err != nil {
		return "", fmt.Errorf("copy pdf text: %w", err)
	}
	return sb.String(), nil
}
