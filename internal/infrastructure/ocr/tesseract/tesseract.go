package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Engine runs recognition through the gosseract client. A fresh client is
// created per call; gosseract clients are not safe for reuse across images
// with different settings.
type Engine struct {
	dataPath      string
	language      string
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed engine. dataPath points at the trained
// data directory and may be empty to use the system default; language is a
// Tesseract language code such as "eng".
func New(dataPath, language string) *Engine {
	if language == "" {
		language = "eng"
	}
	return &Engine{
		dataPath:      dataPath,
		language:      language,
		clientFactory: gosseract.NewClient,
	}
}

func (e *Engine) Name() string { return "tesseract" }

func (e *Engine) Recognize(ctx context.Context, path string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if e.dataPath != "" {
		if err := c.SetTessdataPrefix(e.dataPath); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := c.SetImage(path); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
