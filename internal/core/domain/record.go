package domain

import "time"

// UploadTimeLayout is the lexical timestamp format exchanged with the record
// store and the search index.
const UploadTimeLayout = "2006-01-02 15:04:05"

// ExtractedConfidence is the confidence assigned whenever extraction yields
// non-empty text. Tesseract does not expose a stable per-document confidence
// metric, so a constant stands in for one; an engine that reports real
// quality should replace it.
const ExtractedConfidence = 95.0

type SubmissionStatus string

const (
	StatusIndexed       SubmissionStatus = "indexed"
	StatusIndexDegraded SubmissionStatus = "index_degraded"
	StatusDuplicate     SubmissionStatus = "duplicate"
	StatusNoText        SubmissionStatus = "no_text"
)

// Record is the extracted-document entity stored in Postgres and mirrored
// into the search index under the same store-assigned id.
type Record struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Extraction is the outcome of running text extraction over a file.
// Empty Text with zero Confidence is the degraded "nothing readable" result.
type Extraction struct {
	Text       string
	Confidence float64
}

func (e Extraction) Empty() bool { return e.Text == "" }

// Submission reports how far a submitted document travelled through the
// pipeline. Record is nil when nothing was stored (no_text, duplicate).
type Submission struct {
	CorrelationID string           `json:"correlation_id"`
	Status        SubmissionStatus `json:"status"`
	Record        *Record          `json:"record,omitempty"`
}
