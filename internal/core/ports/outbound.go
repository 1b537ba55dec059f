package ports

import (
	"context"

	"github.com/insightlab/insight-reader/internal/core/domain"
)

// DocumentPipeline turns raw artifact bytes into an ordered page
// sequence. The extension routes to a format decoder.
type DocumentPipeline interface {
	Ingest(ctx context.Context, data []byte, ext string) (*domain.Document, error)
}

// Generator is the textual contract with the generative backend.
// Available reports whether the backend was configured at startup;
// callers check it before use instead of treating unavailability as an
// exceptional condition.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateVision(ctx context.Context, prompt string, imagePNG []byte) (string, error)
	Available() bool
}

// DocumentAnalyzer produces a well-formed analysis for a document. It
// never fails hard: backend or parse failures degrade to deterministic
// fallback results, flagged via AnalysisResult.Outcome.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, doc *domain.Document, locale domain.Locale) *domain.AnalysisResult
	DescribeImage(ctx context.Context, imagePNG []byte, locale domain.Locale) string
	ExtractPageReference(ctx context.Context, command string, currentPage, totalPages int) (int, bool)
}

// SpeechSynthesizer converts text into audio. There is no meaningful
// textual fallback for audio, so failures surface as errors.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, locale domain.Locale) (audio []byte, mimeType string, err error)
}

// SessionStore owns the identifier-to-session map. All operations on a
// single session are linearizable with respect to each other; cursor
// writes go through UpdateCursor or MoveCursor, never through a
// handed-out session. Relative moves must use MoveCursor: it resolves
// the target against the live cursor under the store lock, so
// concurrent commands on one session cannot lose updates.
type SessionStore interface {
	Create(ctx context.Context, doc *domain.Document, filename, fileType string, locale domain.Locale) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	Touch(ctx context.Context, id string) error
	UpdateCursor(ctx context.Context, id string, page int) error
	MoveCursor(ctx context.Context, id string, move func(current, total int) (page int, ok bool)) (int, error)
	Delete(ctx context.Context, id string) bool
	List(ctx context.Context) []domain.SessionSummary
}

// BoxDetector locates form elements in an image.
type BoxDetector interface {
	DetectBoxes(ctx context.Context, imagePNG []byte) ([]domain.BoxRegion, error)
}

// TextRecognizer extracts positioned text from an image.
type TextRecognizer interface {
	ExtractText(ctx context.Context, imagePNG []byte, locale domain.Locale) ([]domain.TextRegion, error)
}
