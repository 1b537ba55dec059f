package ports

import (
	"context"

	"github.com/insightlab/insight-reader/internal/core/domain"
)

// DocumentIngestor is the inbound contract for upload orchestration:
// pipeline, analysis and session creation in one call.
type DocumentIngestor interface {
	Ingest(ctx context.Context, filename string, data []byte, languageTag string) (*domain.UploadResult, error)
}

// SessionReader is the inbound read model over stored sessions.
type SessionReader interface {
	GetPage(ctx context.Context, sessionID string, page int) (*domain.PageView, error)
	GetPageImage(ctx context.Context, sessionID string, page int) ([]byte, error)
	DescribePageImage(ctx context.Context, sessionID string, page int) (string, error)
	GetSummary(ctx context.Context, sessionID string) (*domain.SummaryView, error)
	ListSessions(ctx context.Context) []domain.SessionSummary
	DeleteSession(ctx context.Context, sessionID string) error
}

// SessionNavigator interprets navigation commands against a session.
type SessionNavigator interface {
	Navigate(ctx context.Context, sessionID, command string) (domain.NavigationResult, error)
}

// FormAnalyzer is the inbound contract for form-image analysis.
type FormAnalyzer interface {
	AnalyzeForm(ctx context.Context, imagePNG []byte, languageTag string) (*domain.FormAnalysis, error)
}

// MoneyAnalyzer is the inbound contract for currency-image analysis.
type MoneyAnalyzer interface {
	AnalyzeMoney(ctx context.Context, imagePNG []byte, languageTag string) (*domain.MoneyAnalysis, error)
}

// SpeechService synthesizes speech for client text.
type SpeechService interface {
	Synthesize(ctx context.Context, text, languageTag string) (*domain.SpeechAudio, error)
}
