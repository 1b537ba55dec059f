package usecase

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/insightlab/insight-reader/internal/core/domain"
	"github.com/insightlab/insight-reader/internal/core/ports"
)

// IngestDocumentUseCase orchestrates one upload: pipeline, bulk
// analysis and session creation. The document is fully built before
// anything is stored, so a failed ingest leaves no session behind.
type IngestDocumentUseCase struct {
	pipeline ports.DocumentPipeline
	analyzer ports.DocumentAnalyzer
	store    ports.SessionStore
	logger   *slog.Logger
}

func NewIngestDocumentUseCase(
	pipeline ports.DocumentPipeline,
	analyzer ports.DocumentAnalyzer,
	store ports.SessionStore,
	logger *slog.Logger,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		pipeline: pipeline,
		analyzer: analyzer,
		store:    store,
		logger:   logger,
	}
}

func (uc *IngestDocumentUseCase) Ingest(ctx context.Context, filename string, data []byte, languageTag string) (*domain.UploadResult, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest document", errors.New("empty filename"))
	}
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest document", errors.New("empty file"))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	doc, err := uc.pipeline.Ingest(ctx, data, ext)
	if err != nil {
		return nil, err
	}

	locale := domain.ResolveLocale(languageTag)
	doc.Analysis = uc.analyzer.Analyze(ctx, doc, locale)

	sess, err := uc.store.Create(ctx, doc, filename, ext, locale)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("document ingested",
		"session_id", sess.ID,
		"file_type", ext,
		"total_pages", doc.TotalPages,
		"analysis_outcome", doc.Analysis.Outcome,
		"language", locale,
	)

	return &domain.UploadResult{
		SessionID:        sess.ID,
		Filename:         filename,
		FileType:         ext,
		TotalPages:       doc.TotalPages,
		AnalysisLanguage: locale,
		AnalysisOutcome:  doc.Analysis.Outcome,
		Message:          locale.Messagef(domain.TmplUploadOK, doc.TotalPages),
	}, nil
}
