package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/insightlab/insight-reader/internal/core/domain"
	"github.com/insightlab/insight-reader/internal/core/ports"
)

// SessionQueryUseCase is the read side over stored sessions: page
// views, rasters, summaries and session management.
type SessionQueryUseCase struct {
	store    ports.SessionStore
	analyzer ports.DocumentAnalyzer
}

func NewSessionQueryUseCase(store ports.SessionStore, analyzer ports.DocumentAnalyzer) *SessionQueryUseCase {
	return &SessionQueryUseCase{
		store:    store,
		analyzer: analyzer,
	}
}

// GetPage returns the view for one page and moves the cursor there.
func (uc *SessionQueryUseCase) GetPage(ctx context.Context, sessionID string, page int) (*domain.PageView, error) {
	sess, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if page < 1 || page > sess.Document.TotalPages {
		return nil, domain.WrapError(domain.ErrPageNotFound, "get page", fmt.Errorf("page %d of %d", page, sess.Document.TotalPages))
	}

	if err := uc.store.UpdateCursor(ctx, sessionID, page); err != nil {
		return nil, err
	}

	ingested := sess.Document.Pages[page-1]
	view := &domain.PageView{
		SessionID:       sessionID,
		PageNumber:      page,
		Title:           ingested.Title,
		OriginalText:    ingested.Text,
		SlideType:       sess.Language.Message(domain.MsgSlideTypeContent),
		ImportanceLevel: sess.Language.Message(domain.MsgImportanceMedium),
		KeyPoints:       []string{},
		HasImage:        len(ingested.ImagePNG) > 0,
	}
	if view.Title == "" {
		view.Title = sess.Language.Messagef(domain.TmplPageTitle, page)
	}

	if entry, ok := sess.Document.PageAnalysisFor(page); ok {
		if entry.Title != "" {
			view.Title = entry.Title
		}
		view.SlideType = entry.SlideType
		view.ImportanceLevel = entry.ImportanceLevel
		view.Explanation = entry.Explanation
		if entry.KeyPoints != nil {
			view.KeyPoints = entry.KeyPoints
		}
	}
	return view, nil
}

// GetPageImage returns the PNG raster for one page.
func (uc *SessionQueryUseCase) GetPageImage(ctx context.Context, sessionID string, page int) ([]byte, error) {
	sess, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if page < 1 || page > sess.Document.TotalPages {
		return nil, domain.WrapError(domain.ErrPageNotFound, "get page image", fmt.Errorf("page %d of %d", page, sess.Document.TotalPages))
	}

	image := sess.Document.Pages[page-1].ImagePNG
	if len(image) == 0 {
		return nil, domain.WrapError(domain.ErrPageNotFound, "get page image", errors.New("no raster for page"))
	}
	return image, nil
}

// DescribePageImage runs the best-effort vision description over a
// page raster. The description itself cannot fail; a missing raster
// can.
func (uc *SessionQueryUseCase) DescribePageImage(ctx context.Context, sessionID string, page int) (string, error) {
	sess, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	image, err := uc.GetPageImage(ctx, sessionID, page)
	if err != nil {
		return "", err
	}
	return uc.analyzer.DescribeImage(ctx, image, sess.Language), nil
}

func (uc *SessionQueryUseCase) GetSummary(ctx context.Context, sessionID string) (*domain.SummaryView, error) {
	sess, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	analysis := sess.Document.Analysis
	if analysis == nil {
		// Sessions are only created with an attached analysis; treat a
		// missing one as an empty fallback rather than failing the read.
		analysis = &domain.AnalysisResult{
			Summary: sess.Language.Message(domain.MsgFallbackSummary),
			Pages:   []domain.PageAnalysis{},
			Outcome: domain.OutcomeFallbackUnavailable,
		}
	}

	return &domain.SummaryView{
		SessionID:  sessionID,
		TotalPages: sess.Document.TotalPages,
		Language:   sess.Language,
		Summary:    analysis.Summary,
		Outcome:    analysis.Outcome,
		Slides:     analysis.Pages,
	}, nil
}

func (uc *SessionQueryUseCase) ListSessions(ctx context.Context) []domain.SessionSummary {
	return uc.store.List(ctx)
}

func (uc *SessionQueryUseCase) DeleteSession(ctx context.Context, sessionID string) error {
	if !uc.store.Delete(ctx, sessionID) {
		return domain.WrapError(domain.ErrSessionNotFound, "delete session", fmt.Errorf("id %s", sessionID))
	}
	return nil
}
