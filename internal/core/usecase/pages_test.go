package usecase

import (
	"context"
	"testing"

	"github.com/insightlab/insight-reader/internal/core/domain"
)

func newQueryFixture(t *testing.T, doc *domain.Document, gen *stubGenerator) (*SessionQueryUseCase, *stubStore, *domain.Session) {
	t.Helper()
	store := newStubStore()
	sess := store.mustCreate(doc, domain.LocaleEnglish)
	analyzer := NewAnalysisUseCase(gen, discardLogger())
	return NewSessionQueryUseCase(store, analyzer), store, sess
}

func TestGetPageMergesAnalysisEntry(t *testing.T) {
	doc := testDocument(textPages(3)...)
	doc.Analysis = &domain.AnalysisResult{
		Summary: "summary",
		Outcome: domain.OutcomeAnalyzed,
		Pages: []domain.PageAnalysis{
			{PageNumber: 2, Title: "Analyzed Title", Explanation: "deep dive", KeyPoints: []string{"point"}, SlideType: "content", ImportanceLevel: "high"},
		},
	}
	uc, store, sess := newQueryFixture(t, doc, &stubGenerator{})

	view, err := uc.GetPage(context.Background(), sess.ID, 2)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if view.Title != "Analyzed Title" || view.Explanation != "deep dive" {
		t.Fatalf("expected analysis entry merged, got %+v", view)
	}
	if view.ImportanceLevel != "high" {
		t.Fatalf("expected importance from entry, got %q", view.ImportanceLevel)
	}
	if store.sessions[sess.ID].CurrentPage != 2 {
		t.Fatal("expected reading a page to move the cursor")
	}
}

func TestGetPageWithoutAnalysisEntryUsesDefaults(t *testing.T) {
	// A parse-failure fallback covers only page 1; later pages fall back
	// to the ingested content with default classification.
	doc := testDocument(textPages(3)...)
	doc.Analysis = &domain.AnalysisResult{
		Outcome: domain.OutcomeFallbackParse,
		Pages: []domain.PageAnalysis{
			{PageNumber: 1, Title: "Analysis Result", SlideType: "content", ImportanceLevel: "medium"},
		},
	}
	uc, _, sess := newQueryFixture(t, doc, &stubGenerator{})

	view, err := uc.GetPage(context.Background(), sess.ID, 3)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if view.Title != "Slide 3" {
		t.Fatalf("expected ingested title, got %q", view.Title)
	}
	if view.OriginalText != "text of slide 3" {
		t.Fatalf("expected ingested text, got %q", view.OriginalText)
	}
	if view.SlideType != "content" || view.ImportanceLevel != "medium" {
		t.Fatalf("expected default classification, got %+v", view)
	}
	if view.KeyPoints == nil {
		t.Fatal("expected non-nil key points")
	}
}

func TestGetPageOutOfBounds(t *testing.T) {
	uc, _, sess := newQueryFixture(t, testDocument(textPages(2)...), &stubGenerator{})

	for _, page := range []int{0, 3, -1} {
		if _, err := uc.GetPage(context.Background(), sess.ID, page); !domain.IsKind(err, domain.ErrPageNotFound) {
			t.Fatalf("page %d: expected page not found, got %v", page, err)
		}
	}
}

func TestGetPageImage(t *testing.T) {
	pages := textPages(2)
	pages[0].ImagePNG = []byte{0x89, 'P', 'N', 'G'}
	uc, _, sess := newQueryFixture(t, testDocument(pages...), &stubGenerator{})

	image, err := uc.GetPageImage(context.Background(), sess.ID, 1)
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	if len(image) != 4 {
		t.Fatalf("unexpected image payload: %v", image)
	}

	// Page 2 carries no raster.
	if _, err := uc.GetPageImage(context.Background(), sess.ID, 2); !domain.IsKind(err, domain.ErrPageNotFound) {
		t.Fatalf("expected page not found for missing raster, got %v", err)
	}
}

func TestDescribePageImage(t *testing.T) {
	pages := textPages(1)
	pages[0].ImagePNG = []byte{1, 2, 3}
	gen := &stubGenerator{available: true, visionReply: "  a table of results  "}
	uc, _, sess := newQueryFixture(t, testDocument(pages...), gen)

	got, err := uc.DescribePageImage(context.Background(), sess.ID, 1)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if got != "a table of results" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestGetSummaryReflectsAnalysis(t *testing.T) {
	doc := testDocument(textPages(2)...)
	doc.Analysis = &domain.AnalysisResult{
		Summary: "two slides",
		Outcome: domain.OutcomeAnalyzed,
		Pages: []domain.PageAnalysis{
			{PageNumber: 1}, {PageNumber: 2},
		},
	}
	uc, _, sess := newQueryFixture(t, doc, &stubGenerator{})

	summary, err := uc.GetSummary(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary.Summary != "two slides" || summary.Outcome != domain.OutcomeAnalyzed {
		t.Fatalf("unexpected summary view: %+v", summary)
	}
	if summary.TotalPages != 2 || len(summary.Slides) != 2 {
		t.Fatalf("unexpected summary view: %+v", summary)
	}
}

func TestDeleteSession(t *testing.T) {
	uc, store, sess := newQueryFixture(t, testDocument(textPages(1)...), &stubGenerator{})

	if err := uc.DeleteSession(context.Background(), sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.sessions[sess.ID]; ok {
		t.Fatal("expected session removed")
	}
	if err := uc.DeleteSession(context.Background(), sess.ID); !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found on second delete, got %v", err)
	}
}

func TestListSessions(t *testing.T) {
	uc, store, _ := newQueryFixture(t, testDocument(textPages(1)...), &stubGenerator{})
	store.mustCreate(testDocument(textPages(2)...), domain.LocaleArabic)

	sessions := uc.ListSessions(context.Background())
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
}
