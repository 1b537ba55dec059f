package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/insightlab/insight-reader/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDocument(pages ...domain.Page) *domain.Document {
	return &domain.Document{
		Pages:      pages,
		TotalPages: len(pages),
	}
}

func textPages(n int) []domain.Page {
	pages := make([]domain.Page, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, domain.Page{
			Number: i,
			Title:  fmt.Sprintf("Slide %d", i),
			Text:   fmt.Sprintf("text of slide %d", i),
		})
	}
	return pages
}

// stubGenerator scripts backend replies for analysis tests.
type stubGenerator struct {
	available   bool
	reply       string
	err         error
	visionReply string
	visionErr   error

	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *stubGenerator) GenerateVision(context.Context, string, []byte) (string, error) {
	if g.visionErr != nil {
		return "", g.visionErr
	}
	return g.visionReply, nil
}

func (g *stubGenerator) Available() bool {
	return g.available
}

// stubStore is a minimal in-memory session store for use case tests.
// No expiry, no eviction; cursor bounds are still enforced and cursor
// moves serialize under the mutex like the real store.
type stubStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	nextID   int
}

func newStubStore() *stubStore {
	return &stubStore{sessions: map[string]*domain.Session{}}
}

func (s *stubStore) Create(_ context.Context, doc *domain.Document, filename, fileType string, locale domain.Locale) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sess := &domain.Session{
		ID:          fmt.Sprintf("sess-%d", s.nextID),
		Filename:    filename,
		FileType:    fileType,
		Language:    locale,
		CurrentPage: 1,
		Document:    doc,
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *stubStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", fmt.Errorf("id %s", id))
	}
	copied := *sess
	return &copied, nil
}

func (s *stubStore) Touch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *stubStore) UpdateCursor(_ context.Context, id string, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "update cursor", fmt.Errorf("id %s", id))
	}
	if page < 1 || page > sess.Document.TotalPages {
		return domain.WrapError(domain.ErrPageNotFound, "update cursor", fmt.Errorf("page %d", page))
	}
	sess.CurrentPage = page
	return nil
}

func (s *stubStore) MoveCursor(_ context.Context, id string, move func(current, total int) (int, bool)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return 0, domain.WrapError(domain.ErrSessionNotFound, "move cursor", fmt.Errorf("id %s", id))
	}
	page, moved := move(sess.CurrentPage, sess.Document.TotalPages)
	if !moved {
		return sess.CurrentPage, nil
	}
	sess.CurrentPage = page
	return page, nil
}

func (s *stubStore) Delete(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *stubStore) List(context.Context) []domain.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SessionSummary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, domain.SessionSummary{
			SessionID:   sess.ID,
			Filename:    sess.Filename,
			FileType:    sess.FileType,
			TotalPages:  sess.Document.TotalPages,
			CurrentPage: sess.CurrentPage,
			Language:    sess.Language,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

func (s *stubStore) mustCreate(doc *domain.Document, locale domain.Locale) *domain.Session {
	sess, _ := s.Create(context.Background(), doc, "deck.pptx", ".pptx", locale)
	return sess
}

// stubPipeline returns a prebuilt document regardless of input.
type stubPipeline struct {
	doc    *domain.Document
	err    error
	gotExt string
}

func (p *stubPipeline) Ingest(_ context.Context, _ []byte, ext string) (*domain.Document, error) {
	p.gotExt = ext
	if p.err != nil {
		return nil, p.err
	}
	return p.doc, nil
}

type stubDetector struct {
	boxes []domain.BoxRegion
	err   error
}

func (d *stubDetector) DetectBoxes(context.Context, []byte) ([]domain.BoxRegion, error) {
	return d.boxes, d.err
}

type stubRecognizer struct {
	texts []domain.TextRegion
	err   error
}

func (r *stubRecognizer) ExtractText(context.Context, []byte, domain.Locale) ([]domain.TextRegion, error) {
	return r.texts, r.err
}

type stubSynthesizer struct {
	audio []byte
	mime  string
	err   error

	gotText   string
	gotLocale domain.Locale
}

func (s *stubSynthesizer) Synthesize(_ context.Context, text string, locale domain.Locale) ([]byte, string, error) {
	s.gotText = text
	s.gotLocale = locale
	if s.err != nil {
		return nil, "", s.err
	}
	return s.audio, s.mime, nil
}
