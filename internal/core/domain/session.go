package domain

import "time"

// AnalysisOutcome records how an analysis result was produced. Fallback
// results are valid terminal states; callers treat them like any other
// result and the flag exists for observability only.
type AnalysisOutcome string

const (
	OutcomeAnalyzed            AnalysisOutcome = "analyzed"
	OutcomeFallbackParse       AnalysisOutcome = "fallback_parse"
	OutcomeFallbackUnavailable AnalysisOutcome = "fallback_unavailable"
)

// Page is one unit of an ingested document (a slide or a PDF page).
// Number is 1-based and never changes after ingest. Text fields are
// empty strings, never absent.
type Page struct {
	Number   int    `json:"page_number"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Notes    string `json:"notes,omitempty"`
	ImagePNG []byte `json:"-"`
}

// PageAnalysis holds the per-page fields produced by the analysis
// engine (or by a fallback).
type PageAnalysis struct {
	PageNumber      int      `json:"slide_number"`
	Title           string   `json:"title"`
	OriginalText    string   `json:"original_text"`
	Explanation     string   `json:"explanation"`
	KeyPoints       []string `json:"key_points"`
	SlideType       string   `json:"slide_type"`
	ImportanceLevel string   `json:"importance_level"`
}

// AnalysisResult is attached to a document exactly once per analysis
// run and replaced wholesale on re-analysis, never patched in place.
type AnalysisResult struct {
	Summary string          `json:"presentation_summary"`
	Pages   []PageAnalysis  `json:"slides_analysis"`
	Outcome AnalysisOutcome `json:"outcome"`
}

// Document is an ordered page sequence. TotalPages is fixed when
// ingest completes and is never recomputed.
type Document struct {
	Pages      []Page          `json:"pages"`
	TotalPages int             `json:"total_pages"`
	Analysis   *AnalysisResult `json:"analysis,omitempty"`
}

// PageAnalysisFor returns the analysis entry for a 1-based page
// number, or a zero entry when the attached result does not cover it
// (degenerate parse-failure fallbacks carry a single entry).
func (d *Document) PageAnalysisFor(number int) (PageAnalysis, bool) {
	if d.Analysis == nil {
		return PageAnalysis{}, false
	}
	for _, entry := range d.Analysis.Pages {
		if entry.PageNumber == number {
			return entry, true
		}
	}
	return PageAnalysis{}, false
}

// Session binds one ingested document to one navigation cursor and one
// analysis result. Sessions are ephemeral and mutated only through the
// session store.
type Session struct {
	ID             string    `json:"session_id"`
	Filename       string    `json:"filename"`
	FileType       string    `json:"file_type"`
	Language       Locale    `json:"language"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	CurrentPage    int       `json:"current_page"`
	Document       *Document `json:"-"`
}

type SessionSummary struct {
	SessionID   string `json:"session_id"`
	Filename    string `json:"filename"`
	FileType    string `json:"file_type"`
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	Language    Locale `json:"language"`
}

// NavigationResult is the outcome of interpreting one navigation
// command. An unrecognized or out-of-bounds command yields
// Success=false with an explanatory message, not an error.
type NavigationResult struct {
	Success     bool   `json:"success"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
	Message     string `json:"message"`
	Strategy    string `json:"-"`
}
