package domain

// UploadResult is returned to the client after ingest, analysis and
// session creation complete.
type UploadResult struct {
	SessionID        string          `json:"session_id"`
	Filename         string          `json:"filename"`
	FileType         string          `json:"file_type"`
	TotalPages       int             `json:"total_pages"`
	AnalysisLanguage Locale          `json:"analysis_language"`
	AnalysisOutcome  AnalysisOutcome `json:"analysis_outcome"`
	Message          string          `json:"message"`
}

// PageView is the per-page read model: ingested content merged with
// the analysis entry covering that page, defaults when none does.
type PageView struct {
	SessionID       string   `json:"session_id"`
	PageNumber      int      `json:"page_number"`
	Title           string   `json:"title"`
	SlideType       string   `json:"slide_type"`
	ImportanceLevel string   `json:"importance_level"`
	KeyPoints       []string `json:"key_points"`
	Explanation     string   `json:"explanation"`
	OriginalText    string   `json:"original_text"`
	HasImage        bool     `json:"has_image"`
}

// SummaryView is the whole-document read model.
type SummaryView struct {
	SessionID  string          `json:"session_id"`
	TotalPages int             `json:"total_pages"`
	Language   Locale          `json:"language"`
	Summary    string          `json:"presentation_summary"`
	Outcome    AnalysisOutcome `json:"analysis_outcome"`
	Slides     []PageAnalysis  `json:"slides_analysis"`
}

// FormAnalysis is the result of one form-image analysis pass.
type FormAnalysis struct {
	Fields      []FormField  `json:"form_fields"`
	Texts       []TextRegion `json:"extracted_text"`
	TotalBoxes  int          `json:"total_boxes"`
	Language    Locale       `json:"analysis_language"`
	Explanation string       `json:"ai_explanation"`
}

// SpeechAudio carries synthesized speech.
type SpeechAudio struct {
	Audio    []byte `json:"-"`
	MimeType string `json:"mime_type"`
	Language Locale `json:"language"`
}
