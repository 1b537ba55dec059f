package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/insightlab/insight-reader/internal/core/domain"
	"github.com/insightlab/insight-reader/internal/core/ports"
	"github.com/insightlab/insight-reader/internal/observability/metrics"
)

// maxUploadBytes bounds multipart uploads; larger artifacts are
// rejected before decoding starts.
const maxUploadBytes = 50 << 20

type Router struct {
	ingestor  ports.DocumentIngestor
	reader    ports.SessionReader
	navigator ports.SessionNavigator
	forms     ports.FormAnalyzer
	money     ports.MoneyAnalyzer
	speech    ports.SpeechService

	service         string
	defaultLanguage string
	metrics         *metrics.HTTPServerMetrics
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	reader ports.SessionReader,
	navigator ports.SessionNavigator,
	forms ports.FormAnalyzer,
	money ports.MoneyAnalyzer,
	speech ports.SpeechService,
	service string,
	defaultLanguage string,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		ingestor:        ingestor,
		reader:          reader,
		navigator:       navigator,
		forms:           forms,
		money:           money,
		speech:          speech,
		service:         service,
		defaultLanguage: defaultLanguage,
		metrics:         m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/sessions", rt.listSessions)
	mux.HandleFunc("DELETE /v1/sessions/{id}", rt.deleteSession)
	mux.HandleFunc("GET /v1/sessions/{id}/pages/{page}", rt.getPage)
	mux.HandleFunc("GET /v1/sessions/{id}/pages/{page}/image", rt.getPageImage)
	mux.HandleFunc("POST /v1/sessions/{id}/pages/{page}/describe", rt.describePage)
	mux.HandleFunc("GET /v1/sessions/{id}/summary", rt.getSummary)
	mux.HandleFunc("POST /v1/navigate", rt.navigate)
	mux.HandleFunc("POST /v1/speech", rt.synthesizeSpeech)
	mux.HandleFunc("POST /v1/forms", rt.analyzeForm)
	mux.HandleFunc("POST /v1/money", rt.analyzeMoney)
	mux.HandleFunc("GET /v1/money/currencies", rt.listCurrencies)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	result, err := rt.ingestor.Ingest(r.Context(), fileHeader.Filename, data, rt.languageTag(r))
	if err != nil {
		writeErrorFor(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordIngest(rt.service, result.FileType, result.TotalPages)
		rt.metrics.RecordAnalysis(rt.service, string(result.AnalysisOutcome))
		rt.metrics.RecordSessionCreated(rt.service)
	}
	writeJSON(w, http.StatusCreated, result)
}

func (rt *Router) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions := rt.reader.ListSessions(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (rt *Router) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := rt.reader.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (rt *Router) getPage(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePageValue(w, r)
	if !ok {
		return
	}
	view, err := rt.reader.GetPage(r.Context(), r.PathValue("id"), page)
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) getPageImage(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePageValue(w, r)
	if !ok {
		return
	}
	image, err := rt.reader.GetPageImage(r.Context(), r.PathValue("id"), page)
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(image)
}

func (rt *Router) describePage(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePageValue(w, r)
	if !ok {
		return
	}
	description, err := rt.reader.DescribePageImage(r.Context(), r.PathValue("id"), page)
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page_number": page,
		"description": description,
	})
}

func (rt *Router) getSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.reader.GetSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (rt *Router) navigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Command   string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	result, err := rt.navigator.Navigate(r.Context(), req.SessionID, req.Command)
	if err != nil {
		writeErrorFor(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordNavigation(rt.service, string(result.Strategy), result.Success)
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) synthesizeSpeech(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	audio, err := rt.speech.Synthesize(r.Context(), req.Text, req.Language)
	if rt.metrics != nil {
		rt.metrics.RecordSpeechRequest(rt.service, err)
	}
	if err != nil {
		writeErrorFor(w, err)
		return
	}

	w.Header().Set("Content-Type", audio.MimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio.Audio)
}

func (rt *Router) analyzeForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'image' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	analysis, err := rt.forms.AnalyzeForm(r.Context(), data, rt.languageTag(r))
	if rt.metrics != nil {
		rt.metrics.RecordFormAnalysis(rt.service, err)
	}
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (rt *Router) analyzeMoney(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'image' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	analysis, err := rt.money.AnalyzeMoney(r.Context(), data, rt.languageTag(r))
	if rt.metrics != nil {
		rt.metrics.RecordMoneyAnalysis(rt.service, err)
	}
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (rt *Router) listCurrencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"supported_currencies": domain.SupportedCurrencies(),
	})
}

// languageTag resolves the requested analysis language from the
// multipart form when present, then the Accept-Language header, then
// the configured service default.
func (rt *Router) languageTag(r *http.Request) string {
	if tag := strings.TrimSpace(r.FormValue("language")); tag != "" {
		return tag
	}
	if tag := r.Header.Get("Accept-Language"); tag != "" {
		return tag
	}
	return rt.defaultLanguage
}

func parsePageValue(w http.ResponseWriter, r *http.Request) (int, bool) {
	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return 0, false
	}
	return page, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeErrorFor(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
