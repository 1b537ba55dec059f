package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/insightlab/insight-reader/internal/core/domain"
	"github.com/insightlab/insight-reader/internal/core/ports"
)

const rawTextFallbackLimit = 500

// AnalysisUseCase drives the bulk document analysis: one generative
// call for the whole document, strict parsing of the reply, and
// deterministic fallbacks when the backend is unavailable or the reply
// is unparseable. Analyze never fails hard.
type AnalysisUseCase struct {
	generator ports.Generator
	logger    *slog.Logger
}

func NewAnalysisUseCase(generator ports.Generator, logger *slog.Logger) *AnalysisUseCase {
	return &AnalysisUseCase{
		generator: generator,
		logger:    logger,
	}
}

func (uc *AnalysisUseCase) Analyze(ctx context.Context, doc *domain.Document, locale domain.Locale) *domain.AnalysisResult {
	if uc.generator == nil || !uc.generator.Available() {
		return uc.fallbackForDocument(doc, locale)
	}

	prompt := buildBulkAnalysisPrompt(doc, locale)
	raw, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		uc.logger.Warn("bulk analysis call failed, using fallback", "error", err)
		return uc.fallbackForDocument(doc, locale)
	}

	outcome := parseBulkAnalysis(raw)
	if outcome.parsed == nil {
		uc.logger.Warn("bulk analysis reply unparseable, using degenerate fallback",
			"reply_bytes", len(outcome.raw))
		return uc.fallbackFromText(outcome.raw, locale)
	}

	result := outcome.parsed
	result.Outcome = domain.OutcomeAnalyzed
	uc.reconcileEntries(result, doc, locale)
	return result
}

// bulkParseOutcome is the tagged parse result: exactly one of parsed
// or raw is meaningful. Fallback selection reads the tag, not error
// values.
type bulkParseOutcome struct {
	parsed *domain.AnalysisResult
	raw    string
}

func parseBulkAnalysis(raw string) bulkParseOutcome {
	cleaned := stripCodeFence(raw)

	var payload struct {
		Summary string                `json:"presentation_summary"`
		Slides  []domain.PageAnalysis `json:"slides_analysis"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return bulkParseOutcome{raw: raw}
	}
	if payload.Slides == nil {
		return bulkParseOutcome{raw: raw}
	}

	return bulkParseOutcome{parsed: &domain.AnalysisResult{
		Summary: payload.Summary,
		Pages:   payload.Slides,
	}}
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// reconcileEntries restores the one-entry-per-page invariant when the
// model returned too few or too many entries. Missing pages get
// fallback entries; surplus entries referring to no real page are
// dropped.
func (uc *AnalysisUseCase) reconcileEntries(result *domain.AnalysisResult, doc *domain.Document, locale domain.Locale) {
	byNumber := make(map[int]domain.PageAnalysis, len(result.Pages))
	for _, entry := range result.Pages {
		if _, seen := byNumber[entry.PageNumber]; !seen {
			byNumber[entry.PageNumber] = entry
		}
	}

	entries := make([]domain.PageAnalysis, 0, doc.TotalPages)
	for _, page := range doc.Pages {
		entry, ok := byNumber[page.Number]
		if !ok {
			entry = uc.fallbackEntry(page, locale)
		}
		if entry.KeyPoints == nil {
			entry.KeyPoints = []string{}
		}
		if entry.OriginalText == "" {
			entry.OriginalText = page.Text
		}
		entries = append(entries, entry)
	}
	result.Pages = entries
}

// fallbackForDocument synthesizes one templated entry per real page.
// Used when no backend is configured or the bulk call failed outright.
func (uc *AnalysisUseCase) fallbackForDocument(doc *domain.Document, locale domain.Locale) *domain.AnalysisResult {
	entries := make([]domain.PageAnalysis, 0, doc.TotalPages)
	for _, page := range doc.Pages {
		entries = append(entries, uc.fallbackEntry(page, locale))
	}
	return &domain.AnalysisResult{
		Summary: locale.Message(domain.MsgFallbackSummary),
		Pages:   entries,
		Outcome: domain.OutcomeFallbackUnavailable,
	}
}

func (uc *AnalysisUseCase) fallbackEntry(page domain.Page, locale domain.Locale) domain.PageAnalysis {
	title := page.Title
	if title == "" {
		title = locale.Messagef(domain.TmplPageTitle, page.Number)
	}
	return domain.PageAnalysis{
		PageNumber:      page.Number,
		Title:           title,
		OriginalText:    page.Text,
		Explanation:     locale.Messagef(domain.TmplPageExplanation, page.Number),
		KeyPoints:       []string{locale.Message(domain.MsgPageContent)},
		SlideType:       locale.Message(domain.MsgSlideTypeContent),
		ImportanceLevel: locale.Message(domain.MsgImportanceMedium),
	}
}

// fallbackFromText synthesizes the degenerate single-entry result that
// preserves the raw, unparseable backend reply for inspection.
func (uc *AnalysisUseCase) fallbackFromText(raw string, locale domain.Locale) *domain.AnalysisResult {
	truncated := raw
	if len(truncated) > rawTextFallbackLimit {
		// Back off to a rune boundary; a byte cut would leave an
		// invalid UTF-8 tail on Arabic replies.
		cut := rawTextFallbackLimit
		for cut > 0 && !utf8.RuneStart(truncated[cut]) {
			cut--
		}
		truncated = truncated[:cut]
	}
	explanation := locale.Message(domain.MsgBasicExplanation)
	return &domain.AnalysisResult{
		Summary: locale.Message(domain.MsgParseFallbackSummary),
		Pages: []domain.PageAnalysis{
			{
				PageNumber:      1,
				Title:           locale.Message(domain.MsgAnalysisResultTitle),
				OriginalText:    truncated,
				Explanation:     explanation,
				KeyPoints:       []string{explanation},
				SlideType:       "content",
				ImportanceLevel: "medium",
			},
		},
		Outcome: domain.OutcomeFallbackParse,
	}
}

// DescribeImage asks the vision backend for a short description of a
// page raster. Failures resolve to a localized placeholder string.
func (uc *AnalysisUseCase) DescribeImage(ctx context.Context, imagePNG []byte, locale domain.Locale) string {
	if uc.generator == nil || !uc.generator.Available() {
		return locale.Message(domain.MsgVisionUnavailable)
	}

	text, err := uc.generator.GenerateVision(ctx, buildImageDescriptionPrompt(locale), imagePNG)
	if err != nil {
		uc.logger.Warn("image description failed", "error", err)
		return locale.Message(domain.MsgImageDescribeError)
	}
	return strings.TrimSpace(text)
}

var digitsPattern = regexp.MustCompile(`\d+`)

// ExtractPageReference interprets free-form navigation phrasing into a
// page number. The backend is consulted first; when it is unavailable
// or its answer is uninterpretable, a local keyword+regex heuristic
// takes over.
func (uc *AnalysisUseCase) ExtractPageReference(ctx context.Context, command string, currentPage, totalPages int) (int, bool) {
	if uc.generator != nil && uc.generator.Available() {
		reply, err := uc.generator.Generate(ctx, buildPageReferencePrompt(command, currentPage, totalPages))
		if err == nil {
			if page, ok := parsePageReferenceReply(reply); ok {
				return page, true
			}
			if strings.Contains(strings.ToLower(reply), "none") {
				return 0, false
			}
		} else {
			uc.logger.Warn("page reference extraction call failed, using heuristic", "error", err)
		}
	}
	return heuristicPageReference(command, currentPage, totalPages)
}

func parsePageReferenceReply(reply string) (int, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(reply))
	if page, err := strconv.Atoi(trimmed); err == nil {
		return page, true
	}
	if strings.Contains(trimmed, "none") {
		return 0, false
	}
	if match := digitsPattern.FindString(trimmed); match != "" {
		if page, err := strconv.Atoi(match); err == nil {
			return page, true
		}
	}
	return 0, false
}

func heuristicPageReference(command string, currentPage, totalPages int) (int, bool) {
	lower := strings.ToLower(command)

	contains := func(tokens ...string) bool {
		for _, token := range tokens {
			if strings.Contains(lower, token) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("next", "التالي", "التالية"):
		return min(currentPage+1, totalPages), true
	case contains("previous", "prev", "السابق", "السابقة"):
		return max(currentPage-1, 1), true
	case contains("first", "أول", "اول", "البداية"):
		return 1, true
	case contains("last", "آخر", "اخر", "الأخيرة", "النهاية"):
		return totalPages, true
	}

	if match := digitsPattern.FindString(command); match != "" {
		if page, err := strconv.Atoi(match); err == nil && page >= 1 && page <= totalPages {
			return page, true
		}
	}
	return 0, false
}

func buildBulkAnalysisPrompt(doc *domain.Document, locale domain.Locale) string {
	var slides strings.Builder
	for _, page := range doc.Pages {
		if locale == domain.LocaleArabic {
			fmt.Fprintf(&slides, "\n--- الشريحة %d ---\n", page.Number)
			if page.Title != "" {
				fmt.Fprintf(&slides, "العنوان: %s\n", page.Title)
			}
			if page.Text != "" {
				fmt.Fprintf(&slides, "المحتوى: %s\n", page.Text)
			}
			if page.Notes != "" {
				fmt.Fprintf(&slides, "الملاحظات: %s\n", page.Notes)
			}
			continue
		}
		fmt.Fprintf(&slides, "\n--- Slide %d ---\n", page.Number)
		if page.Title != "" {
			fmt.Fprintf(&slides, "Title: %s\n", page.Title)
		}
		if page.Text != "" {
			fmt.Fprintf(&slides, "Content: %s\n", page.Text)
		}
		if page.Notes != "" {
			fmt.Fprintf(&slides, "Notes: %s\n", page.Notes)
		}
	}

	var header, explanationField, slideTypeOptions, importanceOptions, rules, jsonInstruction string
	if locale == domain.LocaleArabic {
		header = fmt.Sprintf("أحلل هذا العرض التقديمي بالكامل. العرض يحتوي على %d شريحة.", doc.TotalPages)
		explanationField = "وصف مختصر للشريحة"
		slideTypeOptions = "مقدمة/محتوى/خاتمة"
		importanceOptions = "عالي/متوسط/منخفض"
		rules = `قواعد التحليل:
1. اكتب الشرح باللغة العربية بوضوح ودقة
2. ركز على وصف محتوى الشريحة بأقل كلمات ممكنة
3. حدد النقاط الأساسية في كل شريحة
4. صنف نوع كل شريحة
5. قيم أهمية كل شريحة
6. اكتب ملخص مختصر للعرض باللغة العربية
7. تأكد من أن JSON صحيح ومنسق`
		jsonInstruction = "أعطني فقط JSON بدون أي نص إضافي."
	} else {
		header = fmt.Sprintf("Analyze this presentation completely. The presentation contains %d slides.", doc.TotalPages)
		explanationField = "brief description of slide content"
		slideTypeOptions = "introduction/content/conclusion"
		importanceOptions = "high/medium/low"
		rules = `Analysis rules:
1. Write brief explanations in clear English
2. Focus on describing slide content with minimal words
3. Identify key points in each slide
4. Classify slide type (introduction, content, conclusion, etc.)
5. Assess importance level of each slide
6. Write a brief summary of the entire presentation in English
7. Ensure JSON is valid and properly formatted`
		jsonInstruction = "Return only JSON with no additional text."
	}

	return fmt.Sprintf(`%s

%s

Return analysis for each slide in the following JSON format:

{
  "presentation_summary": "Brief summary of the entire presentation",
  "total_slides": %d,
  "slides_analysis": [
    {
      "slide_number": 1,
      "title": "Slide title",
      "original_text": "Original slide text",
      "explanation": "%s",
      "key_points": ["Key point 1", "Key point 2"],
      "slide_type": "%s",
      "importance_level": "%s"
    }
  ]
}

%s

%s`, header, slides.String(), doc.TotalPages, explanationField, slideTypeOptions, importanceOptions, rules, jsonInstruction)
}

func buildPageReferencePrompt(command string, currentPage, totalPages int) string {
	return fmt.Sprintf(`Extract the page number from this voice/text command. Return ONLY the number, nothing else.

Command: %q
Total pages available: %d
Current page: %d

Navigation patterns:
- "وديني لصفحة رقم 55" -> return: 55
- "اذهب للصفحة 10" -> return: 10
- "Go to page 30" -> return: 30
- "page 15" -> return: 15
- "آخر صفحة" or "last page" -> return: %d
- "أول صفحة" or "first page" -> return: 1
- "التالي" or "next" -> return: %d
- "السابق" or "previous" -> return: %d

Return ONLY the page number (integer), or "none" if no valid navigation found.`,
		command, totalPages, currentPage,
		totalPages,
		min(currentPage+1, totalPages),
		max(currentPage-1, 1),
	)
}

func buildImageDescriptionPrompt(locale domain.Locale) string {
	if locale == domain.LocaleArabic {
		return `حلل هذه الصورة واستخرج المحتوى الرئيسي منها.
ركز على:
- النصوص الموجودة
- العناصر المرئية المهمة
- الهيكل العام للصفحة

اكتب الوصف باللغة العربية بشكل مختصر ومفيد.`
	}
	return `Analyze this image and extract the main content from it.
Focus on:
- Text content
- Important visual elements
- Overall page structure

Write the description in English briefly and helpfully.`
}
