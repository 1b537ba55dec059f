package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale selects the language used for analysis output, navigation
// messages and fallback templates. The service is bilingual.
type Locale string

const (
	LocaleArabic  Locale = "ar"
	LocaleEnglish Locale = "en"
)

// Arabic first: it is the matcher default for unknown tags.
var localeMatcher = language.NewMatcher([]language.Tag{
	language.Arabic,
	language.English,
})

// ResolveLocale maps an arbitrary client language tag ("en", "ar-SA",
// "english", ...) onto a supported locale. Unknown or empty input
// resolves to Arabic.
func ResolveLocale(tag string) Locale {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	switch normalized {
	case "", "ar", "arabic":
		return LocaleArabic
	case "en", "english":
		return LocaleEnglish
	}

	parsed, err := language.Parse(normalized)
	if err != nil {
		return LocaleArabic
	}
	_, index, _ := localeMatcher.Match(parsed)
	if index == 1 {
		return LocaleEnglish
	}
	return LocaleArabic
}

// MessageKey names one entry in the locale-keyed message table.
// Templates are referenced by key and never inlined at call sites.
type MessageKey string

const (
	MsgFallbackSummary      MessageKey = "fallback_summary"
	MsgParseFallbackSummary MessageKey = "parse_fallback_summary"
	MsgBasicExplanation     MessageKey = "basic_explanation"
	MsgAnalysisResultTitle  MessageKey = "analysis_result_title"
	MsgPageContent          MessageKey = "page_content"
	MsgSlideTypeContent     MessageKey = "slide_type_content"
	MsgImportanceMedium     MessageKey = "importance_medium"
	MsgAtLastPage           MessageKey = "at_last_page"
	MsgAtFirstPage          MessageKey = "at_first_page"
	MsgMovedFirst           MessageKey = "moved_first"
	MsgMovedLast            MessageKey = "moved_last"
	MsgVisionUnavailable    MessageKey = "vision_unavailable"
	MsgImageDescribeError   MessageKey = "image_describe_error"
	MsgFormExplainFallback  MessageKey = "form_explain_fallback"
	MsgMoneyExplainFallback MessageKey = "money_explain_fallback"

	TmplPageTitle       MessageKey = "page_title"
	TmplPageExplanation MessageKey = "page_explanation"
	TmplMovedToPage     MessageKey = "moved_to_page"
	TmplInvalidPage     MessageKey = "invalid_page"
	TmplUnknownCommand  MessageKey = "unknown_command"
	TmplUploadOK        MessageKey = "upload_ok"
)

var messages = map[Locale]map[MessageKey]string{
	LocaleEnglish: {
		MsgFallbackSummary:      "Basic analysis generated for the document",
		MsgParseFallbackSummary: "Document analyzed successfully",
		MsgBasicExplanation:     "Basic content analysis",
		MsgAnalysisResultTitle:  "Analysis Result",
		MsgPageContent:          "Page content",
		MsgSlideTypeContent:     "content",
		MsgImportanceMedium:     "medium",
		MsgAtLastPage:           "Already at last page",
		MsgAtFirstPage:          "Already at first page",
		MsgMovedFirst:           "Moved to first page",
		MsgMovedLast:            "Moved to last page",
		MsgVisionUnavailable:    "Vision analysis not available",
		MsgImageDescribeError:   "Image analysis error",
		MsgFormExplainFallback:  "Form explanation not available",
		MsgMoneyExplainFallback: "Money analysis not available",

		TmplPageTitle:       "Page %d",
		TmplPageExplanation: "This is page number %d of the document.",
		TmplMovedToPage:     "Moved to page %d",
		TmplInvalidPage:     "Invalid page number. Must be between 1 and %d",
		TmplUnknownCommand:  "Unknown navigation command: %s",
		TmplUploadOK:        "Document uploaded and analyzed successfully. %d pages processed.",
	},
	LocaleArabic: {
		MsgFallbackSummary:      "تم إنشاء تحليل أساسي للمستند",
		MsgParseFallbackSummary: "تم تحليل المستند بنجاح",
		MsgBasicExplanation:     "تحليل أساسي للمحتوى",
		MsgAnalysisResultTitle:  "نتيجة التحليل",
		MsgPageContent:          "محتوى الصفحة",
		MsgSlideTypeContent:     "محتوى",
		MsgImportanceMedium:     "متوسط",
		MsgAtLastPage:           "أنت بالفعل في الصفحة الأخيرة",
		MsgAtFirstPage:          "أنت بالفعل في الصفحة الأولى",
		MsgMovedFirst:           "تم الانتقال إلى الصفحة الأولى",
		MsgMovedLast:            "تم الانتقال إلى الصفحة الأخيرة",
		MsgVisionUnavailable:    "تحليل الصور غير متاح",
		MsgImageDescribeError:   "خطأ في تحليل الصورة",
		MsgFormExplainFallback:  "شرح النموذج غير متاح",
		MsgMoneyExplainFallback: "تحليل العملات غير متاح",

		TmplPageTitle:       "الصفحة %d",
		TmplPageExplanation: "هذه هي الصفحة رقم %d من المستند.",
		TmplMovedToPage:     "تم الانتقال إلى الصفحة %d",
		TmplInvalidPage:     "رقم الصفحة غير صالح. يجب أن يكون بين 1 و %d",
		TmplUnknownCommand:  "أمر تنقل غير معروف: %s",
		TmplUploadOK:        "تم رفع المستند وتحليله بنجاح. تمت معالجة %d صفحة.",
	},
}

// Message returns the localized text for key, falling back to English
// when the locale or key is missing.
func (l Locale) Message(key MessageKey) string {
	if table, ok := messages[l]; ok {
		if text, ok := table[key]; ok {
			return text
		}
	}
	return messages[LocaleEnglish][key]
}

// Messagef formats the localized template for key.
func (l Locale) Messagef(key MessageKey, args ...any) string {
	return fmt.Sprintf(l.Message(key), args...)
}

// ContainsArabic reports whether text carries Arabic codepoints. Used
// to pick a speech voice when the locale alone is ambiguous.
func ContainsArabic(text string) bool {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}
