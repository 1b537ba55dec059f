package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/insightlab/insight-reader/internal/core/domain"
	"github.com/insightlab/insight-reader/internal/core/ports"
	"github.com/insightlab/insight-reader/internal/core/spatial"
)

// FormAnalysisUseCase runs the form-image pass: box detection, OCR,
// first-match spatial association and a best-effort localized
// explanation from the generative backend.
type FormAnalysisUseCase struct {
	detector   ports.BoxDetector
	recognizer ports.TextRecognizer
	generator  ports.Generator
	logger     *slog.Logger
}

func NewFormAnalysisUseCase(
	detector ports.BoxDetector,
	recognizer ports.TextRecognizer,
	generator ports.Generator,
	logger *slog.Logger,
) *FormAnalysisUseCase {
	return &FormAnalysisUseCase{
		detector:   detector,
		recognizer: recognizer,
		generator:  generator,
		logger:     logger,
	}
}

func (uc *FormAnalysisUseCase) AnalyzeForm(ctx context.Context, imagePNG []byte, languageTag string) (*domain.FormAnalysis, error) {
	if len(imagePNG) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "analyze form", errors.New("empty image"))
	}
	locale := domain.ResolveLocale(languageTag)

	detections, err := uc.detector.DetectBoxes(ctx, imagePNG)
	if err != nil {
		return nil, fmt.Errorf("detect boxes: %w", err)
	}

	texts, err := uc.recognizer.ExtractText(ctx, imagePNG, locale)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	fields := spatial.AssociateFields(detections, texts, spatial.DefaultOverlapThreshold)

	explanation := locale.Message(domain.MsgFormExplainFallback)
	if uc.generator != nil && uc.generator.Available() {
		reply, genErr := uc.generator.Generate(ctx, buildFormExplanationPrompt(fields, locale))
		if genErr != nil {
			uc.logger.Warn("form explanation failed", "error", genErr)
		} else {
			explanation = strings.TrimSpace(reply)
		}
	}

	return &domain.FormAnalysis{
		Fields:      fields,
		Texts:       texts,
		TotalBoxes:  len(detections),
		Language:    locale,
		Explanation: explanation,
	}, nil
}

func buildFormExplanationPrompt(fields []domain.FormField, locale domain.Locale) string {
	var listing strings.Builder
	for i, field := range fields {
		fmt.Fprintf(&listing, "%d. type=%s", i+1, field.FieldType)
		if field.Value != "" {
			fmt.Fprintf(&listing, " value=%q", field.Value)
		}
		listing.WriteString("\n")
	}

	if locale == domain.LocaleArabic {
		return fmt.Sprintf(`هذا نموذج يحتوي على %d حقلاً مكتشفاً:
%s
اشرح للمستخدم الكفيف محتوى النموذج وكيفية تعبئته باللغة العربية بشكل مختصر.`, len(fields), listing.String())
	}
	return fmt.Sprintf(`This form contains %d detected fields:
%s
Explain to a blind user what this form contains and how to fill it, briefly, in English.`, len(fields), listing.String())
}
