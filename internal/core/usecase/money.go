package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/insightlab/insight-reader/internal/core/domain"
	"github.com/insightlab/insight-reader/internal/core/ports"
)

// MoneyAnalysisUseCase recognizes currency in an image through one
// vision call. Like document analysis it never fails hard on the
// backend: an unavailable or failing backend degrades to an empty
// detection list with a localized explanation.
type MoneyAnalysisUseCase struct {
	generator ports.Generator
	logger    *slog.Logger
}

func NewMoneyAnalysisUseCase(generator ports.Generator, logger *slog.Logger) *MoneyAnalysisUseCase {
	return &MoneyAnalysisUseCase{
		generator: generator,
		logger:    logger,
	}
}

func (uc *MoneyAnalysisUseCase) AnalyzeMoney(ctx context.Context, imagePNG []byte, languageTag string) (*domain.MoneyAnalysis, error) {
	if len(imagePNG) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "analyze money", errors.New("empty image"))
	}
	locale := domain.ResolveLocale(languageTag)

	if uc.generator == nil || !uc.generator.Available() {
		return uc.fallbackAnalysis(locale), nil
	}

	reply, err := uc.generator.GenerateVision(ctx, buildMoneyAnalysisPrompt(locale), imagePNG)
	if err != nil {
		uc.logger.Warn("money analysis call failed, using fallback", "error", err)
		return uc.fallbackAnalysis(locale), nil
	}

	var payload struct {
		Detections  []domain.CurrencyDetection `json:"detected_currencies"`
		Explanation string                     `json:"explanation"`
	}
	cleaned := stripCodeFence(reply)
	if unmarshalErr := json.Unmarshal([]byte(cleaned), &payload); unmarshalErr != nil || payload.Detections == nil {
		// A prose reply still carries the recognition result; keep it
		// as the explanation with nothing to aggregate.
		return &domain.MoneyAnalysis{
			Detections:     []domain.CurrencyDetection{},
			TotalAmounts:   map[string]float64{},
			CurrencyCounts: map[string]int{},
			Language:       locale,
			Explanation:    strings.TrimSpace(reply),
		}, nil
	}

	analysis := aggregateDetections(payload.Detections)
	analysis.Language = locale
	analysis.Explanation = strings.TrimSpace(payload.Explanation)
	if analysis.Explanation == "" {
		analysis.Explanation = locale.Message(domain.MsgMoneyExplainFallback)
	}
	return analysis, nil
}

func (uc *MoneyAnalysisUseCase) fallbackAnalysis(locale domain.Locale) *domain.MoneyAnalysis {
	return &domain.MoneyAnalysis{
		Detections:     []domain.CurrencyDetection{},
		TotalAmounts:   map[string]float64{},
		CurrencyCounts: map[string]int{},
		Language:       locale,
		Explanation:    locale.Message(domain.MsgMoneyExplainFallback),
	}
}

// aggregateDetections derives per-currency totals and counts from the
// detections. A detection without a count stands for a single bill or
// coin.
func aggregateDetections(detections []domain.CurrencyDetection) *domain.MoneyAnalysis {
	totals := make(map[string]float64, len(detections))
	counts := make(map[string]int, len(detections))
	normalized := make([]domain.CurrencyDetection, 0, len(detections))
	for _, d := range detections {
		if d.Currency == "" {
			continue
		}
		if d.Count <= 0 {
			d.Count = 1
		}
		totals[d.Currency] += d.Denomination * float64(d.Count)
		counts[d.Currency] += d.Count
		normalized = append(normalized, d)
	}
	return &domain.MoneyAnalysis{
		Detections:     normalized,
		TotalAmounts:   totals,
		CurrencyCounts: counts,
	}
}

func buildMoneyAnalysisPrompt(locale domain.Locale) string {
	var codes strings.Builder
	for i, currency := range domain.SupportedCurrencies() {
		if i > 0 {
			codes.WriteString(", ")
		}
		codes.WriteString(currency.Code)
	}

	var instruction string
	if locale == domain.LocaleArabic {
		instruction = `حلل العملات في هذه الصورة.
اكتب حقل "explanation" بلهجة خليجية سعودية:
- لو عملة واحدة أو ورقة واحدة: عندك [القيمة]
- لو أكثر من واحدة: عندك [المبلغ الإجمالي]، وفيه [تفاصيل الأوراق]
اجعل الشرح خالياً من أي ترحيب.`
	} else {
		instruction = `Analyze the currency in this image.
Write the "explanation" field in plain English: state the total amount
first, then the breakdown of bills and coins. No greetings.`
	}

	return instruction + `

Return ONLY JSON in this format:

{
  "detected_currencies": [
    {"currency": "SAR", "denomination": 50, "kind": "bill", "count": 1}
  ],
  "explanation": "..."
}

Supported currency codes: ` + codes.String() + `.
"kind" is "bill" or "coin". Use an empty detected_currencies array when
no money is visible.`
}
