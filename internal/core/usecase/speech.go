package usecase

import (
	"context"
	"errors"

	"github.com/insightlab/insight-reader/internal/core/domain"
	"github.com/insightlab/insight-reader/internal/core/ports"
)

// SpeechUseCase converts client text to audio. Unlike analysis there
// is no meaningful fallback for audio, so backend failures propagate.
type SpeechUseCase struct {
	synth ports.SpeechSynthesizer
}

func NewSpeechUseCase(synth ports.SpeechSynthesizer) *SpeechUseCase {
	return &SpeechUseCase{synth: synth}
}

func (uc *SpeechUseCase) Synthesize(ctx context.Context, text, languageTag string) (*domain.SpeechAudio, error) {
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "synthesize speech", errors.New("empty text"))
	}
	locale := domain.ResolveLocale(languageTag)

	audio, mimeType, err := uc.synth.Synthesize(ctx, text, locale)
	if err != nil {
		return nil, err
	}

	return &domain.SpeechAudio{
		Audio:    audio,
		MimeType: mimeType,
		Language: locale,
	}, nil
}
