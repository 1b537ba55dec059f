package gemini

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"

	"github.com/insightlab/insight-reader/internal/core/domain"
)

// PCM format delivered by the speech model.
const (
	speechSampleRate    = 24000
	speechChannels      = 1
	speechBytesPerSamp  = 2
	speechVoiceArabic   = "Sulafat"
	speechVoiceEnglish  = "Kore"
	speechPromptArabic  = "قل بوضوح: "
	speechPromptDefault = "Say clearly: "
)

// Speech implements ports.SpeechSynthesizer over the Gemini TTS model.
type Speech struct {
	client *Client
}

func NewSpeech(client *Client) *Speech {
	return &Speech{client: client}
}

func (s *Speech) Synthesize(ctx context.Context, text string, locale domain.Locale) ([]byte, string, error) {
	if !s.client.Available() {
		return nil, "", domain.WrapError(domain.ErrBackendUnavailable, "synthesize speech", errors.New("no api key configured"))
	}

	voice := speechVoiceEnglish
	prompt := speechPromptDefault
	if locale == domain.LocaleArabic || domain.ContainsArabic(text) {
		voice = speechVoiceArabic
		prompt = speechPromptArabic
	}

	pcm, err := s.client.GenerateSpeech(ctx, prompt+text, voice)
	if err != nil {
		if IsQuotaExhausted(err) {
			return nil, "", domain.WrapError(domain.ErrTemporary, "synthesize speech", err)
		}
		return nil, "", err
	}

	return wrapPCMInWAV(pcm), "audio/wav", nil
}

// wrapPCMInWAV prefixes raw little-endian PCM with a canonical 44-byte
// RIFF/WAVE header for the fixed speech format.
func wrapPCMInWAV(pcm []byte) []byte {
	const headerSize = 44
	dataLen := uint32(len(pcm))
	byteRate := uint32(speechSampleRate * speechChannels * speechBytesPerSamp)
	blockAlign := uint16(speechChannels * speechBytesPerSamp)

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(pcm)))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(headerSize-8)+dataLen)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(speechChannels))
	binary.Write(buf, binary.LittleEndian, uint32(speechSampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(8*speechBytesPerSamp))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataLen)
	buf.Write(pcm)
	return buf.Bytes()
}
