package gemini

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/insightlab/insight-reader/internal/core/domain"
	"github.com/insightlab/insight-reader/internal/infrastructure/resilience"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	exec := resilience.NewExecutor(resilience.Config{BreakerEnabled: false})
	return New(server.URL, "test-key", "gen-model", "vision-model", "tts-model", exec, 1000)
}

func textReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestGenerateReturnsFirstTextPart(t *testing.T) {
	var gotPath, gotKey string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Fatalf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(textReply("  world  "))
	})

	got, err := client.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "world" {
		t.Fatalf("expected trimmed reply, got %q", got)
	}
	if gotPath != "/v1beta/models/gen-model:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key as query param, got %q", gotKey)
	}
}

func TestGenerateVisionSendsInlineImage(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G'}
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/vision-model:generateContent" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		parts := req.Contents[0].Parts
		if len(parts) != 2 || parts[1].InlineData == nil {
			t.Fatalf("expected prompt and inline image, got %+v", parts)
		}
		if parts[1].InlineData.MimeType != "image/png" {
			t.Fatalf("unexpected mime type %q", parts[1].InlineData.MimeType)
		}
		if parts[1].InlineData.Data != base64.StdEncoding.EncodeToString(image) {
			t.Fatal("expected base64 image payload")
		}
		json.NewEncoder(w).Encode(textReply("a chart"))
	})

	got, err := client.GenerateVision(context.Background(), "describe", image)
	if err != nil {
		t.Fatalf("generate vision: %v", err)
	}
	if got != "a chart" {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestGenerateSpeechDecodesAudio(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		cfg := req.GenerationConfig
		if cfg == nil || len(cfg.ResponseModalities) != 1 || cfg.ResponseModalities[0] != "AUDIO" {
			t.Fatalf("expected audio modality, got %+v", cfg)
		}
		if cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Kore" {
			t.Fatalf("unexpected voice %+v", cfg.SpeechConfig)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"inlineData": map[string]string{
						"mimeType": "audio/pcm",
						"data":     base64.StdEncoding.EncodeToString(pcm),
					}},
				}}},
			},
		})
	})

	got, err := client.GenerateSpeech(context.Background(), "hello", "Kore")
	if err != nil {
		t.Fatalf("generate speech: %v", err)
	}
	if string(got) != string(pcm) {
		t.Fatalf("unexpected audio payload %v", got)
	}
}

func TestGenerateWithoutKeyIsUnavailable(t *testing.T) {
	exec := resilience.NewExecutor(resilience.Config{BreakerEnabled: false})
	client := New("http://127.0.0.1:1", "", "gen", "vision", "tts", exec, 1000)

	if client.Available() {
		t.Fatal("expected client unavailable without key")
	}
	_, err := client.Generate(context.Background(), "hello")
	if !domain.IsKind(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
}

func TestGenerateWrapsQuotaErrorsAsTemporary(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if !IsQuotaExhausted(err) {
		t.Fatalf("expected quota detection, got %v", err)
	}
}

func TestGenerateSurfacesPermanentStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := client.Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected non-temporary error, got %v", err)
	}
}

func TestSynthesizePicksArabicVoiceForArabicText(t *testing.T) {
	var gotVoice string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotVoice = req.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"inlineData": map[string]string{
						"mimeType": "audio/pcm",
						"data":     base64.StdEncoding.EncodeToString([]byte{0, 0}),
					}},
				}}},
			},
		})
	})
	speech := NewSpeech(client)

	// English locale but Arabic text still selects the Arabic voice.
	_, mime, err := speech.Synthesize(context.Background(), "مرحبا", domain.LocaleEnglish)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if gotVoice != "Sulafat" {
		t.Fatalf("expected Sulafat voice, got %q", gotVoice)
	}
	if mime != "audio/wav" {
		t.Fatalf("expected audio/wav, got %q", mime)
	}
}

func TestWrapPCMInWAVHeader(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}
	wav := wrapPCMInWAV(pcm)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected 44-byte header plus payload, got %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("expected RIFF/WAVE magic")
	}
	if sampleRate := binary.LittleEndian.Uint32(wav[24:28]); sampleRate != 24000 {
		t.Fatalf("expected 24000 Hz, got %d", sampleRate)
	}
	if channels := binary.LittleEndian.Uint16(wav[22:24]); channels != 1 {
		t.Fatalf("expected mono, got %d channels", channels)
	}
	if bits := binary.LittleEndian.Uint16(wav[34:36]); bits != 16 {
		t.Fatalf("expected 16-bit samples, got %d", bits)
	}
	if dataLen := binary.LittleEndian.Uint32(wav[40:44]); dataLen != uint32(len(pcm)) {
		t.Fatalf("expected data length %d, got %d", len(pcm), dataLen)
	}
	if string(wav[44:]) != string(pcm) {
		t.Fatal("expected PCM payload after header")
	}
}
