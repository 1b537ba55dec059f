// Package gemini is the HTTP client for the Gemini generateContent
// API: text generation, vision description and speech synthesis.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/insightlab/insight-reader/internal/core/domain"
	"github.com/insightlab/insight-reader/internal/infrastructure/resilience"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

type Client struct {
	baseURL     string
	apiKey      string
	genModel    string
	visionModel string
	ttsModel    string

	httpClient *http.Client
	limiter    *rate.Limiter
	exec       *resilience.Executor
}

func New(baseURL, apiKey, genModel, visionModel, ttsModel string, exec *resilience.Executor, requestsPerSecond float64) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		genModel:    genModel,
		visionModel: visionModel,
		ttsModel:    ttsModel,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		exec:        exec,
	}
}

// Available reports whether the backend was configured with an API
// key. Callers check this instead of probing with a doomed request.
func (c *Client) Available() bool {
	return c != nil && c.apiKey != ""
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	return c.generateText(ctx, "generate", c.genModel, req)
}

func (c *Client) GenerateVision(ctx context.Context, prompt string, imagePNG []byte) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{
				MimeType: "image/png",
				Data:     base64.StdEncoding.EncodeToString(imagePNG),
			}},
		}}},
	}
	return c.generateText(ctx, "generate_vision", c.visionModel, req)
}

// GenerateSpeech returns raw PCM samples (24 kHz mono 16-bit) for the
// given text using a prebuilt voice.
func (c *Client) GenerateSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voice},
				},
			},
		},
	}

	resp, err := c.generate(ctx, "generate_speech", c.ttsModel, req)
	if err != nil {
		return nil, err
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				audio, decErr := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if decErr != nil {
					return nil, fmt.Errorf("decode audio payload: %w", decErr)
				}
				return audio, nil
			}
		}
	}
	return nil, errors.New("empty speech response")
}

func (c *Client) generateText(ctx context.Context, operation, model string, req generateRequest) (string, error) {
	resp, err := c.generate(ctx, operation, model, req)
	if err != nil {
		return "", err
	}
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return strings.TrimSpace(p.Text), nil
			}
		}
	}
	return "", errors.New("empty generation response")
}

func (c *Client) generate(ctx context.Context, operation, model string, req generateRequest) (*generateResponse, error) {
	if !c.Available() {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, operation, errors.New("no api key configured"))
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", model)
	var resp generateResponse
	err := c.exec.Execute(ctx, operation, func(ctx context.Context) error {
		return c.postJSON(ctx, path, req, &resp, operation)
	}, classifyGeminiError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded(operation, err)
	}
	return &resp, nil
}
