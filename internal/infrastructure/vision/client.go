// Package vision is an HTTP client for the detector/OCR sidecar. The
// sidecar exposes two endpoints: POST /detect returns form element
// boxes, POST /ocr returns positioned text extractions.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/insightlab/insight-reader/internal/core/domain"
)

const defaultTimeout = 60 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type detectResponse struct {
	Boxes []domain.BoxRegion `json:"boxes"`
}

type ocrResponse struct {
	Texts []domain.TextRegion `json:"texts"`
}

func (c *Client) DetectBoxes(ctx context.Context, imagePNG []byte) ([]domain.BoxRegion, error) {
	var resp detectResponse
	if err := c.postImage(ctx, "/detect", nil, imagePNG, &resp); err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "detect boxes", err)
	}
	return resp.Boxes, nil
}

func (c *Client) ExtractText(ctx context.Context, imagePNG []byte, locale domain.Locale) ([]domain.TextRegion, error) {
	query := url.Values{"lang": {string(locale)}}
	var resp ocrResponse
	if err := c.postImage(ctx, "/ocr", query, imagePNG, &resp); err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "extract text", err)
	}
	return resp.Texts, nil
}

func (c *Client) postImage(ctx context.Context, path string, query url.Values, image []byte, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(image))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s returned status %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
