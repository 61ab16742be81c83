package facer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPProvider talks to a face analysis sidecar over its REST API. The
// sidecar wraps the actual model; images travel base64-encoded in JSON
// request bodies.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider for the sidecar at baseURL.
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Name() string {
	return "http:" + p.baseURL
}

type analyzeRequest struct {
	Image string `json:"image"` // base64 encoded
}

type analyzeResponse struct {
	Faces []Face `json:"faces"`
}

// Analyze sends the image to the sidecar's /analyze endpoint. Zero faces is
// a normal outcome and comes back as an empty slice.
func (p *HTTPProvider) Analyze(ctx context.Context, image []byte) ([]Face, error) {
	var resp analyzeResponse
	if err := p.post(ctx, "/analyze", analyzeRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Faces == nil {
		return []Face{}, nil
	}
	return resp.Faces, nil
}

type findRequest struct {
	Image       string `json:"image"` // base64 encoded
	GalleryRoot string `json:"gallery_root"`
}

type findResponse struct {
	Matches []string `json:"matches"`
}

// Find asks the sidecar to match the image against a gallery directory.
// No-match and absent galleries come back as empty results.
func (p *HTTPProvider) Find(ctx context.Context, image []byte, galleryRoot string) ([]string, error) {
	var resp findResponse
	if err := p.post(ctx, "/find", findRequest{
		Image:       base64.StdEncoding.EncodeToString(image),
		GalleryRoot: galleryRoot,
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Matches == nil {
		return []string{}, nil
	}
	return resp.Matches, nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("face engine returned status %d: %s", resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("could not unmarshal response: %w", err)
	}
	return nil
}
