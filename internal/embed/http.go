package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/Alyfish/spacestest-v0-mvp/internal/imageio"
)

// HTTPEmbedder calls an external embedding model served over HTTP. The
// service exposes /encode/image (raw JPEG body) and /encode/text (JSON), both
// returning a normalized vector.
type HTTPEmbedder struct {
	baseURL string
	client  *http.Client
}

func NewHTTPEmbedder(baseURL string, timeout time.Duration) *HTTPEmbedder {
	return &HTTPEmbedder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *HTTPEmbedder) EncodeImage(ctx context.Context, img image.Image) ([]float32, error) {
	data, err := imageio.EncodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/encode/image", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	return e.do(req)
}

func (e *HTTPEmbedder) EncodeText(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/encode/text", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func (e *HTTPEmbedder) do(req *http.Request) ([]float32, error) {
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Vector []float32 `json:"vector"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Vector) == 0 {
		return nil, fmt.Errorf("empty embedding vector")
	}
	return result.Vector, nil
}
