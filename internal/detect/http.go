package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Alyfish/spacestest-v0-mvp/internal/imageio"
)

// HTTPDetector calls an external detection model served over HTTP. The
// endpoint accepts a multipart image upload and returns detections with
// normalized boxes and optional polygon masks.
type HTTPDetector struct {
	endpoint string
	client   *http.Client
}

func NewHTTPDetector(endpoint string, timeout time.Duration) *HTTPDetector {
	return &HTTPDetector{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDetector) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	data, err := imageio.EncodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detection failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Detections []Detection `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	for i := range result.Detections {
		if result.Detections[i].ID == "" {
			result.Detections[i].ID = fmt.Sprintf("det_%d", i)
		}
	}
	return result.Detections, nil
}

// CheckHealth probes the detection service.
func (d *HTTPDetector) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector unhealthy: %d", resp.StatusCode)
	}
	return nil
}
