package storage

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/Alyfish/spacestest-v0-mvp/internal/imageio"
)

// ImageFetcher downloads and decodes remote images.
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)
}

// HTTPImageFetcher fetches product thumbnails from third-party image hosts.
// The transport is tuned for many small downloads against many hosts.
type HTTPImageFetcher struct {
	client *http.Client
}

func NewHTTPImageFetcher() *HTTPImageFetcher {
	transport := &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			// Per-fetch deadlines come from the caller's context; this is
			// the hard ceiling for stragglers
			Timeout: 15 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
	}
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "spacestest/1.0")

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		resp, lastErr = h.client.Do(req)
		if lastErr == nil && resp.StatusCode == http.StatusOK {
			break
		}
		if lastErr == nil {
			status := resp.StatusCode
			resp.Body.Close()
			resp = nil
			lastErr = fmt.Errorf("status code %d", status)
			// Client errors are not transient
			if status >= 400 && status < 500 {
				break
			}
		}
		if attempt == 0 {
			select {
			case <-time.After(200 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if resp == nil {
		return nil, fmt.Errorf("failed to fetch image: %w", lastErr)
	}
	defer resp.Body.Close()

	img, err := imageio.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
