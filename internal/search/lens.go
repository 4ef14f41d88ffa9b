package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// LensProvider runs Google Lens reverse-image search through SerpAPI. It
// needs the query crop hosted at a publicly reachable URL.
type LensProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewLensProvider(apiKey string) *LensProvider {
	return &LensProvider{
		apiKey:  apiKey,
		baseURL: "https://serpapi.com/search.json",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *LensProvider) Name() string { return "google_lens" }

type lensMatch struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Thumbnail string `json:"thumbnail"`
	Price     struct {
		Value          string  `json:"value"`
		ExtractedValue float64 `json:"extracted_value"`
	} `json:"price"`
}

type lensResponse struct {
	Error         string      `json:"error"`
	VisualMatches []lensMatch `json:"visual_matches"`
}

func (p *LensProvider) Search(ctx context.Context, q Query, limit int) ([]ProductCandidate, error) {
	if q.CropImageURL == "" {
		return nil, fmt.Errorf("reverse-image search needs a public crop URL")
	}

	params := url.Values{}
	params.Set("engine", "google_lens")
	params.Set("url", q.CropImageURL)
	params.Set("api_key", p.apiKey)
	params.Set("hl", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi status %d", resp.StatusCode)
	}

	var out lensResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("serpapi: %s", out.Error)
	}

	candidates := make([]ProductCandidate, 0, len(out.VisualMatches))
	for _, m := range out.VisualMatches {
		if m.Title == "" || m.Link == "" {
			continue
		}
		c := ProductCandidate{
			Title:        m.Title,
			URL:          m.Link,
			Store:        m.Source,
			PriceStr:     m.Price.Value,
			ThumbnailURL: m.Thumbnail,
			SourceAPI:    SourceReverseImage,
		}
		if c.Store == "" {
			c.Store = storeFromURL(c.URL)
		}
		if m.Price.ExtractedValue > 0 {
			price := m.Price.ExtractedValue
			c.Price = &price
		}
		candidates = append(candidates, c)
		if len(candidates) >= limit {
			break
		}
	}
	return candidates, nil
}
