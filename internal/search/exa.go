package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Trusted retailer domains for the neural backend. Open-web semantic search
// pulls in editorial content without this filter.
var furnitureDomains = []string{
	"wayfair.com",
	"westelm.com",
	"cb2.com",
	"crateandbarrel.com",
	"potterybarn.com",
	"article.com",
	"ikea.com",
	"amazon.com",
	"target.com",
	"homedepot.com",
	"walmart.com",
	"overstock.com",
	"allmodern.com",
	"ashleyfurniture.com",
	"roomstogo.com",
	"livingspaces.com",
	"pier1.com",
	"homegoods.com",
}

// ExaProvider searches retailer catalogs with Exa neural search. This is
// the semantic backend.
type ExaProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewExaProvider(apiKey string) *ExaProvider {
	return &ExaProvider{
		apiKey:  apiKey,
		baseURL: "https://api.exa.ai/search",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *ExaProvider) Name() string { return "exa_neural" }

type exaRequest struct {
	Query          string      `json:"query"`
	Type           string      `json:"type"`
	NumResults     int         `json:"numResults"`
	IncludeDomains []string    `json:"includeDomains,omitempty"`
	Contents       exaContents `json:"contents"`
}

type exaContents struct {
	Text exaTextOpts `json:"text"`
}

type exaTextOpts struct {
	MaxCharacters int `json:"maxCharacters"`
}

type exaResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
	Image string `json:"image"`
}

type exaResponse struct {
	Results []exaResult `json:"results"`
}

func (p *ExaProvider) Search(ctx context.Context, q Query, limit int) ([]ProductCandidate, error) {
	payload, err := json.Marshal(exaRequest{
		Query:          q.Text,
		Type:           "neural",
		NumResults:     limit,
		IncludeDomains: furnitureDomains,
		Contents:       exaContents{Text: exaTextOpts{MaxCharacters: 500}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exa status %d", resp.StatusCode)
	}

	var out exaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	candidates := make([]ProductCandidate, 0, len(out.Results))
	for _, r := range out.Results {
		if r.URL == "" || !likelyProductPage(r.URL) {
			continue
		}
		title := r.Title
		if title == "" {
			title = "Unknown Product"
		}
		candidates = append(candidates, ProductCandidate{
			Title:        title,
			URL:          r.URL,
			Store:        storeFromURL(r.URL),
			Price:        parsePrice(r.Text),
			ThumbnailURL: r.Image,
			SourceAPI:    SourceNeural,
		})
		if len(candidates) >= limit {
			break
		}
	}
	return candidates, nil
}

// likelyProductPage rejects blog, category and editorial URLs that neural
// search surfaces alongside real product pages.
func likelyProductPage(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for _, seg := range []string{"/blog", "/ideas", "/inspiration", "/guide", "/category", "/collections/all", "/search"} {
		if strings.Contains(path, seg) {
			return false
		}
	}
	// Keep ambiguous pages; the type guard and similarity rerank handle them
	return true
}
