package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// SerpProvider searches Google Shopping through SerpAPI. This is the
// keyword backend.
type SerpProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSerpProvider(apiKey string) *SerpProvider {
	return &SerpProvider{
		apiKey:  apiKey,
		baseURL: "https://serpapi.com/search.json",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *SerpProvider) Name() string { return "serp_shopping" }

type serpShoppingResult struct {
	Title          string  `json:"title"`
	Link           string  `json:"link"`
	ProductLink    string  `json:"product_link"`
	Source         string  `json:"source"`
	Price          string  `json:"price"`
	ExtractedPrice float64 `json:"extracted_price"`
	Thumbnail      string  `json:"thumbnail"`
}

type serpResponse struct {
	Error           string               `json:"error"`
	ShoppingResults []serpShoppingResult `json:"shopping_results"`
}

func (p *SerpProvider) Search(ctx context.Context, q Query, limit int) ([]ProductCandidate, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", q.FullText())
	params.Set("api_key", p.apiKey)
	params.Set("num", strconv.Itoa(limit))
	params.Set("hl", "en")
	params.Set("gl", "us")

	var out serpResponse
	if err := p.get(ctx, params, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("serpapi: %s", out.Error)
	}

	candidates := make([]ProductCandidate, 0, len(out.ShoppingResults))
	for _, r := range out.ShoppingResults {
		if r.Title == "" {
			continue
		}
		c := ProductCandidate{
			Title:        r.Title,
			URL:          retailerURL(r),
			Store:        r.Source,
			PriceStr:     r.Price,
			ThumbnailURL: r.Thumbnail,
			SourceAPI:    SourceShopping,
		}
		if c.URL == "" {
			continue
		}
		if c.Store == "" {
			c.Store = storeFromURL(c.URL)
		}
		if r.ExtractedPrice > 0 {
			price := r.ExtractedPrice
			c.Price = &price
		} else {
			c.Price = parsePrice(r.Price)
		}
		candidates = append(candidates, c)
		if len(candidates) >= limit {
			break
		}
	}
	return candidates, nil
}

// retailerURL prefers the direct retailer link over the Google Shopping
// intermediate page.
func retailerURL(r serpShoppingResult) string {
	if r.Link != "" && !isGoogleShoppingLink(r.Link) {
		return r.Link
	}
	return r.ProductLink
}

func isGoogleShoppingLink(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return parsed.Host == "www.google.com" && len(parsed.Path) >= 9 && parsed.Path[:9] == "/shopping"
}

func (p *SerpProvider) get(ctx context.Context, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("serpapi status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
