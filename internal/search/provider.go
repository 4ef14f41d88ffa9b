// Package search fans a product query out to independent catalog-search
// backends and collects their raw candidates.
package search

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SourceAPI identifies which backend produced a candidate.
type SourceAPI string

const (
	SourceShopping     SourceAPI = "shopping"
	SourceNeural       SourceAPI = "neural"
	SourceReverseImage SourceAPI = "reverse_image"
)

// ProductCandidate is one product hit from a search backend. The fuser is
// the only mutator after creation (it fills SimilarityScore or drops the
// candidate).
type ProductCandidate struct {
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	Store           string    `json:"store"`
	Price           *float64  `json:"price"`
	PriceStr        string    `json:"price_str,omitempty"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	SourceAPI       SourceAPI `json:"source_api"`
	SimilarityScore *float64  `json:"similarity_score,omitempty"`
}

// Query is an immutable product search request.
type Query struct {
	Text             string
	NegativeKeywords []string
	// Public URL of the crop image, required by reverse-image providers
	CropImageURL string
	CategoryHint string
}

// FullText returns the query text with negative keywords appended as
// exclusion terms.
func (q Query) FullText() string {
	parts := []string{q.Text}
	for _, neg := range q.NegativeKeywords {
		if strings.Contains(neg, " ") {
			parts = append(parts, `-"`+neg+`"`)
		} else {
			parts = append(parts, "-"+neg)
		}
	}
	return strings.Join(parts, " ")
}

// Provider is one catalog-search backend. Implementations return whatever
// they found; ranking and filtering happen downstream.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query, limit int) ([]ProductCandidate, error)
}

// ProviderRecord captures per-provider outcome and timing for one fan-out.
type ProviderRecord struct {
	Name    string        `json:"name"`
	Count   int           `json:"count"`
	Elapsed time.Duration `json:"elapsed"`
	Err     string        `json:"error,omitempty"`
}

var storeNames = map[string]string{
	"wayfair.com":         "Wayfair",
	"westelm.com":         "West Elm",
	"cb2.com":             "CB2",
	"crateandbarrel.com":  "Crate & Barrel",
	"potterybarn.com":     "Pottery Barn",
	"article.com":         "Article",
	"ikea.com":            "IKEA",
	"amazon.com":          "Amazon",
	"target.com":          "Target",
	"homedepot.com":       "Home Depot",
	"walmart.com":         "Walmart",
	"overstock.com":       "Overstock",
	"allmodern.com":       "AllModern",
	"ashleyfurniture.com": "Ashley Furniture",
	"roomstogo.com":       "Rooms To Go",
	"livingspaces.com":    "Living Spaces",
	"homegoods.com":       "HomeGoods",
}

// storeFromURL maps a product URL to a retailer display name, falling back
// to the titled domain.
func storeFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "Unknown Store"
	}
	host := strings.ToLower(parsed.Host)
	for domain, name := range storeNames {
		if strings.Contains(host, domain) {
			return name
		}
	}
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimSuffix(host, ".com")
	if host == "" {
		return "Unknown Store"
	}
	return strings.Title(host)
}

var priceRe = regexp.MustCompile(`\$?([\d,]+\.?\d*)`)

// parsePrice extracts a numeric price from strings like "$1,299.99".
// Returns nil when no price is present.
func parsePrice(s string) *float64 {
	if s == "" {
		return nil
	}
	m := priceRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v == 0 {
		return nil
	}
	return &v
}
