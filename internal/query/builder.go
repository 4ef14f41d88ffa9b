// Package query turns an object crop into a short shopping query with
// structured attributes and negative keywords.
package query

import (
	"context"
	"image"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Alyfish/spacestest-v0-mvp/internal/logger"
	"github.com/Alyfish/spacestest-v0-mvp/internal/search"
)

// Attributes are the structured properties extracted from a crop.
type Attributes struct {
	Color    string `json:"color"`
	Material string `json:"material"`
	Style    string `json:"style"`
	ItemType string `json:"item_type"`
}

// AttributeExtractor is an external vision model that returns structured
// attributes for a crop. Optional; the builder falls back to embedding-based
// scoring without it.
type AttributeExtractor interface {
	Extract(ctx context.Context, img image.Image) (Attributes, error)
}

const maxQueryLength = 80

var negativeKeywords = []string{"decor", "ideas", "how to"}

// Builder assembles product search queries. Extraction failures never
// propagate; the chain is structured extraction, then embedding-vocabulary
// scoring, then a bare fallback term.
type Builder struct {
	extractor AttributeExtractor
	scorer    *VocabScorer
}

func NewBuilder(extractor AttributeExtractor, scorer *VocabScorer) *Builder {
	return &Builder{extractor: extractor, scorer: scorer}
}

// Build produces the search query for a crop. Context, when given, leads
// the query text. The returned query carries the item type as category hint
// for downstream type-guard filtering.
func (b *Builder) Build(ctx context.Context, crop image.Image, roomContext string) search.Query {
	attrs, ok := b.extract(ctx, crop)
	if !ok {
		attrs = Attributes{ItemType: "furniture"}
	}

	parts := make([]string, 0, 5)
	if roomContext != "" {
		parts = append(parts, roomContext)
	}
	for _, p := range []string{attrs.Color, attrs.Material, attrs.Style, attrs.ItemType} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	text := truncateWords(strings.Join(parts, " "), maxQueryLength)
	if text == "" {
		text = "furniture"
	}

	logger.WithFields(logrus.Fields{
		"query":     text,
		"item_type": attrs.ItemType,
	}).Debug("Search query built")

	return search.Query{
		Text:             text,
		NegativeKeywords: negativeKeywords,
		CategoryHint:     attrs.ItemType,
	}
}

func (b *Builder) extract(ctx context.Context, crop image.Image) (Attributes, bool) {
	if b.extractor != nil {
		attrs, err := b.extractor.Extract(ctx, crop)
		if err == nil && attrs.ItemType != "" {
			return attrs, true
		}
		if err != nil {
			logger.WithError(err).Warn("Structured attribute extraction failed, falling back to embedding scoring")
		}
	}
	if b.scorer != nil {
		attrs, err := b.scorer.Score(ctx, crop)
		if err == nil {
			return attrs, true
		}
		logger.WithError(err).Warn("Embedding attribute scoring failed")
	}
	return Attributes{}, false
}

// truncateWords cuts s to at most max characters without splitting a word.
func truncateWords(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
