package query

import (
	"context"
	"fmt"
	"image"

	"github.com/Alyfish/spacestest-v0-mvp/internal/embed"
)

// Fixed vocabularies scored against the crop embedding when structured
// extraction is unavailable.
var (
	furnitureTypes = []string{
		"sofa", "chair", "table", "lamp", "cabinet", "bed",
		"desk", "shelf", "dresser", "couch", "ottoman", "bench",
		"coffee table", "dining table", "side table", "nightstand",
	}
	styleTerms = []string{
		"modern", "contemporary", "traditional", "rustic", "industrial",
		"minimalist", "mid-century", "scandinavian", "vintage", "bohemian",
	}
	materialTerms = []string{
		"wood", "wooden", "leather", "fabric", "metal", "glass",
		"velvet", "linen", "rattan", "marble", "concrete",
	}
	colorTerms = []string{
		"white", "black", "gray", "brown", "beige", "blue",
		"green", "navy", "cream", "tan", "natural",
	}
)

// Inclusion gates per vocabulary. The furniture type is always included;
// the rest only when the crop resembles the term strongly enough.
const (
	colorGate    = 0.6
	materialGate = 0.6
	styleGate    = 0.5
)

// VocabScorer derives attributes by scoring fixed vocabularies against the
// crop embedding.
type VocabScorer struct {
	embedder embed.Embedder
}

func NewVocabScorer(embedder embed.Embedder) *VocabScorer {
	return &VocabScorer{embedder: embedder}
}

// Score encodes the crop once, compares it against each vocabulary and
// keeps the best term per vocabulary that clears its gate.
func (s *VocabScorer) Score(ctx context.Context, crop image.Image) (Attributes, error) {
	imgVec, err := s.embedder.EncodeImage(ctx, crop)
	if err != nil {
		return Attributes{}, fmt.Errorf("encode crop: %w", err)
	}

	itemType, _ := s.best(ctx, imgVec, furnitureTypes)
	if itemType == "" {
		return Attributes{}, fmt.Errorf("no furniture type scored")
	}

	attrs := Attributes{ItemType: itemType}
	if term, score := s.best(ctx, imgVec, colorTerms); score > colorGate {
		attrs.Color = term
	}
	if term, score := s.best(ctx, imgVec, materialTerms); score > materialGate {
		attrs.Material = term
	}
	if term, score := s.best(ctx, imgVec, styleTerms); score > styleGate {
		attrs.Style = term
	}
	return attrs, nil
}

// best returns the highest-similarity term and its score. Individual text
// encodings failing just removes that term from consideration.
func (s *VocabScorer) best(ctx context.Context, imgVec []float32, vocab []string) (string, float64) {
	var bestTerm string
	var bestScore float64
	for _, term := range vocab {
		textVec, err := s.embedder.EncodeText(ctx, term)
		if err != nil {
			continue
		}
		if sim := embed.Similarity(imgVec, textVec); sim > bestScore {
			bestTerm = term
			bestScore = sim
		}
	}
	return bestTerm, bestScore
}
