package fuse

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Alyfish/spacestest-v0-mvp/internal/logger"
	"github.com/Alyfish/spacestest-v0-mvp/internal/search"
)

// Fuser runs the full fusion pipeline in order: dedupe, type-guard,
// similarity rerank, cap.
type Fuser struct {
	reranker       *Reranker
	dropThreshold  float64
	boostThreshold float64
	maxResults     int
}

func NewFuser(reranker *Reranker, dropThreshold, boostThreshold float64, maxResults int) *Fuser {
	return &Fuser{
		reranker:       reranker,
		dropThreshold:  dropThreshold,
		boostThreshold: boostThreshold,
		maxResults:     maxResults,
	}
}

// Fuse produces the final ordered product list. queryVec may be nil, in
// which case the similarity stage is skipped and provider order stands.
func (f *Fuser) Fuse(ctx context.Context, candidates []search.ProductCandidate, categoryHint string, queryVec []float32) []search.ProductCandidate {
	before := len(candidates)
	candidates = Dedupe(candidates)

	if categoryHint != "" {
		kept := candidates[:0]
		for _, c := range candidates {
			if TypeGuard(c.Title, categoryHint) {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}

	if f.reranker != nil && len(queryVec) > 0 {
		candidates = f.reranker.Rerank(ctx, candidates, queryVec, f.dropThreshold, f.boostThreshold)
	}

	if len(candidates) > f.maxResults {
		candidates = candidates[:f.maxResults]
	}

	logger.WithFields(logrus.Fields{
		"raw":      before,
		"final":    len(candidates),
		"category": categoryHint,
	}).Info("Result fusion completed")

	return candidates
}
