package fuse

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Alyfish/spacestest-v0-mvp/internal/embed"
	"github.com/Alyfish/spacestest-v0-mvp/internal/logger"
	"github.com/Alyfish/spacestest-v0-mvp/internal/search"
	"github.com/Alyfish/spacestest-v0-mvp/internal/storage"
)

// Reranker orders surviving candidates by visual similarity between their
// thumbnails and the query crop. Thumbnails are fetched with bounded
// concurrency, each under its own short timeout, and only up to maxFetch
// candidates are fetched at all so total latency stays bounded.
type Reranker struct {
	fetcher      storage.ImageFetcher
	embedder     embed.Embedder
	workers      int
	fetchTimeout time.Duration
	maxFetch     int
}

func NewReranker(fetcher storage.ImageFetcher, embedder embed.Embedder, workers int, fetchTimeout time.Duration, maxFetch int) *Reranker {
	return &Reranker{
		fetcher:      fetcher,
		embedder:     embedder,
		workers:      workers,
		fetchTimeout: fetchTimeout,
		maxFetch:     maxFetch,
	}
}

// Rerank scores candidates against the query embedding. Candidates below
// dropThreshold are removed; candidates at or above boostThreshold surface
// first. Within a tier the provider-assigned order is preserved. A failed
// or skipped thumbnail fetch keeps its candidate at neutral placement: a
// fetch failure is not evidence of irrelevance.
func (r *Reranker) Rerank(ctx context.Context, candidates []search.ProductCandidate, queryVec []float32, dropThreshold, boostThreshold float64) []search.ProductCandidate {
	if len(candidates) == 0 || len(queryVec) == 0 {
		return candidates
	}

	// Each worker writes into its own slot
	scores := make([]*float64, len(candidates))

	pool := newWorkerPool(r.workers)
	pool.Start()
	defer pool.Close()

	fetched := 0
	for i := range candidates {
		if candidates[i].ThumbnailURL == "" {
			continue
		}
		if fetched >= r.maxFetch {
			break
		}
		fetched++
		idx := i
		pool.Submit(func() {
			scores[idx] = r.scoreThumbnail(ctx, candidates[idx].ThumbnailURL, queryVec)
		})
	}
	pool.Wait()

	var boosted, neutral []search.ProductCandidate
	dropped := 0
	for i, c := range candidates {
		if scores[i] == nil {
			neutral = append(neutral, c)
			continue
		}
		score := *scores[i]
		c.SimilarityScore = &score
		switch {
		case score < dropThreshold:
			dropped++
		case score >= boostThreshold:
			boosted = append(boosted, c)
		default:
			neutral = append(neutral, c)
		}
	}

	logger.WithFields(logrus.Fields{
		"fetched": fetched,
		"boosted": len(boosted),
		"dropped": dropped,
	}).Debug("Similarity rerank completed")

	return append(boosted, neutral...)
}

func (r *Reranker) scoreThumbnail(ctx context.Context, thumbnailURL string, queryVec []float32) *float64 {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	img, err := r.fetcher.FetchImage(fetchCtx, thumbnailURL)
	if err != nil {
		logger.WithError(err).WithField("url", thumbnailURL).Debug("Thumbnail fetch failed, keeping neutral rank")
		return nil
	}
	vec, err := r.embedder.EncodeImage(fetchCtx, img)
	if err != nil {
		logger.WithError(err).Debug("Thumbnail embedding failed, keeping neutral rank")
		return nil
	}
	score := embed.Similarity(queryVec, vec)
	return &score
}
