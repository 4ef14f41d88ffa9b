// Package engine exposes the two core operations: resolving a click to an
// object region and matching a crop against shopping catalogs.
package engine

import (
	"context"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Alyfish/spacestest-v0-mvp/internal/affiliate"
	"github.com/Alyfish/spacestest-v0-mvp/internal/embed"
	apperrors "github.com/Alyfish/spacestest-v0-mvp/internal/errors"
	"github.com/Alyfish/spacestest-v0-mvp/internal/fuse"
	"github.com/Alyfish/spacestest-v0-mvp/internal/logger"
	"github.com/Alyfish/spacestest-v0-mvp/internal/query"
	"github.com/Alyfish/spacestest-v0-mvp/internal/resolve"
	"github.com/Alyfish/spacestest-v0-mvp/internal/search"
	"github.com/Alyfish/spacestest-v0-mvp/internal/storage"
)

// MatchResult is the outcome of one product matching call.
type MatchResult struct {
	Query     string                    `json:"query"`
	Category  string                    `json:"category,omitempty"`
	Products  []search.ProductCandidate `json:"products"`
	Providers []search.ProviderRecord   `json:"providers"`
}

// ClickPoint is one click in a batch request.
type ClickPoint struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// BatchItem pairs a click with its resolution and matches. Err is set when
// that click alone failed validation; other clicks proceed.
type BatchItem struct {
	ID         string          `json:"id"`
	Resolution *resolve.Result `json:"resolution,omitempty"`
	Match      *MatchResult    `json:"match,omitempty"`
	Err        string          `json:"error,omitempty"`
}

// Engine wires the resolution and matching pipeline. All collaborators are
// injected at construction; there is no ambient global state.
type Engine struct {
	resolver *resolve.Resolver
	embedder embed.Embedder
	builder  *query.Builder
	fanout   *search.FanOut
	fuser    *fuse.Fuser
	cropHost storage.CropHost
	rewriter *affiliate.Rewriter
}

func New(
	resolver *resolve.Resolver,
	embedder embed.Embedder,
	builder *query.Builder,
	fanout *search.FanOut,
	fuser *fuse.Fuser,
	cropHost storage.CropHost,
	rewriter *affiliate.Rewriter,
) *Engine {
	return &Engine{
		resolver: resolver,
		embedder: embedder,
		builder:  builder,
		fanout:   fanout,
		fuser:    fuser,
		cropHost: cropHost,
		rewriter: rewriter,
	}
}

// ResolveClick maps a normalized click on the image to one object region.
func (e *Engine) ResolveClick(ctx context.Context, img image.Image, x, y float64) (resolve.Result, error) {
	return e.resolver.Resolve(ctx, img, x, y, nil)
}

// MatchProducts finds catalog products visually matching the crop. An empty
// categoryHint defers to the category inferred during query building.
// Partial provider failures degrade gracefully; only configuration problems
// surface as errors.
func (e *Engine) MatchProducts(ctx context.Context, crop image.Image, categoryHint string) (MatchResult, error) {
	if crop == nil {
		return MatchResult{}, apperrors.NewValidationError("crop image is required", nil)
	}
	start := time.Now()

	q := e.builder.Build(ctx, crop, "")
	if categoryHint != "" {
		q.CategoryHint = categoryHint
	}

	// Host the crop publicly for reverse-image search. Failure just means
	// that provider contributes nothing.
	if e.cropHost != nil {
		if publicURL, err := e.cropHost.UploadPublic(ctx, crop); err != nil {
			logger.WithError(err).Warn("Crop hosting failed, reverse-image search disabled for this call")
		} else {
			q.CropImageURL = publicURL
		}
	}

	candidates, records, err := e.fanout.Search(ctx, q)
	if err != nil {
		return MatchResult{}, err
	}

	// Query crop embedding for the rerank stage; on failure the fuser keeps
	// provider order
	var queryVec []float32
	if e.embedder != nil {
		if vec, err := e.embedder.EncodeImage(ctx, crop); err != nil {
			logger.WithError(err).Warn("Crop embedding failed, skipping similarity rerank")
		} else {
			queryVec = vec
		}
	}

	products := e.fuser.Fuse(ctx, candidates, q.CategoryHint, queryVec)

	if e.rewriter != nil {
		for i := range products {
			products[i].URL = e.rewriter.Rewrite(products[i].URL)
		}
	}

	logger.WithFields(logrus.Fields{
		"query":    q.Text,
		"products": len(products),
		"elapsed":  time.Since(start).String(),
	}).Info("Product matching completed")

	return MatchResult{
		Query:     q.Text,
		Category:  q.CategoryHint,
		Products:  products,
		Providers: records,
	}, nil
}

// MatchBatch resolves and matches a list of clicks on one image. Clicks are
// processed sequentially; a failing click is reported in its slot without
// aborting the rest.
func (e *Engine) MatchBatch(ctx context.Context, img image.Image, clicks []ClickPoint) ([]BatchItem, error) {
	items := make([]BatchItem, 0, len(clicks))
	for _, click := range clicks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := BatchItem{ID: click.ID}

		res, err := e.resolver.Resolve(ctx, img, click.X, click.Y, nil)
		if err != nil {
			item.Err = err.Error()
			items = append(items, item)
			continue
		}
		item.Resolution = &res

		category := ""
		if res.Selected != nil {
			category = res.Selected.Label
		}
		match, err := e.MatchProducts(ctx, res.Crop, category)
		if err != nil {
			item.Err = err.Error()
		} else {
			item.Match = &match
		}
		items = append(items, item)
	}
	return items, nil
}
