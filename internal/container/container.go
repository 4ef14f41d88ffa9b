// Package container wires the application graph from configuration.
package container

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Alyfish/spacestest-v0-mvp/internal/affiliate"
	"github.com/Alyfish/spacestest-v0-mvp/internal/config"
	"github.com/Alyfish/spacestest-v0-mvp/internal/detect"
	"github.com/Alyfish/spacestest-v0-mvp/internal/embed"
	"github.com/Alyfish/spacestest-v0-mvp/internal/engine"
	"github.com/Alyfish/spacestest-v0-mvp/internal/fuse"
	"github.com/Alyfish/spacestest-v0-mvp/internal/logger"
	"github.com/Alyfish/spacestest-v0-mvp/internal/query"
	"github.com/Alyfish/spacestest-v0-mvp/internal/resolve"
	"github.com/Alyfish/spacestest-v0-mvp/internal/search"
	"github.com/Alyfish/spacestest-v0-mvp/internal/storage"
	"github.com/Alyfish/spacestest-v0-mvp/internal/transport"
)

// Container holds the assembled service and the resources that need
// teardown on shutdown.
type Container struct {
	Config  *config.Config
	Engine  *engine.Engine
	Handler http.Handler

	extractor *query.GeminiExtractor
}

// New builds the full dependency graph. Optional collaborators (structured
// attribute extraction, crop hosting, individual search providers) are
// skipped when their credentials are absent; the pipeline degrades instead
// of failing to start.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	detector := detect.NewHTTPDetector(cfg.DetectorURL, cfg.DetectorTimeout)
	embedder := embed.NewHTTPEmbedder(cfg.EmbedderURL, cfg.EmbedderTimeout)

	params := resolve.DefaultParams()
	params.ConfidenceWeight = cfg.ConfidenceWeight
	params.DistanceWeight = cfg.DistanceWeight
	params.AreaWeight = cfg.AreaWeight
	params.AmbiguityMargin = cfg.AmbiguityMargin
	params.BoundaryPx = cfg.BoundaryPx
	params.ConfidenceFloor = cfg.ConfidenceFloor
	resolver := resolve.NewResolver(detector, params)

	c := &Container{Config: cfg}

	var extractor query.AttributeExtractor
	if cfg.GeminiAPIKey != "" {
		ge, err := query.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.WithError(err).Warn("Gemini extractor unavailable, using embedding-based attributes only")
		} else {
			c.extractor = ge
			extractor = ge
		}
	}
	builder := query.NewBuilder(extractor, query.NewVocabScorer(embedder))

	providers := buildProviders(cfg)
	fanout := search.NewFanOut(providers, cfg.ProviderTimeout, cfg.MaxResults)

	fetcher := storage.NewHTTPImageFetcher()
	reranker := fuse.NewReranker(fetcher, embedder, cfg.ThumbnailWorkers, cfg.ThumbnailTimeout, cfg.MaxThumbnailFetch)
	fuser := fuse.NewFuser(reranker, cfg.DropThreshold, cfg.BoostThreshold, cfg.MaxResults)

	var cropHost storage.CropHost
	if cfg.AzureAccountName != "" && cfg.AzureAccountKey != "" {
		host, err := storage.NewAzureCropHost(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer)
		if err != nil {
			logger.WithError(err).Warn("Crop hosting unavailable, reverse image search disabled")
		} else {
			cropHost = host
		}
	}

	rewriter := affiliate.NewRewriter(cfg.AffiliateIDs)

	eng := engine.New(resolver, embedder, builder, fanout, fuser, cropHost, rewriter)
	c.Engine = eng
	c.Handler = transport.NewHandler(eng, fetcher, cfg)

	logger.WithFields(logrus.Fields{
		"providers":    len(providers),
		"gemini":       extractor != nil,
		"crop_hosting": cropHost != nil,
	}).Info("Container initialized")

	return c, nil
}

func buildProviders(cfg *config.Config) []search.Provider {
	var providers []search.Provider
	if cfg.SerpAPIKey != "" {
		providers = append(providers, search.NewSerpProvider(cfg.SerpAPIKey))
		providers = append(providers, search.NewLensProvider(cfg.SerpAPIKey))
	}
	if cfg.ExaAPIKey != "" {
		providers = append(providers, search.NewExaProvider(cfg.ExaAPIKey))
	}
	return providers
}

// Close releases external clients.
func (c *Container) Close() {
	if c.extractor != nil {
		if err := c.extractor.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close attribute extractor")
		}
	}
}
