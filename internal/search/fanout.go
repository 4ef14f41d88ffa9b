package search

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Alyfish/spacestest-v0-mvp/internal/errors"
	"github.com/Alyfish/spacestest-v0-mvp/internal/logger"
)

// FanOut issues one query to every configured provider concurrently. Each
// call is bounded by its own timeout; a failing provider contributes zero
// candidates without failing the fan-out.
type FanOut struct {
	providers []Provider
	timeout   time.Duration
	perLimit  int
}

func NewFanOut(providers []Provider, timeout time.Duration, perProviderLimit int) *FanOut {
	return &FanOut{
		providers: providers,
		timeout:   timeout,
		perLimit:  perProviderLimit,
	}
}

// Providers returns how many backends are configured.
func (f *FanOut) Providers() int {
	return len(f.providers)
}

// Search runs the fan-out. Zero configured providers is a configuration
// error; all providers failing at runtime yields an empty candidate list and
// no error. If the caller's context is cancelled mid-flight, partial results
// are discarded and the context error is returned.
func (f *FanOut) Search(ctx context.Context, q Query) ([]ProductCandidate, []ProviderRecord, error) {
	if len(f.providers) == 0 {
		return nil, nil, apperrors.NewConfigurationError("no search providers configured", nil)
	}

	// Each worker owns one slot; no shared mutable state
	results := make([][]ProductCandidate, len(f.providers))
	records := make([]ProviderRecord, len(f.providers))

	var wg sync.WaitGroup
	for i, provider := range f.providers {
		wg.Add(1)
		go func(slot int, p Provider) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			start := time.Now()
			candidates, err := p.Search(callCtx, q, f.perLimit)
			records[slot] = ProviderRecord{
				Name:    p.Name(),
				Count:   len(candidates),
				Elapsed: time.Since(start),
			}
			if err != nil {
				records[slot].Err = err.Error()
				logger.WithError(err).WithFields(logrus.Fields{
					"provider": p.Name(),
					"elapsed":  time.Since(start).String(),
				}).Warn("Search provider failed")
				return
			}
			results[slot] = candidates
		}(i, provider)
	}
	wg.Wait()

	// Partial rankings without full context are misleading; drop them
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var merged []ProductCandidate
	for _, r := range results {
		merged = append(merged, r...)
	}

	logger.WithFields(logrus.Fields{
		"providers":  len(f.providers),
		"candidates": len(merged),
	}).Info("Search fan-out completed")

	return merged, records, nil
}
