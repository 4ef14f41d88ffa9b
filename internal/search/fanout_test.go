package search

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/Alyfish/spacestest-v0-mvp/internal/errors"
)

type stubProvider struct {
	name       string
	candidates []ProductCandidate
	err        error
	delay      time.Duration
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(ctx context.Context, q Query, limit int) ([]ProductCandidate, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.candidates, s.err
}

func TestFanOutMergesAllProviders(t *testing.T) {
	f := NewFanOut([]Provider{
		&stubProvider{name: "a", candidates: []ProductCandidate{{Title: "a1"}, {Title: "a2"}}},
		&stubProvider{name: "b", candidates: []ProductCandidate{{Title: "b1"}}},
	}, time.Second, 10)

	merged, records, err := f.Search(context.Background(), Query{Text: "oak chair"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(merged) != 3 {
		t.Errorf("expected 3 merged candidates, got %d", len(merged))
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 provider records, got %d", len(records))
	}
	// Slot order follows configuration order
	if records[0].Name != "a" || records[1].Name != "b" {
		t.Errorf("record order wrong: %s, %s", records[0].Name, records[1].Name)
	}
}

func TestFanOutDegradesOnPartialFailure(t *testing.T) {
	f := NewFanOut([]Provider{
		&stubProvider{name: "dead", err: errors.New("upstream 500")},
		&stubProvider{name: "alive", candidates: []ProductCandidate{{Title: "hit"}}},
		&stubProvider{name: "dead2", err: errors.New("timeout")},
	}, time.Second, 10)

	merged, records, err := f.Search(context.Background(), Query{Text: "lamp"})
	if err != nil {
		t.Fatalf("partial failures must not fail the fan-out: %v", err)
	}
	if len(merged) != 1 || merged[0].Title != "hit" {
		t.Errorf("expected the surviving provider's hit, got %v", merged)
	}
	if records[0].Err == "" || records[2].Err == "" {
		t.Error("failed providers must record their error")
	}
	if records[1].Err != "" {
		t.Errorf("healthy provider must not record an error: %q", records[1].Err)
	}
}

func TestFanOutAllFailYieldsEmptyList(t *testing.T) {
	f := NewFanOut([]Provider{
		&stubProvider{name: "a", err: errors.New("down")},
		&stubProvider{name: "b", err: errors.New("down")},
	}, time.Second, 10)

	merged, _, err := f.Search(context.Background(), Query{Text: "rug"})
	if err != nil {
		t.Fatalf("all-fail must degrade, not error: %v", err)
	}
	if len(merged) != 0 {
		t.Errorf("expected empty candidate list, got %d", len(merged))
	}
}

func TestFanOutZeroProvidersIsConfigurationError(t *testing.T) {
	f := NewFanOut(nil, time.Second, 10)
	_, _, err := f.Search(context.Background(), Query{Text: "bed"})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeConfiguration) {
		t.Errorf("expected configuration error type, got %v", err)
	}
}

func TestFanOutCancellationDiscardsPartials(t *testing.T) {
	f := NewFanOut([]Provider{
		&stubProvider{name: "fast", candidates: []ProductCandidate{{Title: "partial"}}},
		&stubProvider{name: "slow", delay: 5 * time.Second},
	}, 10*time.Second, 10)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	merged, records, err := f.Search(ctx, Query{Text: "chair"})
	if err == nil {
		t.Fatal("cancelled fan-out must return the context error")
	}
	if merged != nil || records != nil {
		t.Error("cancelled fan-out must not leak partial results")
	}
}
