package fuse

import (
	"context"
	"fmt"
	"testing"

	"github.com/Alyfish/spacestest-v0-mvp/internal/search"
)

func TestFuseDedupesAndFilters(t *testing.T) {
	f := NewFuser(nil, 0.70, 0.85, 10)
	in := []search.ProductCandidate{
		{Title: "Velvet Sofa", URL: "https://x.com/p/1?a=1"},
		{Title: "Velvet Sofa dup", URL: "https://x.com/p/1?a=2"},
		{Title: "Sofa Decor Ideas", URL: "https://x.com/blog/1"},
		{Title: "Walnut Desk", URL: "https://x.com/p/2"},
		{Title: "Leather Loveseat", URL: "https://x.com/p/3"},
	}

	out := f.Fuse(context.Background(), in, "sofa", nil)
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].Title != "Velvet Sofa" || out[1].Title != "Leather Loveseat" {
		t.Errorf("unexpected survivors: %q, %q", out[0].Title, out[1].Title)
	}
}

func TestFuseCapsResults(t *testing.T) {
	f := NewFuser(nil, 0.70, 0.85, 3)
	var in []search.ProductCandidate
	for i := 0; i < 8; i++ {
		in = append(in, search.ProductCandidate{
			Title: fmt.Sprintf("Chair %d", i),
			URL:   fmt.Sprintf("https://x.com/p/%d", i),
		})
	}

	out := f.Fuse(context.Background(), in, "", nil)
	if len(out) != 3 {
		t.Fatalf("expected cap at 3, got %d", len(out))
	}
	if out[0].Title != "Chair 0" {
		t.Errorf("cap must keep the head of the list, got %q", out[0].Title)
	}
}

func TestFuseEmptyCategorySkipsGuard(t *testing.T) {
	f := NewFuser(nil, 0.70, 0.85, 10)
	in := []search.ProductCandidate{
		{Title: "Ceramic Vase", URL: "https://x.com/p/1"},
	}
	out := f.Fuse(context.Background(), in, "", nil)
	if len(out) != 1 {
		t.Fatalf("no category hint must skip the type guard, got %d", len(out))
	}
}

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := newWorkerPool(4)
	pool.Start()
	defer pool.Close()

	results := make([]int, 100)
	for i := 0; i < 100; i++ {
		idx := i
		pool.Submit(func() { results[idx] = idx + 1 })
	}
	pool.Wait()

	for i, v := range results {
		if v != i+1 {
			t.Fatalf("job %d did not run", i)
		}
	}
}
