package fuse

import (
	"testing"

	"github.com/Alyfish/spacestest-v0-mvp/internal/search"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips query", "https://x.com/p/1?ref=a", "https://x.com/p/1"},
		{"strips fragment", "https://x.com/p/1#reviews", "https://x.com/p/1"},
		{"strips both", "https://x.com/p/1?utm_source=feed#top", "https://x.com/p/1"},
		{"lowercases", "HTTPS://X.com/Chair-OAK", "https://x.com/chair-oak"},
		{"bare url unchanged", "https://x.com/p/1", "https://x.com/p/1"},
		{"empty", "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NormalizeURL(c.in); got != c.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestDedupeCollapsesTrackingVariants(t *testing.T) {
	in := []search.ProductCandidate{
		{Title: "Oak chair", URL: "https://x.com/p/1?ref=a", SourceAPI: search.SourceShopping},
		{Title: "Oak chair (dup)", URL: "https://x.com/p/1?ref=b#frag", SourceAPI: search.SourceNeural},
		{Title: "Walnut table", URL: "https://x.com/p/2", SourceAPI: search.SourceShopping},
	}
	out := Dedupe(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].Title != "Oak chair" {
		t.Errorf("first occurrence must win, got %q", out[0].Title)
	}
	if out[1].Title != "Walnut table" {
		t.Errorf("unexpected second result %q", out[1].Title)
	}
}

func TestDedupeKeepsEmptyURLs(t *testing.T) {
	in := []search.ProductCandidate{
		{Title: "a", URL: ""},
		{Title: "b", URL: ""},
	}
	out := Dedupe(in)
	if len(out) != 2 {
		t.Fatalf("candidates without URLs must all survive, got %d", len(out))
	}
}
