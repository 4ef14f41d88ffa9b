// Package fuse merges raw provider candidates into the final ranked product
// list: dedupe, category type-guard, visual similarity rerank, cap.
package fuse

import (
	"net/url"
	"strings"

	"github.com/Alyfish/spacestest-v0-mvp/internal/search"
)

// NormalizeURL lower-cases a URL and strips its query string and fragment.
// This is the dedup key: the same product page reached through different
// tracking parameters collapses to one entry.
func NormalizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(strings.SplitN(raw, "?", 2)[0])
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return strings.ToLower(parsed.String())
}

// Dedupe removes candidates whose normalized URL was already seen. First
// occurrence wins, so provider order matters upstream.
func Dedupe(candidates []search.ProductCandidate) []search.ProductCandidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]search.ProductCandidate, 0, len(candidates))
	for _, c := range candidates {
		key := NormalizeURL(c.URL)
		if key == "" {
			out = append(out, c)
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
