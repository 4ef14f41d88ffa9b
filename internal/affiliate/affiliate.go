// Package affiliate rewrites retailer product URLs to carry affiliate tags.
// Applied to the final fused list; unrecognized retailers pass through
// unchanged.
package affiliate

import (
	"net/url"
	"regexp"
	"strings"
)

// Rewriter holds per-retailer affiliate IDs. Empty IDs disable rewriting
// for that retailer.
type Rewriter struct {
	ids map[string]string
}

// NewRewriter builds a rewriter from a retailer→affiliate-ID table.
func NewRewriter(ids map[string]string) *Rewriter {
	if ids == nil {
		ids = map[string]string{}
	}
	return &Rewriter{ids: ids}
}

var amazonASINRe = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})`)

var retailerDomains = []struct {
	retailer string
	domains  []string
}{
	{"amazon", []string{"amazon.com", "amzn.to"}},
	{"ikea", []string{"ikea.com"}},
	{"wayfair", []string{"wayfair.com"}},
	{"target", []string{"target.com"}},
	{"homedepot", []string{"homedepot.com"}},
	{"lowes", []string{"lowes.com"}},
	{"walmart", []string{"walmart.com"}},
	{"westelm", []string{"westelm.com"}},
	{"potterybarn", []string{"potterybarn.com"}},
	{"crateandbarrel", []string{"crateandbarrel.com", "cb2.com"}},
}

// IdentifyRetailer returns the retailer key for a product URL, or "" when
// the domain is not recognized.
func IdentifyRetailer(rawURL string) string {
	parsed, err := url.Parse(strings.ToLower(rawURL))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(parsed.Host, "www.")
	for _, r := range retailerDomains {
		for _, d := range r.domains {
			if strings.Contains(host, d) {
				return r.retailer
			}
		}
	}
	return ""
}

// Rewrite converts a product URL into its affiliate form. Unknown retailers
// and conversion failures return the URL unchanged.
func (r *Rewriter) Rewrite(rawURL string) string {
	retailer := IdentifyRetailer(rawURL)
	if retailer == "" {
		return rawURL
	}
	id := r.ids[retailer]
	if id == "" {
		return rawURL
	}

	switch retailer {
	case "amazon":
		if m := amazonASINRe.FindStringSubmatch(rawURL); m != nil {
			return "https://www.amazon.com/dp/" + m[1] + "?tag=" + url.QueryEscape(id)
		}
		return setQueryParam(rawURL, "tag", id)
	case "target":
		return setQueryParam(rawURL, "afid", id)
	case "wayfair":
		return setQueryParam(rawURL, "refid", id)
	case "ikea":
		return setQueryParam(rawURL, "affiliate_id", id)
	default:
		return setQueryParam(rawURL, "affiliate", id)
	}
}

func setQueryParam(rawURL, key, value string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := parsed.Query()
	q.Set(key, value)
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
