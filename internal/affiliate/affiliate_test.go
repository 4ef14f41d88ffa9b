package affiliate

import (
	"strings"
	"testing"
)

func TestIdentifyRetailer(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.amazon.com/dp/B08XYZ1234", "amazon"},
		{"https://amzn.to/3abc", "amazon"},
		{"https://www.wayfair.com/furniture/pdp/x", "wayfair"},
		{"https://www.cb2.com/lounge-chair/s1", "crateandbarrel"},
		{"https://www.article.com/product/123", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := IdentifyRetailer(c.url); got != c.want {
			t.Errorf("IdentifyRetailer(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestRewriteAmazonCanonicalizesASIN(t *testing.T) {
	r := NewRewriter(map[string]string{"amazon": "mytag-20"})
	got := r.Rewrite("https://www.amazon.com/Some-Product-Name/dp/B08XYZ1234/ref=sr_1_3?keywords=chair")
	want := "https://www.amazon.com/dp/B08XYZ1234?tag=mytag-20"
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewritePerRetailerParams(t *testing.T) {
	r := NewRewriter(map[string]string{
		"target":  "aff123",
		"wayfair": "ref456",
		"ikea":    "ik789",
		"westelm": "we000",
	})
	cases := []struct {
		url   string
		param string
	}{
		{"https://www.target.com/p/chair/-/A-123", "afid=aff123"},
		{"https://www.wayfair.com/furniture/pdp/x", "refid=ref456"},
		{"https://www.ikea.com/us/en/p/poang-123/", "affiliate_id=ik789"},
		{"https://www.westelm.com/products/sofa", "affiliate=we000"},
	}
	for _, c := range cases {
		got := r.Rewrite(c.url)
		if !strings.Contains(got, c.param) {
			t.Errorf("Rewrite(%q) = %q, missing %q", c.url, got, c.param)
		}
	}
}

func TestRewritePassThrough(t *testing.T) {
	r := NewRewriter(map[string]string{"amazon": "mytag-20"})

	// Unknown retailer
	u := "https://www.article.com/product/123"
	if got := r.Rewrite(u); got != u {
		t.Errorf("unknown retailer must pass through, got %q", got)
	}
	// Known retailer without a configured ID
	u = "https://www.wayfair.com/furniture/pdp/x"
	if got := r.Rewrite(u); got != u {
		t.Errorf("missing affiliate ID must pass through, got %q", got)
	}
}
