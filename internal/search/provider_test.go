package search

import "testing"

func TestStoreFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.wayfair.com/furniture/pdp/chair", "Wayfair"},
		{"https://www.crateandbarrel.com/lounge-sofa/s123", "Crate & Barrel"},
		{"https://www.amazon.com/dp/B0TEST1234", "Amazon"},
		{"https://shop.example.com/products/1", "Shop.Example"},
		{"not a url at all", "Unknown Store"},
		{"", "Unknown Store"},
	}
	for _, c := range cases {
		if got := storeFromURL(c.url); got != c.want {
			t.Errorf("storeFromURL(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		wantNil bool
	}{
		{"$1,299.99", 1299.99, false},
		{"$45", 45, false},
		{"129.50", 129.50, false},
		{"from $89.00 per item", 89, false},
		{"", 0, true},
		{"call for price", 0, true},
		{"$0", 0, true},
	}
	for _, c := range cases {
		got := parsePrice(c.in)
		if c.wantNil {
			if got != nil {
				t.Errorf("parsePrice(%q) = %v, want nil", c.in, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("parsePrice(%q) = nil, want %v", c.in, c.want)
			continue
		}
		if *got != c.want {
			t.Errorf("parsePrice(%q) = %v, want %v", c.in, *got, c.want)
		}
	}
}

func TestQueryFullText(t *testing.T) {
	q := Query{
		Text:             "navy velvet sofa",
		NegativeKeywords: []string{"decor", "ideas", "how to"},
	}
	want := `navy velvet sofa -decor -ideas -"how to"`
	if got := q.FullText(); got != want {
		t.Errorf("FullText() = %q, want %q", got, want)
	}
}

func TestQueryFullTextNoNegatives(t *testing.T) {
	q := Query{Text: "oak bench"}
	if got := q.FullText(); got != "oak bench" {
		t.Errorf("FullText() = %q, want %q", got, "oak bench")
	}
}
