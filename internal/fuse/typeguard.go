package fuse

import (
	"strings"

	"github.com/arbovm/levenshtein"
)

// Titles containing these are decor/editorial content, not products.
var negativeTitleKeywords = []string{
	"decor", "how to", "ideas", "tutorial", "guide", "inspiration", "poster", "print",
}

// Category keyword families. A candidate passes the guard when its title
// hits any keyword of the target category's family. Ordered so that more
// specific families ("console table") win over broader ones ("table").
type typeFamily struct {
	name     string
	keywords []string
}

var typeFamilies = []typeFamily{
	{"shelf", []string{"shelf", "shelving", "bookcase", "wall shelf"}},
	{"console table", []string{"console table", "sofa table", "entry table"}},
	{"table", []string{"table", "dining table", "coffee table", "side table", "end table", "desk"}},
	{"bench", []string{"bench", "ottoman", "entry bench"}},
	{"chair", []string{"chair", "armchair", "accent chair", "dining chair", "desk chair"}},
	{"sofa", []string{"sofa", "couch", "sectional", "loveseat"}},
	{"bed", []string{"bed", "platform bed", "bed frame", "headboard"}},
	{"lamp", []string{"lamp", "floor lamp", "table lamp", "sconce"}},
	{"storage", []string{"cabinet", "dresser", "sideboard", "buffet", "storage"}},
	{"rug", []string{"rug", "runner"}},
}

// TypeGuard reports whether a product title belongs to the target category
// family and carries no decor/how-to markers. An empty target admits
// everything except negatives.
func TypeGuard(title, targetType string) bool {
	t := strings.ToLower(title)
	for _, neg := range negativeTitleKeywords {
		if strings.Contains(t, neg) {
			return false
		}
	}

	tt := strings.ToLower(strings.TrimSpace(targetType))
	if tt == "" {
		return true
	}

	if fam := lookupFamily(tt); fam != nil {
		for _, k := range fam.keywords {
			if titleHasKeyword(t, k) {
				return true
			}
		}
		return false
	}
	// Unknown category: require the target itself in the title
	return titleHasKeyword(t, tt)
}

// lookupFamily resolves a category to its keyword family. An exact family
// name wins; otherwise the first family listing the category as a keyword.
func lookupFamily(target string) *typeFamily {
	for i := range typeFamilies {
		if typeFamilies[i].name == target {
			return &typeFamilies[i]
		}
	}
	for i := range typeFamilies {
		if strings.Contains(strings.Join(typeFamilies[i].keywords, " "), target) {
			return &typeFamilies[i]
		}
	}
	return nil
}

// titleHasKeyword matches a keyword by substring, then by near-exact token
// match so plural and minor spelling variants ("sofas", "benchs") still hit.
func titleHasKeyword(title, keyword string) bool {
	if strings.Contains(title, keyword) {
		return true
	}
	if strings.Contains(keyword, " ") {
		return false
	}
	for _, token := range strings.FieldsFunc(title, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	}) {
		if len(token) >= 4 && levenshtein.Distance(token, keyword) <= 1 {
			return true
		}
	}
	return false
}
