package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// softenings maps coarse words a client might use to shop-floor alternatives.
var softenings = map[string]string{
	"fuck":         "fudge",
	"fucking":      "flipping",
	"shit":         "shoot",
	"damn":         "dang",
	"goddamn":      "gosh-dang",
	"hell":         "heck",
	"ass":          "butt",
	"asshole":      "jerk",
	"bitch":        "jerk",
	"bastard":      "scoundrel",
	"crap":         "crud",
	"piss":         "tick",
	"dick":         "jerk",
	"prick":        "jerk",
	"bullshit":     "baloney",
	"motherfucker": "mother-trucker",
	"dumbass":      "dummy",
	"jackass":      "donkey",
}

// ReplyFilter softens profanity in client replies for family ratings.
type ReplyFilter struct {
	pattern *regexp.Regexp
}

// NewReplyFilter compiles the word list into a single matcher.
func NewReplyFilter() *ReplyFilter {
	words := make([]string, 0, len(softenings))
	for w := range softenings {
		words = append(words, regexp.QuoteMeta(w))
	}
	// Longest first so "asshole" wins over "ass".
	sort.Slice(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })

	return &ReplyFilter{
		pattern: regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`),
	}
}

// Filter replaces matched words, keeping the case of the original.
func (f *ReplyFilter) Filter(text string) string {
	return f.pattern.ReplaceAllStringFunc(text, func(match string) string {
		return matchCase(match, softenings[strings.ToLower(match)])
	})
}

// Contains reports whether text holds any filtered word.
func (f *ReplyFilter) Contains(text string) bool {
	return f.pattern.MatchString(text)
}

func matchCase(original, replacement string) string {
	switch {
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return replacement
	case unicode.IsUpper([]rune(original)[0]):
		// Casers hold state, so one is built per use.
		return cases.Title(language.English).String(replacement)
	default:
		return replacement
	}
}

// Ratings lists the content ratings a shop may declare.
var Ratings = []string{"G", "PG", "PG13", "PG-13", "R"}

// AppliesTo reports whether a shop content rating calls for filtering.
func AppliesTo(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}
