package state

import (
	"strings"
	"unicode"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/khldd/eternal-hope/internal/app/models"
)

// Filter narrows the place snapshot. Zero values mean "no constraint":
// empty status matches every status, empty tags list skips the tag
// intersection, empty query skips the text search.
type Filter struct {
	Status models.PlaceStatus
	Tags   []string
	Query  string
}

// accentFolder strips combining marks so "café" matches "cafe".
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldText(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

// FilterPlaces applies every active predicate conjunctively. Tag filtering
// intersects with both the curated tag list and the AI vibe tags. The
// free-text query is split on whitespace; a place matches when every term
// occurs somewhere in its searchable text.
func FilterPlaces(places []models.Place, f Filter) []models.Place {
	terms := uniqueTerms(strings.Fields(foldText(f.Query)))
	var matcher *termMatcher
	if len(terms) > 0 {
		matcher = newTermMatcher(terms)
	}

	out := make([]models.Place, 0, len(places))
	for _, p := range places {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(p, f.Tags) {
			continue
		}
		if matcher != nil && !matcher.matchesAll(searchableText(p)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasAnyTag(p models.Place, want []string) bool {
	for _, w := range want {
		for _, t := range p.Tags {
			if strings.EqualFold(t.Name, w) {
				return true
			}
		}
		for _, t := range p.AIVibeTags {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}

func searchableText(p models.Place) string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteByte('\n')
	if p.Address != nil {
		b.WriteString(*p.Address)
		b.WriteByte('\n')
	}
	for _, t := range p.Tags {
		b.WriteString(t.Name)
		b.WriteByte('\n')
	}
	for _, t := range p.AIVibeTags {
		b.WriteString(t)
		b.WriteByte('\n')
	}
	return foldText(b.String())
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// termMatcher finds all query terms in one pass over the haystack.
type termMatcher struct {
	ac    ahocorasick.AhoCorasick
	terms int
}

// newTermMatcher builds a StandardMatch automaton so overlapping iteration
// reports every term, including terms that are substrings of one another.
func newTermMatcher(terms []string) *termMatcher {
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchKind:            ahocorasick.StandardMatch,
		DFA:                  true,
	})
	return &termMatcher{ac: builder.Build(terms), terms: len(terms)}
}

func (m *termMatcher) matchesAll(haystack string) bool {
	seen := make(map[int]struct{}, m.terms)
	iter := m.ac.IterOverlapping(haystack)
	for match := iter.Next(); match != nil; match = iter.Next() {
		seen[match.Pattern()] = struct{}{}
		if len(seen) == m.terms {
			return true
		}
	}
	return false
}
