// Package trigram finds indexed names that share letter triples with a
// possibly misspelled query.
package trigram

import (
	"sort"
	"strings"
	"unicode"

	"dasa.cc/primeview/set"
)

// Index of names; zero value is valid.
type Index struct {
	// Mapping is applied to each rune before splitting; defaults to
	// LowerAlnum.
	Mapping func(rune) rune

	// Fields splits mapped names into words; defaults to unicode.IsSpace.
	Fields func(rune) bool

	keys set.Slice[string]
	vals set.Chain[string]
}

func (a *Index) init() {
	if a.Mapping == nil {
		a.Mapping = LowerAlnum
	}
	if a.Fields == nil {
		a.Fields = unicode.IsSpace
	}
}

// Add indexes each name in xs.
func (a *Index) Add(xs ...string) {
	a.init()
	for _, s := range xs {
		for _, t := range Parse(s, a.Mapping, a.Fields) {
			i, fresh := a.keys.Insert(t)
			a.vals.Add(s, i, fresh)
		}
	}
}

// Len returns the number of distinct trigrams indexed.
func (a *Index) Len() int { return len(a.keys) }

// Match is an indexed name and the fraction of query trigrams it shares.
type Match struct {
	Name  string
	Score float64
}

// Match returns names sharing at least min of x's trigrams, best first.
func (a *Index) Match(x string, min float64) []Match {
	a.init()
	q := Parse(x, a.Mapping, a.Fields)
	if len(q) == 0 {
		return nil
	}
	hits := make(map[string]int)
	for _, t := range q {
		if i := a.keys.Index(t); i >= 0 {
			for _, s := range a.vals[i] {
				hits[s]++
			}
		}
	}
	var ms []Match
	for s, n := range hits {
		if w := float64(n) / float64(len(q)); w >= min {
			ms = append(ms, Match{s, w})
		}
	}
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Score != ms[j].Score {
			return ms[i].Score > ms[j].Score
		}
		return ms[i].Name < ms[j].Name
	})
	return ms
}

// Parse returns the distinct trigrams of s after mapping and splitting it
// into words. Each word is padded so its first letters weigh more.
func Parse(s string, mapping func(rune) rune, fields func(rune) bool) set.Slice[string] {
	var p set.Slice[string]
	for _, t := range strings.FieldsFunc(strings.Map(mapping, s), fields) {
		t = "\x00\x00" + t + "\x00"
		for i := 0; i <= len(t)-3; i++ {
			p.Insert(t[i : i+3])
		}
	}
	return p
}

// LowerAlnum keeps letters, digits and spaces, lower cased.
func LowerAlnum(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
		return unicode.ToLower(r)
	}
	return -1
}
