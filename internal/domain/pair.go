package domain

import "strings"

// Pair identifies a traded asset pair, e.g. BTC priced in USD.
type Pair struct {
	From string // base symbol
	To   string // quote symbol
}

// Label returns the pair as "{from}-{to}".
func (p Pair) Label() string {
	return p.From + "-" + p.To
}

// String returns the pair label.
func (p Pair) String() string {
	return p.Label()
}

// IsValid reports whether both symbols are set.
func (p Pair) IsValid() bool {
	return strings.TrimSpace(p.From) != "" && strings.TrimSpace(p.To) != ""
}

// ParsePair parses "FROM-TO" or "FROM/TO". Symbols are upper-cased.
func ParsePair(s string) (Pair, bool) {
	sep := strings.IndexAny(s, "-/")
	if sep <= 0 || sep == len(s)-1 {
		return Pair{}, false
	}
	p := Pair{
		From: strings.ToUpper(strings.TrimSpace(s[:sep])),
		To:   strings.ToUpper(strings.TrimSpace(s[sep+1:])),
	}
	return p, p.IsValid()
}
