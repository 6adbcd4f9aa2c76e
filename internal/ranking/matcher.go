package ranking

import (
	"errors"
	"fmt"
	"strings"
)

// Matcher names.
const (
	MatchContains = "contains"
	MatchEqual    = "equal"
	MatchPrefix   = "prefix"
)

// ErrUnknownMatcher is returned by NewMatcher for an unsupported name.
var ErrUnknownMatcher = errors.New("unknown matcher")

// Matcher decides whether a fired strategy name corresponds to a top-ranked name.
type Matcher interface {
	Match(fired, top string) bool
}

// ContainsMatcher matches when fired contains top as a substring.
// "rising 12" matches top "rising", but also "rising 1".
type ContainsMatcher struct{}

// Match implements Matcher.
func (ContainsMatcher) Match(fired, top string) bool {
	return strings.Contains(fired, top)
}

// EqualMatcher matches identical names only.
type EqualMatcher struct{}

// Match implements Matcher.
func (EqualMatcher) Match(fired, top string) bool {
	return fired == top
}

// PrefixTokenMatcher matches identical names, or a fired name that starts
// with top followed by a space ("rising 6" for "rising", not "rising 60"
// for "rising 6").
type PrefixTokenMatcher struct{}

// Match implements Matcher.
func (PrefixTokenMatcher) Match(fired, top string) bool {
	if fired == top {
		return true
	}
	return strings.HasPrefix(fired, top+" ")
}

// NewMatcher returns the matcher registered under name.
// An empty name selects ContainsMatcher.
func NewMatcher(name string) (Matcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MatchContains:
		return ContainsMatcher{}, nil
	case MatchEqual:
		return EqualMatcher{}, nil
	case MatchPrefix:
		return PrefixTokenMatcher{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMatcher, name)
	}
}

var (
	_ Matcher = ContainsMatcher{}
	_ Matcher = EqualMatcher{}
	_ Matcher = PrefixTokenMatcher{}
)
