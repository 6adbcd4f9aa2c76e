package strategy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFamily is returned for a family name with no rules.
var ErrUnknownFamily = errors.New("unknown strategy family")

// families lists the rules of each family in evaluation order.
var families = []struct {
	name  string
	rules func() []Rule
}{
	{"flat", func() []Rule { return []Rule{Flat(1), Flat(2)} }},
	{"rising", func() []Rule { return []Rule{Rising(3), Rising(6), Rising(12)} }},
	{"falling", func() []Rule { return []Rule{Falling(3), Falling(6), Falling(12)} }},
	{"dip", func() []Rule { return []Rule{Dip(5), Dip(10)} }},
	{"breakout", func() []Rule { return []Rule{Breakout()} }},
	{"sma-cross", func() []Rule { return []Rule{SMACross(3, 12), SMACross(6, 18)} }},
	{"rsi-oversold", func() []Rule { return []Rule{RSIOversold(20), RSIOversold(30)} }},
	{"bollinger-low", func() []Rule { return []Rule{BollingerLow(1.5), BollingerLow(2)} }},
}

// Families returns every known family name.
func Families() []string {
	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.name
	}
	return names
}

// NewDefaultLibrary returns a library with every family enabled.
func NewDefaultLibrary() *RuleLibrary {
	lib, _ := FromFamilies(nil)
	return lib
}

// FromFamilies builds a library from the named families.
// An empty list enables all families.
func FromFamilies(names []string) (*RuleLibrary, error) {
	if len(names) == 0 {
		names = Families()
	}

	var rules []Rule
	for _, name := range names {
		found := false
		for _, f := range families {
			if f.name == strings.ToLower(strings.TrimSpace(name)) {
				rules = append(rules, f.rules()...)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFamily, name)
		}
	}

	return NewRuleLibrary(rules...), nil
}
