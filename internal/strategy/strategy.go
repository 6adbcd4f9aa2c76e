// Package strategy defines the signal library consulted by the backtest:
// a pure function from a fixed-size price window to the strategy names
// that fire on it.
package strategy

// Library decides which strategies fire on a window of prices.
type Library interface {
	// Fire returns the distinct names of the strategies firing on window.
	// It must be deterministic and must not retain or modify window.
	Fire(window []float64) []string
}

// LibraryFunc adapts a plain function to Library.
type LibraryFunc func(window []float64) []string

// Fire calls f(window).
func (f LibraryFunc) Fire(window []float64) []string {
	return f(window)
}

// Rule is a single named signal.
type Rule struct {
	Name   string // full name, e.g. "rising 6"
	Family string // parameter-free family, e.g. "rising"
	Fires  func(window []float64) bool
}

// RuleLibrary evaluates an ordered set of rules.
type RuleLibrary struct {
	rules []Rule
}

// NewRuleLibrary creates a library from rules. Evaluation follows the given order.
func NewRuleLibrary(rules ...Rule) *RuleLibrary {
	return &RuleLibrary{rules: rules}
}

// Fire returns the names of matching rules in rule order, without duplicates.
func (l *RuleLibrary) Fire(window []float64) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, r := range l.rules {
		if _, dup := seen[r.Name]; dup {
			continue
		}
		if r.Fires(window) {
			seen[r.Name] = struct{}{}
			names = append(names, r.Name)
		}
	}
	return names
}

// Names returns every rule name in evaluation order.
func (l *RuleLibrary) Names() []string {
	names := make([]string, len(l.rules))
	for i, r := range l.rules {
		names[i] = r.Name
	}
	return names
}

// Len returns the number of rules.
func (l *RuleLibrary) Len() int {
	return len(l.rules)
}

var (
	_ Library = LibraryFunc(nil)
	_ Library = (*RuleLibrary)(nil)
)
