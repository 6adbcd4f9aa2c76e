package backtest

import "signal-lab/internal/strategy"

// StubLibrary fires a fixed set of names on every window.
// It records each window it is shown for verification in tests.
type StubLibrary struct {
	names   []string
	windows [][]float64
}

// NewStubLibrary creates a stub library that always fires names.
func NewStubLibrary(names ...string) *StubLibrary {
	return &StubLibrary{names: names}
}

// Fire records a copy of window and returns the configured names.
func (s *StubLibrary) Fire(window []float64) []string {
	s.windows = append(s.windows, append([]float64(nil), window...))
	return s.names
}

// Calls returns the number of Fire invocations.
func (s *StubLibrary) Calls() int {
	return len(s.windows)
}

// Windows returns the recorded windows in call order.
func (s *StubLibrary) Windows() [][]float64 {
	return s.windows
}

// Ensure StubLibrary implements strategy.Library
var _ strategy.Library = (*StubLibrary)(nil)
