// Package backtest slides a fixed evaluation window and look-ahead window
// across price series and records whether each fired strategy's price
// target was reached.
package backtest

import (
	"errors"
	"fmt"
	"iter"

	"signal-lab/internal/domain"
	"signal-lab/internal/strategy"
)

// Default window parameters (hourly samples).
const (
	DefaultWindowSize       = 24
	DefaultLookAhead        = DefaultWindowSize * 3
	DefaultTargetPercentage = 1.05
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid backtest config")

// Config holds window parameters.
type Config struct {
	WindowSize       int     // samples in the evaluation window
	LookAhead        int     // offset of the look-ahead end from the window start
	TargetPercentage float64 // spot multiplier a future price must exceed
}

// DefaultConfig returns the 24h window / 48h look-ahead / +5% configuration.
func DefaultConfig() Config {
	return Config{
		WindowSize:       DefaultWindowSize,
		LookAhead:        DefaultLookAhead,
		TargetPercentage: DefaultTargetPercentage,
	}
}

// Validate checks the window geometry.
func (c Config) Validate() error {
	if c.WindowSize < 1 {
		return fmt.Errorf("%w: window size %d < 1", ErrInvalidConfig, c.WindowSize)
	}
	if c.LookAhead <= c.WindowSize {
		return fmt.Errorf("%w: look-ahead %d must exceed window size %d", ErrInvalidConfig, c.LookAhead, c.WindowSize)
	}
	if c.TargetPercentage <= 0 {
		return fmt.Errorf("%w: target percentage %g must be positive", ErrInvalidConfig, c.TargetPercentage)
	}
	return nil
}

// LookAheadHours returns the length of the look-ahead sub-window.
func (c Config) LookAheadHours() int {
	return c.LookAhead - c.WindowSize
}

// WindowCount returns the number of windows a series of n samples yields.
func (c Config) WindowCount(n int) int {
	if n <= c.LookAhead {
		return 0
	}
	return n - c.LookAhead
}

// Window is one position of the sliding window over a series.
// Evaluation is samples[Start:End]; the look-ahead is samples[End:Horizon].
type Window struct {
	Start      int
	End        int
	Horizon    int
	Evaluation []float64
	Spot       float64 // last evaluation sample
	Target     float64 // Spot * TargetPercentage
	FutureMax  float64 // max of the look-ahead
	Success    int     // domain.OutcomeSuccess when FutureMax > Target
}

// Emission is a single (strategy, outcome) pair produced by a window.
type Emission struct {
	StrategyName string
	Success      int
}

// SeriesResult is the outcome of evaluating one series.
type SeriesResult struct {
	Pair        domain.Pair
	Windows     int // windows processed
	Invocations int // library calls, one per window
	Emissions   []Emission
}

// OutcomeSink receives emissions as they are produced.
type OutcomeSink interface {
	Add(strategyName string, success int)
}

// Engine evaluates series with a signal library.
type Engine struct {
	cfg     Config
	library strategy.Library
}

// NewEngine creates a backtest engine. cfg must be valid.
func NewEngine(cfg Config, library strategy.Library) *Engine {
	return &Engine{cfg: cfg, library: library}
}

// Config returns the engine's window parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// Windows yields every valid window of samples, oldest first.
// Series shorter than LookAhead yield nothing. The loop stops once the
// look-ahead end reaches the last sample, so a series of n samples yields
// n - LookAhead windows.
func (e *Engine) Windows(samples []float64) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		if len(samples) < e.cfg.LookAhead {
			return
		}

		a, b, c := 0, e.cfg.WindowSize, e.cfg.LookAhead
		for c < len(samples) {
			spot := samples[b-1]
			target := e.cfg.TargetPercentage * spot
			futureMax := maxOf(samples[b:c])

			success := domain.OutcomeFailure
			if futureMax > target {
				success = domain.OutcomeSuccess
			}

			w := Window{
				Start:      a,
				End:        b,
				Horizon:    c,
				Evaluation: samples[a:b:b],
				Spot:       spot,
				Target:     target,
				FutureMax:  futureMax,
				Success:    success,
			}
			if !yield(w) {
				return
			}

			a++
			b++
			c++
		}
	}
}

// Run streams every emission of series into sink and returns the window count.
func (e *Engine) Run(series domain.PriceSeries, sink OutcomeSink) int {
	windows := 0
	for w := range e.Windows(series.Samples) {
		for _, name := range e.library.Fire(w.Evaluation) {
			sink.Add(name, w.Success)
		}
		windows++
	}
	return windows
}

// EvaluateSeries evaluates series and buffers its emissions.
// It touches no shared state and may run concurrently for distinct series.
func (e *Engine) EvaluateSeries(series domain.PriceSeries) SeriesResult {
	result := SeriesResult{Pair: series.Pair}
	for w := range e.Windows(series.Samples) {
		result.Invocations++
		for _, name := range e.library.Fire(w.Evaluation) {
			result.Emissions = append(result.Emissions, Emission{StrategyName: name, Success: w.Success})
		}
		result.Windows++
	}
	return result
}

// Current returns the final WindowSize samples of series, or false when
// the series is shorter than one window.
func (e *Engine) Current(series domain.PriceSeries) ([]float64, bool) {
	n := len(series.Samples)
	if n < e.cfg.WindowSize {
		return nil, false
	}
	return series.Samples[n-e.cfg.WindowSize : n : n], true
}

// maxOf returns the largest value of a non-empty slice.
func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
