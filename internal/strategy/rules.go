package strategy

import "fmt"

// Flat fires when the window range is below pct percent of its mean.
func Flat(pct float64) Rule {
	return Rule{
		Name:   fmt.Sprintf("flat %g", pct),
		Family: "flat",
		Fires: func(w []float64) bool {
			if len(w) == 0 {
				return false
			}
			lo, hi := minMax(w)
			mean, _ := meanStdDev(w)
			return mean > 0 && (hi-lo) < mean*pct/100
		},
	}
}

// Rising fires when the last n samples are strictly increasing.
func Rising(n int) Rule {
	return Rule{
		Name:   fmt.Sprintf("rising %d", n),
		Family: "rising",
		Fires: func(w []float64) bool {
			return monotonic(w, n, func(prev, next float64) bool { return next > prev })
		},
	}
}

// Falling fires when the last n samples are strictly decreasing.
func Falling(n int) Rule {
	return Rule{
		Name:   fmt.Sprintf("falling %d", n),
		Family: "falling",
		Fires: func(w []float64) bool {
			return monotonic(w, n, func(prev, next float64) bool { return next < prev })
		},
	}
}

func monotonic(w []float64, n int, ok func(prev, next float64) bool) bool {
	if n < 2 || len(w) < n {
		return false
	}
	tail := w[len(w)-n:]
	for i := 1; i < len(tail); i++ {
		if !ok(tail[i-1], tail[i]) {
			return false
		}
	}
	return true
}

// Dip fires when the last sample is at least pct percent below the window maximum.
func Dip(pct float64) Rule {
	return Rule{
		Name:   fmt.Sprintf("dip %g", pct),
		Family: "dip",
		Fires: func(w []float64) bool {
			if len(w) == 0 {
				return false
			}
			_, hi := minMax(w)
			return hi > 0 && last(w) <= hi*(1-pct/100)
		},
	}
}

// Breakout fires when the last sample exceeds every earlier sample in the window.
func Breakout() Rule {
	return Rule{
		Name:   "breakout",
		Family: "breakout",
		Fires: func(w []float64) bool {
			if len(w) < 2 {
				return false
			}
			_, hi := minMax(w[:len(w)-1])
			return last(w) > hi
		},
	}
}

// SMACross fires when the short SMA crosses above the long SMA on the last sample.
func SMACross(short, long int) Rule {
	return Rule{
		Name:   fmt.Sprintf("sma-cross %d/%d", short, long),
		Family: "sma-cross",
		Fires: func(w []float64) bool {
			n := len(w)
			if short >= long || n < long+1 {
				return false
			}
			prevShort, prevLong := sma(w, n-1, short), sma(w, n-1, long)
			curShort, curLong := sma(w, n, short), sma(w, n, long)
			return prevShort <= prevLong && curShort > curLong
		},
	}
}

// RSIOversold fires when the 14-period RSI is below threshold.
func RSIOversold(threshold float64) Rule {
	return Rule{
		Name:   fmt.Sprintf("rsi-oversold %g", threshold),
		Family: "rsi-oversold",
		Fires: func(w []float64) bool {
			return len(w) >= rsiPeriod+1 && rsi(w, rsiPeriod) < threshold
		},
	}
}

const rsiPeriod = 14

// BollingerLow fires when the last sample is below mean - k*stddev of the window.
func BollingerLow(k float64) Rule {
	return Rule{
		Name:   fmt.Sprintf("bollinger-low %g", k),
		Family: "bollinger-low",
		Fires: func(w []float64) bool {
			if len(w) < 2 {
				return false
			}
			mean, sd := meanStdDev(w)
			return sd > 0 && last(w) < mean-k*sd
		},
	}
}
