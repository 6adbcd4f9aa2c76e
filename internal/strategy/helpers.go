package strategy

import "math"

// last returns the final sample.
func last(prices []float64) float64 {
	return prices[len(prices)-1]
}

// sma returns the simple moving average of the period samples ending at end (exclusive).
func sma(prices []float64, end, period int) float64 {
	var sum float64
	for i := end - period; i < end; i++ {
		sum += prices[i]
	}
	return sum / float64(period)
}

// meanStdDev returns the population mean and standard deviation.
func meanStdDev(prices []float64) (float64, float64) {
	var sum float64
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(len(prices))

	var variance float64
	for _, p := range prices {
		variance += math.Pow(p-mean, 2)
	}
	return mean, math.Sqrt(variance / float64(len(prices)))
}

// minMax returns the smallest and largest sample.
func minMax(prices []float64) (float64, float64) {
	lo, hi := prices[0], prices[0]
	for _, p := range prices[1:] {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	return lo, hi
}

// rsi computes Wilder's relative strength index over the whole slice.
// Returns 50 when there is not enough data.
func rsi(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50.0
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}
