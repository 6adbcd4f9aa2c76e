package domain

// Position is a recorded buy, optionally closed by a sell.
// Corresponds to positions table in PostgreSQL.
type Position struct {
	ID         int64 // storage identifier, 0 until persisted
	Pair       Pair
	Strategy   string  // strategy that triggered the buy
	BuyPrice   float64 // entry price
	SellPrice  float64 // exit price, or latest price while open
	BuyTimeMs  int64   // entry timestamp (ms)
	SellTimeMs int64   // exit timestamp (ms), or valuation time while open
	Closed     bool
}

// Yield returns sell/buy, or 0 when the buy price is not positive.
func (p *Position) Yield() float64 {
	if p.BuyPrice <= 0 {
		return 0
	}
	return p.SellPrice / p.BuyPrice
}

// DurationMs returns how long the position was held.
func (p *Position) DurationMs() int64 {
	if p.SellTimeMs < p.BuyTimeMs {
		return 0
	}
	return p.SellTimeMs - p.BuyTimeMs
}
