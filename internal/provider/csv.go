package provider

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"signal-lab/internal/domain"
)

// ErrMalformedRow is returned for CSV rows that cannot be parsed.
var ErrMalformedRow = errors.New("malformed csv row")

// positionColumns is the column count of a buys/sells file.
const positionColumns = 7

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return cr
}

// ReadPriceCSV reads one series per row: from,to,p1,p2,... oldest first.
// Blank lines are ignored. A row with a pair but no prices yields an empty series.
// Every price must be finite and positive.
func ReadPriceCSV(r io.Reader) ([]domain.PriceSeries, error) {
	cr := newReader(r)

	var series []domain.PriceSeries
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read prices: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if len(rec) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected from,to,prices", ErrMalformedRow, line)
		}
		pair := domain.Pair{From: strings.TrimSpace(rec[0]), To: strings.TrimSpace(rec[1])}
		if !pair.IsValid() {
			return nil, fmt.Errorf("%w: line %d: empty symbol", ErrMalformedRow, line)
		}

		samples := make([]float64, 0, len(rec)-2)
		for i, field := range rec[2:] {
			field = strings.TrimSpace(field)
			if field == "" && i == len(rec)-3 {
				continue // trailing separator
			}
			p, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %v", ErrMalformedRow, line, i+3, err)
			}
			if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
				return nil, fmt.Errorf("%w: line %d column %d: price %q must be positive and finite", ErrMalformedRow, line, i+3, field)
			}
			samples = append(samples, p)
		}
		series = append(series, domain.PriceSeries{Pair: pair, Samples: samples})
	}
	return series, nil
}

// WritePriceCSV writes series in the format read by ReadPriceCSV.
func WritePriceCSV(w io.Writer, series []domain.PriceSeries) error {
	cw := csv.NewWriter(w)
	for _, s := range series {
		rec := make([]string, 0, len(s.Samples)+2)
		rec = append(rec, s.Pair.From, s.Pair.To)
		for _, p := range s.Samples {
			rec = append(rec, strconv.FormatFloat(p, 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write prices: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadPositionCSV reads positions, one per row:
// from,to,strategy,buy_price,sell_price,buy_time_ms,sell_time_ms.
// closed marks every position read as a completed transaction.
func ReadPositionCSV(r io.Reader, closed bool) ([]*domain.Position, error) {
	cr := newReader(r)

	var positions []*domain.Position
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if len(rec) != positionColumns {
			return nil, fmt.Errorf("%w: line %d: expected %d columns, got %d", ErrMalformedRow, line, positionColumns, len(rec))
		}

		p := &domain.Position{
			Pair:     domain.Pair{From: rec[0], To: rec[1]},
			Strategy: rec[2],
			Closed:   closed,
		}
		if !p.Pair.IsValid() || p.Strategy == "" {
			return nil, fmt.Errorf("%w: line %d: empty pair or strategy", ErrMalformedRow, line)
		}
		if p.BuyPrice, err = strconv.ParseFloat(rec[3], 64); err != nil {
			return nil, fmt.Errorf("%w: line %d: buy price: %v", ErrMalformedRow, line, err)
		}
		if p.SellPrice, err = strconv.ParseFloat(rec[4], 64); err != nil {
			return nil, fmt.Errorf("%w: line %d: sell price: %v", ErrMalformedRow, line, err)
		}
		if p.BuyTimeMs, err = strconv.ParseInt(rec[5], 10, 64); err != nil {
			return nil, fmt.Errorf("%w: line %d: buy time: %v", ErrMalformedRow, line, err)
		}
		if p.SellTimeMs, err = strconv.ParseInt(rec[6], 10, 64); err != nil {
			return nil, fmt.Errorf("%w: line %d: sell time: %v", ErrMalformedRow, line, err)
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// ToSamples assigns hourly timestamps to series so that its last sample
// falls on lastTimestampMs.
func ToSamples(series domain.PriceSeries, lastTimestampMs int64) []*domain.PriceSample {
	n := len(series.Samples)
	out := make([]*domain.PriceSample, n)
	for i, p := range series.Samples {
		out[i] = &domain.PriceSample{
			Pair:        series.Pair,
			TimestampMs: lastTimestampMs - int64(n-1-i)*domain.SampleIntervalMs,
			Price:       p,
		}
	}
	return out
}
