package trend

import (
	"sort"

	"github.com/bighogz/sentiment-features/internal/models"
)

// Returns sorts prices by date and fills StockReturn with the percentage change
// from the previous observation. The first observation has no return.
// The input slice is not modified.
func Returns(prices []models.PriceRecord) []models.PriceRecord {
	out := make([]models.PriceRecord, len(prices))
	copy(out, prices)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	closes := make([]float64, len(out))
	for i, p := range out {
		closes[i] = p.StockPrice
	}
	for i, r := range PctChange(closes) {
		out[i].StockReturn = r
	}
	return out
}

// PctChange returns closes[i]/closes[i-1] - 1 for each point after the first.
// A non-positive previous close yields nil.
func PctChange(closes []float64) []*float64 {
	out := make([]*float64, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			continue
		}
		r := closes[i]/closes[i-1] - 1
		out[i] = &r
	}
	return out
}
