// Package features merges the per-source daily series into the final feature
// table: one row per calendar day of the requested range.
package features

import (
	"fmt"
	"math"
	"time"

	"github.com/bighogz/sentiment-features/internal/calendar"
	"github.com/bighogz/sentiment-features/internal/frame"
	"github.com/bighogz/sentiment-features/internal/models"
)

// Column names of the final table, in output order after "date".
const (
	ColNewsSentiment    = "news_sentiment"
	ColNumArticles      = "num_articles"
	ColRedditSentiment  = "reddit_sentiment"
	ColRedditPostVolume = "reddit_post_volume"
	ColStockPrice       = "stock_price"
	ColStockReturn      = "stock_return"
	ColMarketCap        = "market_cap"
	ColEPS              = "eps"
	ColRevenue          = "revenue"
)

// Columns is the final column order.
var Columns = []string{
	ColNewsSentiment, ColNumArticles,
	ColRedditSentiment, ColRedditPostVolume,
	ColStockPrice, ColStockReturn,
	ColMarketCap, ColEPS, ColRevenue,
}

const colSentiment = "average_signed_sentiment"

// Inputs are the per-source daily series. Earnings is the forward-filled
// daily series, not the raw announcements.
type Inputs struct {
	News       []models.DailyRecord
	Reddit     []models.DailyRecord
	Prices     []models.PriceRecord
	MarketCaps []models.MarketCapRecord
	Earnings   []models.EarningsRecord
	Start      time.Time
	End        time.Time
}

// Merge outer-joins every source on date and reindexes onto [Start, End].
func Merge(in Inputs) (*frame.Frame, error) {
	var w writer
	news := w.sentimentFrame("news", ColNumArticles, in.News)
	reddit := w.sentimentFrame("reddit", ColRedditPostVolume, in.Reddit)

	price := frame.New("price", ColStockPrice, ColStockReturn)
	for _, p := range in.Prices {
		w.setFloat(price, p.Date, ColStockPrice, p.StockPrice)
		w.set(price, p.Date, ColStockReturn, p.StockReturn)
	}

	caps := frame.New("marketcap", ColMarketCap)
	for _, c := range in.MarketCaps {
		w.setFloat(caps, c.Date, ColMarketCap, float64(c.MarketCap))
	}

	earnings := frame.New("earnings", ColEPS, ColRevenue)
	for _, e := range in.Earnings {
		w.set(earnings, e.Date, ColEPS, e.EPS)
		w.set(earnings, e.Date, ColRevenue, int64Ptr(e.Revenue))
	}
	if w.err != nil {
		return nil, fmt.Errorf("merge features: %w", w.err)
	}

	joined, err := frame.OuterJoin("features", news, reddit, price, caps, earnings)
	if err != nil {
		return nil, fmt.Errorf("merge features: %w", err)
	}
	joined.Rename(map[string]string{
		colSentiment + "_news":   ColNewsSentiment,
		colSentiment + "_reddit": ColRedditSentiment,
	})
	return joined.Reindex(calendar.Range(in.Start, in.End)), nil
}

// Build merges the inputs and returns the typed rows.
func Build(in Inputs) ([]models.FeatureRow, error) {
	f, err := Merge(in)
	if err != nil {
		return nil, err
	}
	return Rows(f), nil
}

// Rows converts a merged frame to FeatureRows in date order.
func Rows(f *frame.Frame) []models.FeatureRow {
	days := f.Days()
	rows := make([]models.FeatureRow, 0, len(days))
	for _, d := range days {
		rows = append(rows, models.FeatureRow{
			Date:             d,
			NewsSentiment:    f.Value(d, ColNewsSentiment),
			NumArticles:      toInt(f.Value(d, ColNumArticles)),
			RedditSentiment:  f.Value(d, ColRedditSentiment),
			RedditPostVolume: toInt(f.Value(d, ColRedditPostVolume)),
			StockPrice:       f.Value(d, ColStockPrice),
			StockReturn:      f.Value(d, ColStockReturn),
			MarketCap:        toInt64(f.Value(d, ColMarketCap)),
			EPS:              f.Value(d, ColEPS),
			Revenue:          toInt64(f.Value(d, ColRevenue)),
		})
	}
	return rows
}

// writer fills frames and keeps the first Set error.
type writer struct {
	err error
}

func (w *writer) set(f *frame.Frame, day time.Time, col string, v *float64) {
	if w.err != nil {
		return
	}
	w.err = f.Set(day, col, v)
}

func (w *writer) setFloat(f *frame.Frame, day time.Time, col string, v float64) {
	w.set(f, day, col, &v)
}

func (w *writer) sentimentFrame(source, countCol string, records []models.DailyRecord) *frame.Frame {
	f := frame.New(source, colSentiment, countCol)
	for _, r := range records {
		w.setFloat(f, r.Date, colSentiment, r.SignedSentimentMean)
		w.setFloat(f, r.Date, countCol, float64(r.ItemCount))
	}
	return f
}

func int64Ptr(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func toInt(v *float64) *int {
	if v == nil {
		return nil
	}
	i := int(math.Round(*v))
	return &i
}

func toInt64(v *float64) *int64 {
	if v == nil {
		return nil
	}
	i := int64(math.Round(*v))
	return &i
}
