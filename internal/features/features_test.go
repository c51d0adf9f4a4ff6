package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/sentiment-features/internal/calendar"
	"github.com/bighogz/sentiment-features/internal/frame"
	"github.com/bighogz/sentiment-features/internal/models"
	"github.com/bighogz/sentiment-features/internal/trend"
)

func d(s string) time.Time {
	t, err := calendar.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildCoversEveryDay(t *testing.T) {
	eps, rev := 1.65, int64(95359000000)
	in := Inputs{
		News: []models.DailyRecord{
			{Date: d("2025-05-08"), SignedSentimentMean: 0.3, ItemCount: 2},
			{Date: d("2025-05-20"), SignedSentimentMean: 0.9, ItemCount: 1}, // outside range
		},
		Reddit: []models.DailyRecord{
			{Date: d("2025-05-09"), SignedSentimentMean: -0.5, ItemCount: 4},
		},
		Prices: trend.Returns([]models.PriceRecord{
			{Date: d("2025-05-09"), StockPrice: 110},
			{Date: d("2025-05-08"), StockPrice: 100},
		}),
		MarketCaps: []models.MarketCapRecord{{Date: d("2025-05-08"), MarketCap: 3145678901234}},
		Earnings: []models.EarningsRecord{
			{Date: d("2025-05-08"), EPS: &eps, Revenue: &rev},
			{Date: d("2025-05-09"), EPS: &eps, Revenue: &rev},
			{Date: d("2025-05-10"), EPS: &eps, Revenue: &rev},
		},
		Start: d("2025-05-07"),
		End:   d("2025-05-10"),
	}

	rows, err := Build(in)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i, r := range rows {
		assert.Equal(t, d("2025-05-07").AddDate(0, 0, i), r.Date)
	}

	empty := rows[0]
	assert.Nil(t, empty.NewsSentiment)
	assert.Nil(t, empty.StockPrice)
	assert.Nil(t, empty.EPS)

	r := rows[1]
	require.NotNil(t, r.NewsSentiment)
	assert.Equal(t, 0.3, *r.NewsSentiment)
	assert.Equal(t, 2, *r.NumArticles)
	assert.Nil(t, r.RedditSentiment)
	assert.Equal(t, 100.0, *r.StockPrice)
	assert.Nil(t, r.StockReturn)
	assert.Equal(t, int64(3145678901234), *r.MarketCap)
	assert.Equal(t, rev, *r.Revenue)

	r = rows[2]
	assert.Equal(t, -0.5, *r.RedditSentiment)
	assert.Equal(t, 4, *r.RedditPostVolume)
	assert.InDelta(t, 0.1, *r.StockReturn, 1e-9)
	assert.Nil(t, r.MarketCap)

	assert.Equal(t, 1.65, *rows[3].EPS)
	assert.Nil(t, rows[3].StockPrice)
}

func TestMergeColumnNames(t *testing.T) {
	f, err := Merge(Inputs{
		News:   []models.DailyRecord{{Date: d("2025-05-08"), SignedSentimentMean: 0.1, ItemCount: 1}},
		Reddit: []models.DailyRecord{{Date: d("2025-05-08"), SignedSentimentMean: 0.2, ItemCount: 1}},
		Start:  d("2025-05-08"),
		End:    d("2025-05-08"),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, Columns, f.Columns)
	assert.Equal(t, 0.1, *f.Value(d("2025-05-08"), ColNewsSentiment))
	assert.Equal(t, 0.2, *f.Value(d("2025-05-08"), ColRedditSentiment))
}

func TestBuildEmptyInputs(t *testing.T) {
	rows, err := Build(Inputs{Start: d("2025-05-01"), End: d("2025-05-03")})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, models.FeatureRow{Date: r.Date}, r)
	}
}

func TestWriterKeepsFirstError(t *testing.T) {
	var w writer
	f := frame.New("price", ColStockPrice)
	w.setFloat(f, d("2025-05-08"), "close", 1)
	require.Error(t, w.err)
	assert.Contains(t, w.err.Error(), "close")

	first := w.err
	w.setFloat(f, d("2025-05-08"), "open", 2)
	w.setFloat(f, d("2025-05-09"), ColStockPrice, 3)
	assert.Equal(t, first, w.err)
	assert.Nil(t, f.Value(d("2025-05-09"), ColStockPrice), "writes stop after the first error")
}

func TestBuildMarketCapExactToFloatMantissa(t *testing.T) {
	const maxExact = int64(1) << 53
	rows, err := Build(Inputs{
		MarketCaps: []models.MarketCapRecord{{Date: d("2025-05-08"), MarketCap: maxExact}},
		Start:      d("2025-05-08"),
		End:        d("2025-05-08"),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, maxExact, *rows[0].MarketCap)
}
