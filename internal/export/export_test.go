package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/sentiment-features/internal/features"
	"github.com/bighogz/sentiment-features/internal/models"
)

func featureRows() []models.FeatureRow {
	s, n, price, mcap := 0.3, 2, 101.25, int64(3145678901234)
	ret := -0.0125
	return []models.FeatureRow{
		{Date: time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC), NewsSentiment: &s, NumArticles: &n, StockPrice: &price, MarketCap: &mcap},
		{Date: time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC), StockReturn: &ret},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []string{"xlsx", "csv", "sqlite", "db"} {
		t.Run(format, func(t *testing.T) {
			path := Path(t.TempDir(), "data", "AAPL", "final_data", format)
			require.NoError(t, WriteFile(path, FeaturesTable(featureRows())))

			got, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, append([]string{"date"}, features.Columns...), got.Header)
			require.Len(t, got.Rows, 2)

			first := got.Rows[0]
			assert.Equal(t, "2025-05-08", String(first[got.Col("date")]))
			v, ok := Float(first[got.Col("news_sentiment")])
			require.True(t, ok)
			assert.Equal(t, 0.3, v)
			v, ok = Float(first[got.Col("market_cap")])
			require.True(t, ok)
			assert.Equal(t, 3145678901234.0, v)
			_, ok = Float(first[got.Col("reddit_sentiment")])
			assert.False(t, ok, "missing values read back as empty")

			v, ok = Float(got.Rows[1][got.Col("stock_return")])
			require.True(t, ok)
			assert.Equal(t, -0.0125, v)
		})
	}
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news", "deep", "AAPL_news_data.csv")
	a := models.Article{Symbol: "AAPL", Title: "t", PublishedDate: time.Date(2025, 5, 8, 14, 30, 0, 0, time.UTC)}
	require.NoError(t, WriteFile(path, ArticlesTable([]models.Article{a})))

	_, err := os.Stat(path)
	require.NoError(t, err)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-08 14:30:00", got.Rows[0][got.Col("publishedDate")])
	assert.Nil(t, got.Rows[0][got.Col("sentiment_label")])
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "social.sqlite")
	posts := []models.Post{{ID: "a", Sentiment: &models.Sentiment{Label: "positive", Score: 0.9}}}
	require.NoError(t, WriteFile(path, PostsTable(posts)))
	require.NoError(t, WriteFile(path, PostsTable(append(posts, models.Post{ID: "b"}))))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "social", got.Name)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "positive", got.Rows[0][got.Col("sentiment_label")])
}

func TestUnsupportedFormat(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "x.parquet"), Table{})
	assert.Error(t, err)
	_, err = ReadFile("x.json")
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "news", "AAPL_news_data.xlsx"), Path("out", "news", "AAPL", "news_data", ".xlsx"))
}
