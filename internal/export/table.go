package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bighogz/sentiment-features/internal/calendar"
	"github.com/bighogz/sentiment-features/internal/features"
	"github.com/bighogz/sentiment-features/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// Table is a header plus rows of cells. A cell is nil, string, bool, int,
// int64 or float64. Tables read back from disk hold nil, string, int64 or
// float64 depending on the format.
type Table struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// Col returns the index of name in the header, or -1.
func (t Table) Col(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// Float parses a numeric cell. Empty cells and nil report false.
func Float(cell interface{}) (float64, bool) {
	switch v := cell.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// String renders a cell the way the csv writer does.
func String(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func optFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func sentimentCells(s *models.Sentiment) (interface{}, interface{}) {
	if s == nil {
		return nil, nil
	}
	return s.Score, s.Label
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

// ArticlesTable is the news table with sentiment, before aggregation.
func ArticlesTable(articles []models.Article) Table {
	t := Table{
		Name:   "news",
		Header: []string{"symbol", "publishedDate", "publisher", "title", "image", "site", "text", "url", "sentiment_score", "sentiment_label"},
	}
	for _, a := range articles {
		score, label := sentimentCells(a.Sentiment)
		t.Rows = append(t.Rows, []interface{}{
			a.Symbol, timestamp(a.PublishedDate), a.Publisher, a.Title, a.Image, a.Site, a.Text, a.URL, score, label,
		})
	}
	return t
}

// PostsTable is the social table with sentiment, before aggregation.
func PostsTable(posts []models.Post) Table {
	t := Table{
		Name:   "social",
		Header: []string{"date", "created_utc", "id", "author", "title", "text", "url", "score", "num_comments", "subreddit", "source", "sentiment_score", "sentiment_label"},
	}
	for _, p := range posts {
		score, label := sentimentCells(p.Sentiment)
		t.Rows = append(t.Rows, []interface{}{
			calendar.Format(p.Date), timestamp(p.CreatedUTC), p.ID, p.Author, p.Title, p.Text, p.URL,
			p.Score, p.NumComments, p.Subreddit, p.Source, score, label,
		})
	}
	return t
}

// FeaturesTable is the final merged table.
func FeaturesTable(rows []models.FeatureRow) Table {
	t := Table{Name: "features", Header: append([]string{"date"}, features.Columns...)}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			calendar.Format(r.Date),
			optFloat(r.NewsSentiment), optInt(r.NumArticles),
			optFloat(r.RedditSentiment), optInt(r.RedditPostVolume),
			optFloat(r.StockPrice), optFloat(r.StockReturn),
			optInt64(r.MarketCap), optFloat(r.EPS), optInt64(r.Revenue),
		})
	}
	return t
}
