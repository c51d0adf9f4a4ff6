package fmp

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bighogz/sentiment-features/internal/calendar"
	"github.com/bighogz/sentiment-features/internal/httpclient"
	"github.com/bighogz/sentiment-features/internal/models"
)

const publishedLayout = "2006-01-02 15:04:05"

// NewsOptions controls the per-day news crawl.
type NewsOptions struct {
	LimitPerDay int
	Delay       time.Duration
	// WindowDays > 1 fetches that many days per request.
	WindowDays int
}

type newsItem struct {
	Symbol        string `json:"symbol"`
	PublishedDate string `json:"publishedDate"`
	Publisher     string `json:"publisher"`
	Title         string `json:"title"`
	Image         string `json:"image"`
	Site          string `json:"site"`
	Text          string `json:"text"`
	URL           string `json:"url"`
}

// GetNews walks [start, end] one window at a time. A failed window is logged,
// recorded in the returned Coverage and skipped; only cancellation aborts.
func (c *Client) GetNews(ctx context.Context, ticker string, start, end time.Time, opts NewsOptions) ([]models.Article, models.Coverage, error) {
	days := calendar.Range(start, end)
	cov := models.Coverage{Requested: len(days)}
	window := opts.WindowDays
	if window < 1 {
		window = 1
	}
	pacer := httpclient.NewPacer("news", opts.Delay)

	var articles []models.Article
	for i := 0; i < len(days); i += window {
		j := i + window
		if j > len(days) {
			j = len(days)
		}
		batch := days[i:j]

		if err := pacer.Wait(ctx); err != nil {
			return articles, cov, err
		}
		got, err := c.newsWindow(ctx, ticker, batch[0], batch[len(batch)-1], opts.LimitPerDay*len(batch))
		if err != nil {
			if ctx.Err() != nil {
				return articles, cov, ctx.Err()
			}
			c.log.Warnw("news fetch failed", "symbol", ticker, "from", calendar.Format(batch[0]), "to", calendar.Format(batch[len(batch)-1]), "error", err)
			cov.FailedDays = append(cov.FailedDays, batch...)
			continue
		}
		c.log.Debugw("news fetched", "symbol", ticker, "from", calendar.Format(batch[0]), "articles", len(got))
		articles = append(articles, got...)
	}
	return articles, cov, nil
}

func (c *Client) newsWindow(ctx context.Context, ticker string, from, to time.Time, limit int) ([]models.Article, error) {
	params := rangeParams(ticker, from, to)
	params.Del("symbol")
	params.Set("symbols", ticker)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var items []newsItem
	if err := c.get(ctx, "/news/stock", params, &items); err != nil {
		return nil, err
	}
	out := make([]models.Article, 0, len(items))
	for _, it := range items {
		published, err := parsePublished(it.PublishedDate)
		if err != nil {
			c.log.Debugw("news item skipped", "url", it.URL, "error", err)
			continue
		}
		out = append(out, models.Article{
			Symbol:        it.Symbol,
			PublishedDate: published,
			Publisher:     it.Publisher,
			Title:         it.Title,
			Image:         it.Image,
			Site:          it.Site,
			Text:          it.Text,
			URL:           it.URL,
		})
	}
	return out, nil
}

func parsePublished(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(publishedLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return calendar.Parse(s)
}
