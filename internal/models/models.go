package models

import "time"

// Sentiment is the classifier output for one text.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Article is one news item returned by the stock news endpoint.
type Article struct {
	Symbol        string     `json:"symbol"`
	PublishedDate time.Time  `json:"published_date"`
	Publisher     string     `json:"publisher"`
	Title         string     `json:"title"`
	Image         string     `json:"image,omitempty"`
	Site          string     `json:"site,omitempty"`
	Text          string     `json:"text"`
	URL           string     `json:"url"`
	Sentiment     *Sentiment `json:"sentiment,omitempty"`
}

// Post is one social media submission matched by the keyword search.
type Post struct {
	Date        time.Time  `json:"date"`
	CreatedUTC  time.Time  `json:"created_utc"`
	ID          string     `json:"id"`
	Author      string     `json:"author"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	URL         string     `json:"url"`
	Score       int        `json:"score"`
	NumComments int        `json:"num_comments"`
	Subreddit   string     `json:"subreddit"`
	Source      string     `json:"source"`
	Sentiment   *Sentiment `json:"sentiment,omitempty"`
}

// ScoredItem is the aggregator input: a timestamp plus an optional sentiment.
type ScoredItem struct {
	Time      time.Time
	Sentiment *Sentiment
}

// DailyRecord is one source's sentiment summary for one calendar day.
type DailyRecord struct {
	Date                time.Time `json:"date"`
	SignedSentimentMean float64   `json:"average_signed_sentiment"`
	ItemCount           int       `json:"item_count"`
}

type PriceRecord struct {
	Date        time.Time `json:"date"`
	StockPrice  float64   `json:"stock_price"`
	StockReturn *float64  `json:"stock_return,omitempty"`
}

type MarketCapRecord struct {
	Date      time.Time `json:"date"`
	MarketCap int64     `json:"market_cap"`
}

// EarningsRecord is either an announcement or one day of the forward-filled
// daily series.
type EarningsRecord struct {
	Date    time.Time `json:"date"`
	EPS     *float64  `json:"eps,omitempty"`
	Revenue *int64    `json:"revenue,omitempty"`
}

// FeatureRow is one day of the merged feature table.
type FeatureRow struct {
	Date             time.Time `json:"date"`
	NewsSentiment    *float64  `json:"news_sentiment,omitempty"`
	NumArticles      *int      `json:"num_articles,omitempty"`
	RedditSentiment  *float64  `json:"reddit_sentiment,omitempty"`
	RedditPostVolume *int      `json:"reddit_post_volume,omitempty"`
	StockPrice       *float64  `json:"stock_price,omitempty"`
	StockReturn      *float64  `json:"stock_return,omitempty"`
	MarketCap        *int64    `json:"market_cap,omitempty"`
	EPS              *float64  `json:"eps,omitempty"`
	Revenue          *int64    `json:"revenue,omitempty"`
}

// Coverage lists what a tolerant fetch could not retrieve. Empty slices mean
// every day and community was fetched.
type Coverage struct {
	Requested         int         `json:"requested"`
	FailedDays        []time.Time `json:"failed_days,omitempty"`
	FailedCommunities []string    `json:"failed_communities,omitempty"`
}

// Complete reports whether nothing failed.
func (c Coverage) Complete() bool {
	return len(c.FailedDays) == 0 && len(c.FailedCommunities) == 0
}
