package aggregator

import (
	"sort"
	"time"

	"github.com/bighogz/sentiment-features/internal/calendar"
	"github.com/bighogz/sentiment-features/internal/models"
)

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// SignedSentiment folds polarity into the score: +score for positive,
// -score for negative, 0 for neutral or anything else.
func SignedSentiment(label string, score float64) float64 {
	switch label {
	case LabelPositive:
		return score
	case LabelNegative:
		return -score
	default:
		return 0
	}
}

type dailySum struct {
	date  time.Time
	sum   float64
	count int
}

// DailyStats collapses items into one record per calendar day holding the mean
// signed sentiment and the item count. Items without sentiment are dropped.
// Days with no qualifying item are absent from the result.
func DailyStats(items []models.ScoredItem) []models.DailyRecord {
	byDay := make(map[time.Time]*dailySum)
	for _, it := range items {
		if it.Sentiment == nil {
			continue
		}
		d := calendar.Day(it.Time)
		s, ok := byDay[d]
		if !ok {
			s = &dailySum{date: d}
			byDay[d] = s
		}
		s.sum += SignedSentiment(it.Sentiment.Label, it.Sentiment.Score)
		s.count++
	}

	out := make([]models.DailyRecord, 0, len(byDay))
	for _, s := range byDay {
		out = append(out, models.DailyRecord{
			Date:                s.date,
			SignedSentimentMean: s.sum / float64(s.count),
			ItemCount:           s.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// ArticleItems maps articles to aggregator input keyed by publication date.
func ArticleItems(articles []models.Article) []models.ScoredItem {
	out := make([]models.ScoredItem, 0, len(articles))
	for _, a := range articles {
		out = append(out, models.ScoredItem{Time: a.PublishedDate, Sentiment: a.Sentiment})
	}
	return out
}

// PostItems maps posts to aggregator input keyed by their UTC day.
func PostItems(posts []models.Post) []models.ScoredItem {
	out := make([]models.ScoredItem, 0, len(posts))
	for _, p := range posts {
		out = append(out, models.ScoredItem{Time: p.Date, Sentiment: p.Sentiment})
	}
	return out
}

// RecordItems turns daily records back into items (one per day, already signed).
// Running DailyStats over the result reproduces the input.
func RecordItems(records []models.DailyRecord) []models.ScoredItem {
	out := make([]models.ScoredItem, 0, len(records))
	for _, r := range records {
		label, score := LabelPositive, r.SignedSentimentMean
		if score < 0 {
			label, score = LabelNegative, -score
		}
		out = append(out, models.ScoredItem{Time: r.Date, Sentiment: &models.Sentiment{Label: label, Score: score}})
	}
	return out
}
