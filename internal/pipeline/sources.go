package pipeline

import (
	"context"
	"time"

	"github.com/bighogz/sentiment-features/internal/models"
)

type NewsSource interface {
	News(ctx context.Context, ticker string, start, end time.Time) ([]models.Article, models.Coverage, error)
}

type SocialSource interface {
	Posts(ctx context.Context, keyword string, start, end time.Time) ([]models.Post, models.Coverage, error)
}

type PriceSource interface {
	GetPrices(ctx context.Context, ticker string, start, end time.Time) ([]models.PriceRecord, error)
}

// FundamentalsSource provides market cap and the forward-filled daily earnings.
type FundamentalsSource interface {
	GetMarketCap(ctx context.Context, ticker string, start, end time.Time) ([]models.MarketCapRecord, error)
	GetDailyEarnings(ctx context.Context, ticker string, start, end time.Time) ([]models.EarningsRecord, error)
}

// NewsFunc adapts a function to NewsSource.
type NewsFunc func(ctx context.Context, ticker string, start, end time.Time) ([]models.Article, models.Coverage, error)

func (f NewsFunc) News(ctx context.Context, ticker string, start, end time.Time) ([]models.Article, models.Coverage, error) {
	return f(ctx, ticker, start, end)
}

// SocialFunc adapts a function to SocialSource.
type SocialFunc func(ctx context.Context, keyword string, start, end time.Time) ([]models.Post, models.Coverage, error)

func (f SocialFunc) Posts(ctx context.Context, keyword string, start, end time.Time) ([]models.Post, models.Coverage, error) {
	return f(ctx, keyword, start, end)
}
