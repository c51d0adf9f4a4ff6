// Package pipeline runs one collection: fetch every source, annotate
// sentiment, aggregate per day, merge and export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bighogz/sentiment-features/internal/aggregator"
	"github.com/bighogz/sentiment-features/internal/calendar"
	"github.com/bighogz/sentiment-features/internal/export"
	"github.com/bighogz/sentiment-features/internal/features"
	"github.com/bighogz/sentiment-features/internal/logger"
	"github.com/bighogz/sentiment-features/internal/manifest"
	"github.com/bighogz/sentiment-features/internal/models"
	"github.com/bighogz/sentiment-features/internal/sentiment"
	"github.com/bighogz/sentiment-features/internal/telemetry"
)

// ErrEmptySource aborts a run when news or social data is empty after fetching
// or after sentiment annotation.
var ErrEmptySource = errors.New("pipeline: source produced no data")

type Runner struct {
	News         NewsSource
	Social       SocialSource
	Prices       PriceSource
	Fundamentals FundamentalsSource
	Annotator    sentiment.Annotator

	// Keyword overrides the ticker as the social search term.
	Keyword   string
	MaxChars  int
	OutputDir string
	Format    string

	Log    *logger.Logger
	Tracer trace.Tracer
}

// Result is what a successful run produced.
type Result struct {
	RunID          string
	Features       []models.FeatureRow
	Outputs        map[string]string
	ManifestPath   string
	NewsCoverage   models.Coverage
	SocialCoverage models.Coverage
}

type fundamentals struct {
	prices   []models.PriceRecord
	caps     []models.MarketCapRecord
	earnings []models.EarningsRecord
}

// Run collects [start, end] for ticker. Price, market cap and earnings errors
// abort; per-day news and per-community social failures are tolerated and
// reported in the coverage. Export failures are logged and leave the table out
// of Result.Outputs.
func (r *Runner) Run(ctx context.Context, ticker string, start, end time.Time) (*Result, error) {
	start, end = calendar.Day(start), calendar.Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: %s is before %s", calendar.Format(end), calendar.Format(start))
	}
	if r.Log == nil {
		r.Log = logger.Nop()
	}
	if r.Tracer == nil {
		r.Tracer = telemetry.Tracer()
	}

	res := &Result{RunID: uuid.NewString(), Outputs: make(map[string]string)}
	log := r.Log.With("run_id", res.RunID, "ticker", ticker)
	ctx, span := r.Tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("ticker", ticker),
		attribute.String("start", calendar.Format(start)),
		attribute.String("end", calendar.Format(end)),
	))
	defer span.End()

	log.Infow("run started", "start", calendar.Format(start), "end", calendar.Format(end), "days", len(calendar.Range(start, end)))

	fund, err := r.fetchFundamentals(ctx, ticker, start, end)
	if err != nil {
		return nil, fail(span, err)
	}

	newsDaily, err := r.collectNews(ctx, log, ticker, start, end, res)
	if err != nil {
		return nil, fail(span, err)
	}
	socialDaily, err := r.collectSocial(ctx, log, ticker, start, end, res)
	if err != nil {
		return nil, fail(span, err)
	}

	_, mspan := r.Tracer.Start(ctx, "merge")
	rows, err := features.Build(features.Inputs{
		News:       newsDaily,
		Reddit:     socialDaily,
		Prices:     fund.prices,
		MarketCaps: fund.caps,
		Earnings:   fund.earnings,
		Start:      start,
		End:        end,
	})
	mspan.SetAttributes(attribute.Int("rows", len(rows)))
	mspan.End()
	if err != nil {
		return nil, fail(span, err)
	}
	res.Features = rows

	finalPath := export.Path(r.OutputDir, "data", ticker, "final_data", r.Format)
	if err := r.write(ctx, log, finalPath, export.FeaturesTable(rows)); err != nil {
		log.Warnw("final table export failed", "error", err)
		finalPath = ""
	} else {
		res.Outputs["features"] = finalPath
	}

	res.ManifestPath = manifest.Path(r.OutputDir, ticker)
	m := &manifest.Manifest{
		RunID:          res.RunID,
		Ticker:         ticker,
		Start:          calendar.Format(start),
		End:            calendar.Format(end),
		Format:         r.Format,
		Outputs:        res.Outputs,
		Rows:           map[string]int{"features": len(rows), "news_days": len(newsDaily), "social_days": len(socialDaily), "prices": len(fund.prices)},
		NewsCoverage:   res.NewsCoverage,
		SocialCoverage: res.SocialCoverage,
	}
	if err := manifest.Write(res.ManifestPath, m); err != nil {
		log.Warnw("manifest write failed", "path", res.ManifestPath, "error", err)
		res.ManifestPath = ""
	}

	log.Infow("run finished", "rows", len(rows), "output", finalPath,
		"news_failed_days", len(res.NewsCoverage.FailedDays),
		"social_failed_communities", len(res.SocialCoverage.FailedCommunities))
	return res, nil
}

func (r *Runner) fetchFundamentals(ctx context.Context, ticker string, start, end time.Time) (*fundamentals, error) {
	ctx, span := r.Tracer.Start(ctx, "fetch.fundamentals")
	defer span.End()

	prices, err := r.Prices.GetPrices(ctx, ticker, start, end)
	if err != nil {
		return nil, fail(span, fmt.Errorf("fetch prices: %w", err))
	}
	caps, err := r.Fundamentals.GetMarketCap(ctx, ticker, start, end)
	if err != nil {
		return nil, fail(span, fmt.Errorf("fetch market cap: %w", err))
	}
	earnings, err := r.Fundamentals.GetDailyEarnings(ctx, ticker, start, end)
	if err != nil {
		return nil, fail(span, fmt.Errorf("fetch earnings: %w", err))
	}
	span.SetAttributes(
		attribute.Int("prices", len(prices)),
		attribute.Int("market_caps", len(caps)),
		attribute.Int("earnings_days", len(earnings)),
	)
	r.Log.Infow("fundamentals fetched", "ticker", ticker, "prices", len(prices), "market_caps", len(caps), "earnings_days", len(earnings))
	return &fundamentals{prices: prices, caps: caps, earnings: earnings}, nil
}

func (r *Runner) collectNews(ctx context.Context, log *logger.Logger, ticker string, start, end time.Time, res *Result) ([]models.DailyRecord, error) {
	ctx, span := r.Tracer.Start(ctx, "collect.news")
	defer span.End()

	articles, cov, err := r.News.News(ctx, ticker, start, end)
	res.NewsCoverage = cov
	if err != nil {
		return nil, fail(span, fmt.Errorf("fetch news: %w", err))
	}
	log.Infow("news fetched", "articles", len(articles), "failed_days", len(cov.FailedDays))
	if len(articles) == 0 {
		return nil, fail(span, fmt.Errorf("%w: no news articles", ErrEmptySource))
	}

	var annotated int
	for i := range articles {
		articles[i].Sentiment = sentiment.Annotate(ctx, r.Annotator, articles[i].Text, r.MaxChars, log)
		if articles[i].Sentiment != nil {
			annotated++
		}
		if err := ctx.Err(); err != nil {
			return nil, fail(span, err)
		}
	}
	log.Infow("news annotated", "articles", len(articles), "with_sentiment", annotated)

	path := export.Path(r.OutputDir, "news", ticker, "news_data", r.Format)
	if err := r.write(ctx, log, path, export.ArticlesTable(articles)); err != nil {
		log.Warnw("news export failed", "error", err)
	} else {
		res.Outputs["news"] = path
	}

	daily := aggregator.DailyStats(aggregator.ArticleItems(articles))
	span.SetAttributes(attribute.Int("articles", len(articles)), attribute.Int("days", len(daily)))
	if len(daily) == 0 {
		return nil, fail(span, fmt.Errorf("%w: no news article has sentiment", ErrEmptySource))
	}
	return daily, nil
}

func (r *Runner) collectSocial(ctx context.Context, log *logger.Logger, ticker string, start, end time.Time, res *Result) ([]models.DailyRecord, error) {
	ctx, span := r.Tracer.Start(ctx, "collect.social")
	defer span.End()

	keyword := r.Keyword
	if keyword == "" {
		keyword = ticker
	}
	posts, cov, err := r.Social.Posts(ctx, keyword, start, end)
	res.SocialCoverage = cov
	if err != nil {
		return nil, fail(span, fmt.Errorf("fetch social posts: %w", err))
	}
	log.Infow("social posts fetched", "keyword", keyword, "posts", len(posts), "failed_communities", cov.FailedCommunities)
	if len(posts) == 0 {
		return nil, fail(span, fmt.Errorf("%w: no social posts", ErrEmptySource))
	}

	var annotated int
	for i := range posts {
		text := posts[i].Title + " " + posts[i].Text
		posts[i].Sentiment = sentiment.Annotate(ctx, r.Annotator, text, r.MaxChars, log)
		if posts[i].Sentiment != nil {
			annotated++
		}
		if err := ctx.Err(); err != nil {
			return nil, fail(span, err)
		}
	}
	log.Infow("social posts annotated", "posts", len(posts), "with_sentiment", annotated)

	path := export.Path(r.OutputDir, "reddit", ticker, "social_data", r.Format)
	if err := r.write(ctx, log, path, export.PostsTable(posts)); err != nil {
		log.Warnw("social export failed", "error", err)
	} else {
		res.Outputs["social"] = path
	}

	daily := aggregator.DailyStats(aggregator.PostItems(posts))
	span.SetAttributes(attribute.Int("posts", len(posts)), attribute.Int("days", len(daily)))
	if len(daily) == 0 {
		return nil, fail(span, fmt.Errorf("%w: no social post has sentiment", ErrEmptySource))
	}
	return daily, nil
}

func (r *Runner) write(ctx context.Context, log *logger.Logger, path string, t export.Table) error {
	_, span := r.Tracer.Start(ctx, "export."+t.Name, trace.WithAttributes(
		attribute.String("path", path),
		attribute.Int("rows", len(t.Rows)),
	))
	defer span.End()

	if err := export.WriteFile(path, t); err != nil {
		return fail(span, err)
	}
	var size uint64
	if fi, err := os.Stat(path); err == nil {
		size = uint64(fi.Size())
	}
	log.Infow("table exported", "table", t.Name, "path", path,
		"rows", humanize.Comma(int64(len(t.Rows))), "size", humanize.Bytes(size))
	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
