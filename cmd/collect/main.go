package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bighogz/sentiment-features/internal/calendar"
	"github.com/bighogz/sentiment-features/internal/config"
	"github.com/bighogz/sentiment-features/internal/fmp"
	"github.com/bighogz/sentiment-features/internal/httpclient"
	"github.com/bighogz/sentiment-features/internal/logger"
	"github.com/bighogz/sentiment-features/internal/models"
	"github.com/bighogz/sentiment-features/internal/pipeline"
	"github.com/bighogz/sentiment-features/internal/reddit"
	"github.com/bighogz/sentiment-features/internal/sentiment"
	"github.com/bighogz/sentiment-features/internal/telemetry"
	"github.com/bighogz/sentiment-features/internal/universe"
	"github.com/bighogz/sentiment-features/internal/yahoo"
)

func main() {
	ticker := flag.String("ticker", "AAPL", "Ticker symbol")
	fromStr := flag.String("from", "2025-02-09", "First day YYYY-MM-DD")
	toStr := flag.String("to", "2025-06-09", "Last day YYYY-MM-DD")
	flag.Parse()

	if err := run(strings.ToUpper(strings.TrimSpace(*ticker)), *fromStr, *toStr); err != nil {
		logger.Get().Errorw("collect failed", "error", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(ticker, fromStr, toStr string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "Could not init logger: %v\n", err)
	}
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if ticker == "" {
		return errors.New("-ticker is required")
	}
	start, err := calendar.Parse(fromStr)
	if err != nil {
		return fmt.Errorf("invalid -from: %w", err)
	}
	end, err := calendar.Parse(toStr)
	if err != nil {
		return fmt.Errorf("invalid -to: %w", err)
	}

	shutdown, err := telemetry.Init(cfg.Trace)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Warnw("trace shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := httpclient.New(cfg.Fetch.HTTPTimeout)

	fmpClient := fmp.New(cfg.Credentials, fmp.WithHTTPClient(h), fmp.WithLogger(log.With("source", "fmp")))
	redditClient, err := reddit.New(cfg.Credentials, reddit.WithHTTPClient(h), reddit.WithLogger(log.With("source", "reddit")))
	if err != nil {
		return err
	}

	var prices pipeline.PriceSource = fmpClient
	if cfg.Fetch.PriceSource == "yahoo" {
		yc, err := yahoo.New(yahoo.WithTimeout(cfg.Fetch.HTTPTimeout), yahoo.WithLogger(log.With("source", "yahoo")))
		if err != nil {
			return err
		}
		defer yc.Close()
		prices = yc
	}

	annotator, err := sentiment.New(ctx, cfg.Sentiment, h)
	if err != nil {
		return fmt.Errorf("sentiment backend: %w", err)
	}
	if c, ok := annotator.(io.Closer); ok {
		defer c.Close()
	}
	log.Infow("sentiment backend ready", "backend", cfg.Sentiment.Backend, "model", cfg.Sentiment.Model)

	keyword := cfg.Fetch.SocialKeyword
	if keyword == "" && cfg.Fetch.SocialUseCompanyName {
		keyword = companyKeyword(ctx, log, h, ticker)
	}

	fetch := cfg.Fetch
	runner := &pipeline.Runner{
		News: pipeline.NewsFunc(func(ctx context.Context, ticker string, start, end time.Time) ([]models.Article, models.Coverage, error) {
			return fmpClient.GetNews(ctx, ticker, start, end, fmp.NewsOptions{
				LimitPerDay: fetch.NewsLimitPerDay,
				Delay:       fetch.NewsDelay,
				WindowDays:  fetch.NewsWindowDays,
			})
		}),
		Social: pipeline.SocialFunc(func(ctx context.Context, keyword string, start, end time.Time) ([]models.Post, models.Coverage, error) {
			return redditClient.GetDailyPosts(ctx, keyword, fetch.Subreddits, start, end, reddit.PostOptions{
				PostsPerDay: fetch.SocialPostsPerDay,
				SearchLimit: fetch.SocialSearchLimit,
				Delay:       fetch.SocialDelay,
			})
		}),
		Prices:       prices,
		Fundamentals: fmpClient,
		Annotator:    annotator,
		Keyword:      keyword,
		MaxChars:     cfg.Sentiment.MaxChars,
		OutputDir:    cfg.Export.OutputDir,
		Format:       cfg.Export.Format,
		Log:          log,
		Tracer:       telemetry.Tracer(),
	}

	res, err := runner.Run(ctx, ticker, start, end)
	if err != nil {
		return err
	}

	fmt.Printf("\nRun %s: %d daily rows for %s (%s to %s).\n", res.RunID, len(res.Features), ticker, calendar.Format(start), calendar.Format(end))
	for _, name := range []string{"news", "social", "features"} {
		if p, ok := res.Outputs[name]; ok {
			fmt.Printf("  %-8s %s\n", name, p)
		}
	}
	if res.ManifestPath != "" {
		fmt.Printf("  %-8s %s\n", "manifest", res.ManifestPath)
	}
	if !res.NewsCoverage.Complete() {
		fmt.Printf("News incomplete: %d of %d days failed.\n", len(res.NewsCoverage.FailedDays), res.NewsCoverage.Requested)
	}
	if !res.SocialCoverage.Complete() {
		fmt.Printf("Social incomplete: failed communities %s.\n", strings.Join(res.SocialCoverage.FailedCommunities, ", "))
	}
	return nil
}

// companyKeyword falls back to the ticker when the constituents list is
// unavailable or does not carry the symbol.
func companyKeyword(ctx context.Context, log *logger.Logger, h *http.Client, ticker string) string {
	companies, err := universe.Load(ctx, h, universe.DefaultCSVURL)
	if err != nil {
		log.Warnw("company list unavailable, searching by ticker", "error", err)
		return ""
	}
	c, ok := universe.Lookup(companies, ticker)
	if !ok {
		log.Warnw("ticker not in company list, searching by ticker", "ticker", ticker)
		return ""
	}
	name := universe.ShortName(c.Name)
	log.Infow("social keyword resolved", "ticker", ticker, "company", c.Name, "keyword", name)
	return name
}
