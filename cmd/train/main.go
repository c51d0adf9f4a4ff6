package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bighogz/sentiment-features/internal/config"
	"github.com/bighogz/sentiment-features/internal/export"
	"github.com/bighogz/sentiment-features/internal/logger"
	"github.com/bighogz/sentiment-features/internal/manifest"
	"github.com/bighogz/sentiment-features/internal/regression"
)

func main() {
	input := flag.String("input", "", "Final feature table (xlsx, csv or sqlite)")
	ticker := flag.String("ticker", "", "Locate the final table through the run manifest")
	testFraction := flag.Float64("test-fraction", regression.DefaultTestFraction, "Held-out share of rows")
	seed := flag.Int64("seed", regression.DefaultSeed, "Shuffle seed")
	maxAge := flag.Duration("max-age", 0, "Reject manifests older than this (0 disables)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "Could not init logger: %v\n", err)
	}
	log := logger.Get()
	defer logger.Sync()

	path := *input
	if path == "" {
		if *ticker == "" {
			fmt.Fprintln(os.Stderr, "Either -input or -ticker is required.")
			os.Exit(1)
		}
		m, err := manifest.Read(manifest.Path(cfg.Export.OutputDir, strings.ToUpper(*ticker)), *maxAge)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not read manifest: %v\n", err)
			os.Exit(1)
		}
		path = m.Outputs["features"]
		if path == "" {
			fmt.Fprintf(os.Stderr, "Run %s did not write a final table.\n", m.RunID)
			os.Exit(1)
		}
		log.Infow("final table located", "run_id", m.RunID, "path", path, "written_at", m.WrittenAt.Format(time.RFC3339))
	}

	table, err := export.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read %s: %v\n", path, err)
		os.Exit(1)
	}

	report, err := regression.Train(table, regression.Features, *testFraction, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Training failed: %v\n", err)
		os.Exit(1)
	}
	if report.Model.Condition != 0 {
		log.Warnw("design matrix is ill-conditioned", "condition", report.Model.Condition)
	}
	log.Infow("model trained", "train_rows", report.NTrain, "test_rows", report.NTest, "r2", report.R2, "rmse", report.RMSE)

	fmt.Printf("\nOLS on %s (%d train, %d test rows)\n", path, report.NTrain, report.NTest)
	fmt.Printf("  R^2   %.4f\n", report.R2)
	fmt.Printf("  RMSE  %.6f\n", report.RMSE)
	fmt.Printf("  %-20s %12.6g\n", "intercept", report.Model.Intercept)
	for i, f := range report.Model.Features {
		fmt.Printf("  %-20s %12.6g\n", f, report.Model.Coefficients[i])
	}

	ext := filepath.Ext(path)
	out := strings.TrimSuffix(path, ext) + "_predictions" + ext
	if err := export.WriteFile(out, report.PredictionsTable()); err != nil {
		log.Warnw("predictions export failed", "path", out, "error", err)
		return
	}
	fmt.Printf("\nWrote %s.\n", out)
}
