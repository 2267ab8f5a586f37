package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quantmex/mxlib/calendar"
	"github.com/quantmex/mxlib/config"
	"github.com/quantmex/mxlib/marketdata/banxico"
	"github.com/quantmex/mxlib/store"
	"github.com/quantmex/mxlib/timeseries"
)

var (
	cfgPath string
	dryRun  bool
)

func main() {
	root := &cobra.Command{
		Use:   "curveupdater",
		Short: "Fetch the Banxico bond vector and persist bootstrapped zero curves",
		Long: "curveupdater pulls the on-the-run government instrument vector from the " +
			"Banxico SIE API, bootstraps one zero curve per valuation date, and upserts " +
			"the results into the zero_curves table. The fetch window resumes from the " +
			"last persisted date.",
		RunE: run,
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path (YAML)")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "fetch and bootstrap but skip the database write")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// missing .env is fine; env vars may come from the environment proper
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging)

	if cfg.Banxico.Token == "" {
		return fmt.Errorf("banxico token is required (set BANXICO_TOKEN)")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var st *store.CurveStore
	if !dryRun {
		if cfg.Database.URL == "" {
			return fmt.Errorf("database url is required (set DATABASE_URL)")
		}
		st, err = store.Open(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Init(ctx); err != nil {
			return err
		}
	}

	start, err := windowStart(ctx, st, cfg.Curve)
	if err != nil {
		return err
	}
	end := calendar.PreviousBusinessDay(time.Now())
	if end.Before(start) {
		logger.WithFields(logrus.Fields{
			"start": start.Format("2006-01-02"),
			"end":   end.Format("2006-01-02"),
		}).Info("nothing to update")
		return nil
	}

	logger.WithFields(logrus.Fields{
		"start": start.Format("2006-01-02"),
		"end":   end.Format("2006-01-02"),
	}).Info("fetching Banxico instrument vector")

	client := banxico.Client{
		BaseURL:  cfg.Banxico.BaseURL,
		Token:    cfg.Banxico.Token,
		Logger:   logger,
		MaxChunk: cfg.Banxico.MaxChunk,
	}
	series, err := client.FetchSeries(ctx, banxico.AllSeriesIDs(), start, end)
	if err != nil {
		return err
	}
	obs := banxico.SnapshotRows(banxico.Flatten(series))
	logger.WithField("rows", len(obs)).Info("snapshot rows assembled")

	policy := timeseries.FailBatch
	if cfg.Curve.SkipFailedDates {
		policy = timeseries.SkipDate
	}
	orch := timeseries.Orchestrator{
		UniqueIdentifier: cfg.Curve.UniqueIdentifier,
		Logger:           logger,
		Workers:          cfg.Curve.Workers,
		OnError:          policy,
	}
	ts, err := orch.BuildCurves(obs)
	if err != nil {
		return err
	}
	logger.WithField("dates", ts.Len()).Info("curves bootstrapped")

	if dryRun {
		logger.Info("dry run; skipping database write")
		return nil
	}

	n, err := st.SaveCurves(ctx, ts)
	if err != nil {
		return err
	}
	logger.WithField("rows", n).Info("curves persisted")
	return nil
}

// windowStart resumes one day after the last persisted curve, falling back to
// the configured start date on a cold store.
func windowStart(ctx context.Context, st *store.CurveStore, cfg config.CurveConfig) (time.Time, error) {
	if st != nil {
		last, ok, err := st.LastTimeIndex(ctx, cfg.UniqueIdentifier)
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			return last.AddDate(0, 0, 1), nil
		}
	}
	start, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid curve.start_date %q: %v", cfg.StartDate, err)
	}
	return start, nil
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(lvl)
	}
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
