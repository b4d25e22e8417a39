package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/estimator"
	"TrendSentinel/internal/history"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/render"
	"TrendSentinel/internal/scheduler"
	"TrendSentinel/internal/telemetry"
)

func init() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load(".env")
}

var demoDatasets = []struct {
	Name   string
	Closes model.PriceWindow
}{
	{"Rising Stock", model.PriceWindow{100, 102, 104, 106, 108, 110, 112}},
	{"Volatile Stock", model.PriceWindow{100, 95, 105, 98, 107, 102, 109}},
	{"Falling Stock", model.PriceWindow{120, 118, 115, 113, 110, 108, 105}},
}

func main() {
	var (
		cfgPath = flag.String("config", "", "path to config file (default configs/config.yaml)")
		symbol  = flag.String("symbol", "", "override the configured symbol")
		window  = flag.String("window", "", "run once on a comma-separated list of 7 closes and exit")
		demo    = flag.Bool("demo", false, "run the built-in demo datasets and exit")
		daemon  = flag.Bool("daemon", false, "keep running on the configured schedule")
	)
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.Info("TrendSentinel starting...")

	path := *cfgPath
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	}
	if *symbol != "" {
		cfg.Symbol = *symbol
	}

	shutdownTracing, err := telemetry.Init(cfg.Telemetry.Enabled)
	if err != nil {
		log.Fatalf("init telemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warnf("telemetry shutdown: %v", err)
		}
	}()

	switch {
	case *demo:
		runDemo(cfg)
	case *window != "":
		runInline(cfg, *window)
	default:
		runPipeline(cfg, path, *daemon)
	}
}

func estimatorParams(cfg *config.Config) estimator.Params {
	return estimator.Params{
		Weights: estimator.Weights{
			Forward:  cfg.Estimator.ForwardWeight,
			Backward: cfg.Estimator.BackwardWeight,
			Central:  cfg.Estimator.CentralWeight,
		},
		VarianceCap: cfg.Estimator.VarianceCap,
	}
}

// runDemo predicts over the built-in datasets and prints each report.
func runDemo(cfg *config.Config) {
	params := estimatorParams(cfg)
	for _, ds := range demoDatasets {
		pred, err := estimator.Predict(ds.Closes, params)
		if err != nil {
			log.Fatalf("demo %s: %v", ds.Name, err)
		}
		fmt.Println(render.Report(ds.Name, ds.Closes, pred))
		fmt.Println()
		if !cfg.Output.NoChart {
			path, err := render.Chart(ds.Closes, pred, ds.Name, cfg.Output.ChartDir)
			if err != nil {
				log.Warnf("demo chart: %v", err)
				continue
			}
			log.Infof("chart written: %s", path)
		}
	}
}

// runInline predicts once over closes passed on the command line.
func runInline(cfg *config.Config, raw string) {
	parts := strings.Split(raw, ",")
	closes := make(model.PriceWindow, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			log.Fatalf("parse window value %q: %v", p, err)
		}
		closes = append(closes, v)
	}

	pred, err := estimator.Predict(closes, estimatorParams(cfg))
	if err != nil {
		log.Fatalf("predict: %v", err)
	}
	fmt.Println(render.Report(cfg.Symbol, closes, pred))
}

func runPipeline(cfg *config.Config, cfgPath string, daemon bool) {
	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "file":
		fetcher = collector.NewFileFetcher(cfg.DataSource.CSVPath)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Infof("data source: %s, symbol: %s", fetcher.Name(), cfg.Symbol)

	col := collector.NewCollector(fetcher, cfg.Symbol)

	// Init history tracker
	tracker, err := history.NewTracker(cfg.History.StateFile)
	if err != nil {
		log.Fatalf("init history tracker: %v", err)
	}
	if state := tracker.State(); state.TotalRuns > 0 {
		log.Infof("last run for %s at %s: predicted %.2f (%.1f%% confidence), %d runs total",
			state.LastSymbol, state.LastRunAt.Format("2006-01-02 15:04"),
			state.LastPredicted, state.LastConfidence, state.TotalRuns)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, tracker, rec, scheduler.Options{
		Params:   estimatorParams(cfg),
		ChartDir: cfg.Output.ChartDir,
		NoChart:  cfg.Output.NoChart,
	})

	if !daemon {
		sched.RunPredictionNow()
		return
	}

	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.WeeklyCron); err != nil {
		log.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Hot-reload estimator tuning on config edits
	go func() {
		if err := config.Watch(ctx, cfgPath, func(next *config.Config) {
			sched.UpdateParams(estimatorParams(next))
		}); err != nil {
			log.Warnf("config watch: %v", err)
		}
	}()

	if cfg.Schedule.RunOnStart {
		log.Info("run_on_start enabled, executing prediction now")
		go sched.RunPredictionNow()
	}

	log.Info("TrendSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	cancel()
	log.Info("TrendSentinel stopped")
}
