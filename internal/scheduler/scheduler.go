package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/estimator"
	"TrendSentinel/internal/history"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/render"
	"TrendSentinel/internal/telemetry"
)

// Scheduler manages the cron tasks driving the prediction pipeline.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Tracker   *history.Tracker
	Recorder  recorder.Recorder
	Ctx       context.Context

	mu       sync.Mutex
	params   estimator.Params
	chartDir string
	noChart  bool
}

// Options carries the pipeline tuning the scheduler applies per run.
type Options struct {
	Params   estimator.Params
	ChartDir string
	NoChart  bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, tracker *history.Tracker, rec recorder.Recorder, opts Options) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		Collector: col,
		Tracker:   tracker,
		Recorder:  rec,
		Ctx:       ctx,
		params:    opts.Params,
		chartDir:  opts.ChartDir,
		noChart:   opts.NoChart,
	}
}

// RegisterAll registers the daily prediction and weekly digest tasks.
func (s *Scheduler) RegisterAll(dailyCron, weeklyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.predictionTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(weeklyCron, s.digestTask); err != nil {
		return fmt.Errorf("register weekly digest: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info("scheduler stopped")
}

// UpdateParams swaps the estimator tuning used by subsequent runs.
func (s *Scheduler) UpdateParams(p estimator.Params) {
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	log.Infof("estimator tuning updated: weights %.2f/%.2f/%.2f, cap %.1f",
		p.Weights.Forward, p.Weights.Backward, p.Weights.Central, p.VarianceCap)
}

func (s *Scheduler) currentParams() estimator.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// RunPredictionNow executes the prediction task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunPredictionNow() {
	s.predictionTask()
}

// RunDigestNow executes the digest task immediately.
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) predictionTask() {
	log.Info("running daily prediction")

	ctx, span := telemetry.Tracer().Start(s.Ctx, "daily_prediction")
	defer span.End()

	window, err := s.collectWindow(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "collect failed")
		span.RecordError(err)
		log.Errorf("daily collect: %v", err)
		return
	}

	pred, err := s.estimate(ctx, window)
	if err != nil {
		span.SetStatus(codes.Error, "estimate failed")
		span.RecordError(err)
		log.Errorf("daily estimate: %v", err)
		return
	}

	span.SetAttributes(
		attribute.String("symbol", s.Collector.Symbol),
		attribute.Float64("predicted", pred.Predicted),
		attribute.Float64("confidence", pred.Confidence),
	)

	chartPath := s.renderOutputs(ctx, window, pred)
	s.recordRun(ctx, window, pred, chartPath)

	s.Tracker.MarkRun(s.Collector.Symbol, pred, time.Now())
}

func (s *Scheduler) digestTask() {
	log.Info("running weekly digest")

	records, err := s.Recorder.RecentPredictions(10)
	if err != nil {
		log.Errorf("digest query: %v", err)
		return
	}
	log.Info("\n" + render.Digest(records, s.Tracker.State()))
}

func (s *Scheduler) collectWindow(ctx context.Context) (model.PriceWindow, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "collect")
	defer span.End()

	window, err := s.Collector.Collect(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return window, nil
}

func (s *Scheduler) estimate(ctx context.Context, window model.PriceWindow) (*model.Prediction, error) {
	_, span := telemetry.Tracer().Start(ctx, "estimate")
	defer span.End()

	pred, err := estimator.Predict(window, s.currentParams())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return pred, nil
}

func (s *Scheduler) renderOutputs(ctx context.Context, window model.PriceWindow, pred *model.Prediction) string {
	_, span := telemetry.Tracer().Start(ctx, "render")
	defer span.End()

	log.Info("\n" + render.Report(s.Collector.Symbol, window, pred))

	if s.noChart {
		return ""
	}
	path, err := render.Chart(window, pred, s.Collector.Symbol, s.chartDir)
	if err != nil {
		span.RecordError(err)
		log.Warnf("chart render: %v", err)
		return ""
	}
	return path
}

func (s *Scheduler) recordRun(ctx context.Context, window model.PriceWindow, pred *model.Prediction, chartPath string) {
	_, span := telemetry.Tracer().Start(ctx, "record")
	defer span.End()

	rec := &model.PredictionRecord{
		Time:       time.Now(),
		Symbol:     s.Collector.Symbol,
		Closes:     window,
		Forward:    pred.Diffs.Forward,
		Backward:   pred.Diffs.Backward,
		Central:    pred.Diffs.Central,
		Slope:      pred.Slope,
		Predicted:  pred.Predicted,
		Confidence: pred.Confidence,
		ChartPath:  chartPath,
	}
	if err := s.Recorder.RecordPrediction(rec); err != nil {
		span.RecordError(err)
		log.Errorf("record prediction: %v", err)
	}
}
