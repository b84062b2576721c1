package train

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/trainctl/internal/ctxlog"
	"github.com/specialistvlad/trainctl/internal/errdefs"
)

// ProgressLogger logs the start, every epoch and the end of a run.
type ProgressLogger struct{}

func (ProgressLogger) OnTrainStart(ctx context.Context, tr Trainer, _ Model) error {
	ctxlog.FromContext(ctx).Info("Run starting.", "log_dir", tr.LogDir(), "callbacks", len(tr.Callbacks()))
	return nil
}

func (ProgressLogger) OnEpochEnd(ctx context.Context, _ Trainer, _ Model, epoch int, loss float64) error {
	ctxlog.FromContext(ctx).Info("Epoch finished.", "epoch", epoch, "loss", loss)
	return nil
}

func (ProgressLogger) OnTrainEnd(ctx context.Context, _ Trainer, _ Model, res *RunResult) error {
	ctxlog.FromContext(ctx).Info("Run finished.", "epochs", res.Epochs, "steps", res.Steps, "stopped", res.Stopped)
	return nil
}

// EarlyStopping stops the run once the epoch loss has not improved by more
// than MinDelta for Patience consecutive epochs.
type EarlyStopping struct {
	Patience int
	MinDelta float64

	best  float64
	waits int
}

func (e *EarlyStopping) OnTrainStart(context.Context, Trainer, Model) error {
	e.best = math.Inf(1)
	e.waits = 0
	return nil
}

func (e *EarlyStopping) OnEpochEnd(ctx context.Context, _ Trainer, _ Model, epoch int, loss float64) error {
	if loss < e.best-e.MinDelta {
		e.best = loss
		e.waits = 0
		return nil
	}
	e.waits++
	if e.waits >= e.Patience {
		ctxlog.FromContext(ctx).Debug("Early stopping.", "epoch", epoch, "best", e.best, "patience", e.Patience)
		return ErrStopTraining
	}
	return nil
}

// MetricsExporter records run metrics in a Prometheus registry and writes
// them in text exposition format to <log dir>/<Filename> when the run ends.
type MetricsExporter struct {
	Filename string

	registry *prometheus.Registry
	loss     prometheus.Gauge
	epochs   prometheus.Counter
	steps    prometheus.Gauge
}

func (m *MetricsExporter) OnTrainStart(_ context.Context, _ Trainer, _ Model) error {
	m.registry = prometheus.NewRegistry()
	m.loss = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trainctl_epoch_loss",
		Help: "Mean training loss of the last finished epoch.",
	})
	m.epochs = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trainctl_epochs_total",
		Help: "Number of finished epochs.",
	})
	m.steps = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trainctl_steps",
		Help: "Number of optimisation steps taken in the run.",
	})
	for _, c := range []prometheus.Collector{m.loss, m.epochs, m.steps} {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *MetricsExporter) OnEpochEnd(_ context.Context, _ Trainer, _ Model, _ int, loss float64) error {
	if m.registry == nil {
		return fmt.Errorf("%w: metrics exporter used before the run started", errdefs.ErrState)
	}
	m.loss.Set(loss)
	m.epochs.Inc()
	return nil
}

func (m *MetricsExporter) OnTrainEnd(ctx context.Context, tr Trainer, _ Model, res *RunResult) error {
	if m.registry == nil {
		return fmt.Errorf("%w: metrics exporter used before the run started", errdefs.ErrState)
	}
	m.steps.Set(float64(res.Steps))
	path := filepath.Join(tr.LogDir(), m.Filename)
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Metrics written.", "path", path)
	return nil
}
