package trainer

import (
	"context"

	"github.com/specialistvlad/trainctl/internal/registry"
	"github.com/specialistvlad/trainctl/internal/schema"
	"github.com/specialistvlad/trainctl/internal/train"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// EarlyStoppingArgs defines the arguments for the EarlyStopping callback.
type EarlyStoppingArgs struct {
	Patience int     `cty:"patience" validate:"gte=0"`
	MinDelta float64 `cty:"min_delta" validate:"gte=0"`
}

// MetricsExporterArgs defines the arguments for the MetricsExporter callback.
type MetricsExporterArgs struct {
	Filename string `cty:"filename" validate:"required"`
}

// ProgressLoggerArgs is empty because the callback takes no arguments.
type ProgressLoggerArgs struct{}

var trainerParams = []*schema.Param{
	{Name: "max_epochs", Type: cty.Number, Default: schema.Default(cty.NumberIntVal(10)), Description: "Number of passes over the training batches."},
	{Name: "default_root_dir", Type: cty.String, Default: schema.Default(cty.StringVal(".")), Description: "Directory under which logs/version_<N> is created."},
	{Name: "log_every_n_steps", Type: cty.Number, Default: schema.Default(cty.NumberIntVal(50)), Description: "Interval of per-step debug logs."},
	{Name: "fast_dev_run", Type: cty.Bool, Default: schema.Default(cty.False), Description: "Run a single batch of a single epoch."},
	{Name: "callbacks", Subclass: train.KindCallback, Multiple: true, Optional: true, Description: "Callbacks observing the run."},
}

// Register registers the trainer and callback classes.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass(registry.NewClass("Trainer", "Epoch/batch training loop.", trainerParams, train.NewTrainer))

	r.RegisterClass(registry.NewClass("ProgressLogger", "Logs run progress.", nil,
		func(context.Context, *ProgressLoggerArgs) (train.ProgressLogger, error) {
			return train.ProgressLogger{}, nil
		}))

	r.RegisterClass(registry.NewClass("EarlyStopping", "Stops when the epoch loss stops improving.", []*schema.Param{
		{Name: "patience", Type: cty.Number, Default: schema.Default(cty.NumberIntVal(3))},
		{Name: "min_delta", Type: cty.Number, Default: schema.Default(cty.NumberIntVal(0))},
	}, func(_ context.Context, args *EarlyStoppingArgs) (*train.EarlyStopping, error) {
		return &train.EarlyStopping{Patience: args.Patience, MinDelta: args.MinDelta}, nil
	}))

	r.RegisterClass(registry.NewClass("MetricsExporter", "Writes run metrics in Prometheus text format.", []*schema.Param{
		{Name: "filename", Type: cty.String, Default: schema.Default(cty.StringVal("metrics.prom"))},
	}, func(_ context.Context, args *MetricsExporterArgs) (*train.MetricsExporter, error) {
		return &train.MetricsExporter{Filename: args.Filename}, nil
	}))
}
