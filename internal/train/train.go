package train

import (
	"context"
	"errors"
)

// Capability kinds under which classes are registered.
const (
	KindTrainer    = "trainer"
	KindModel      = "model"
	KindDataModule = "data"
	KindCallback   = "callback"
	KindOptimizer  = "optimizer"
)

// ErrStopTraining is returned by a callback hook to end the run after the
// current epoch. It is not reported as a failure.
var ErrStopTraining = errors.New("stop training")

// Batch is one minibatch of inputs X and targets Y.
type Batch struct {
	X [][]float64
	Y []float64
}

// Model is trained one batch at a time. TrainingStep updates the model and
// returns the batch loss.
type Model interface {
	TrainingStep(ctx context.Context, b Batch) (float64, error)
}

// BatchSource is implemented by models that carry their own training data
// and can be fit without a DataModule.
type BatchSource interface {
	TrainBatches() []Batch
}

// DataModule supplies training batches.
type DataModule interface {
	Setup(ctx context.Context) error
	TrainBatches() []Batch
}

// Callback observes a run. OnTrainStart is called once, before the first
// batch.
type Callback interface {
	OnTrainStart(ctx context.Context, tr Trainer, m Model) error
}

// EpochEndCallback is an optional Callback extension.
type EpochEndCallback interface {
	OnEpochEnd(ctx context.Context, tr Trainer, m Model, epoch int, loss float64) error
}

// TrainEndCallback is an optional Callback extension, called once the loop
// has finished without error.
type TrainEndCallback interface {
	OnTrainEnd(ctx context.Context, tr Trainer, m Model, res *RunResult) error
}

// Trainer runs the training loop.
type Trainer interface {
	// LogDir is where run artifacts are written. It is known before Fit.
	LogDir() string
	Callbacks() []Callback
	Fit(ctx context.Context, m Model, dm DataModule) (*RunResult, error)
}

// Optimizer updates params in place from their gradients.
type Optimizer interface {
	Step(params, grads []float64, lr float64)
}

// RunResult summarises a finished run.
type RunResult struct {
	RunID   string
	LogDir  string
	Epochs  int
	Steps   int
	Loss    float64
	Stopped bool
}
