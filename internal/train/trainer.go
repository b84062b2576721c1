package train

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/specialistvlad/trainctl/internal/ctxlog"
	"github.com/specialistvlad/trainctl/internal/errdefs"
)

// TrainerArgs are the constructor arguments of the default trainer.
type TrainerArgs struct {
	MaxEpochs      int        `cty:"max_epochs" validate:"gte=1"`
	DefaultRootDir string     `cty:"default_root_dir"`
	LogEveryNSteps int        `cty:"log_every_n_steps" validate:"gte=1"`
	FastDevRun     bool       `cty:"fast_dev_run"`
	Callbacks      []Callback `cty:"callbacks"`
}

// LoopTrainer is the default Trainer: a plain epoch/batch loop.
type LoopTrainer struct {
	maxEpochs  int
	logEvery   int
	fastDevRun bool
	logDir     string
	callbacks  []Callback
}

// NewTrainer builds a LoopTrainer. The log directory is chosen here, as the
// next free <default_root_dir>/logs/version_<N>, and created by Fit.
func NewTrainer(_ context.Context, args *TrainerArgs) (*LoopTrainer, error) {
	root := args.DefaultRootDir
	if root == "" {
		root = "."
	}
	logDir, err := nextVersionDir(filepath.Join(root, "logs"))
	if err != nil {
		return nil, err
	}
	logEvery := args.LogEveryNSteps
	if logEvery < 1 {
		logEvery = 1
	}
	return &LoopTrainer{
		maxEpochs:  args.MaxEpochs,
		logEvery:   logEvery,
		fastDevRun: args.FastDevRun,
		logDir:     logDir,
		callbacks:  append([]Callback(nil), args.Callbacks...),
	}, nil
}

func nextVersionDir(parent string) (string, error) {
	entries, err := os.ReadDir(parent)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("listing %s: %w", parent, err)
	}
	next := 0
	for _, e := range entries {
		n, ok := strings.CutPrefix(e.Name(), "version_")
		if !ok || !e.IsDir() {
			continue
		}
		if v, err := strconv.Atoi(n); err == nil && v >= next {
			next = v + 1
		}
	}
	return filepath.Join(parent, "version_"+strconv.Itoa(next)), nil
}

func (t *LoopTrainer) LogDir() string { return t.logDir }

func (t *LoopTrainer) Callbacks() []Callback { return t.callbacks }

// Fit trains m on the batches of dm, or on the model's own batches when dm is
// nil. With fast_dev_run set only one batch of one epoch runs.
func (t *LoopTrainer) Fit(ctx context.Context, m Model, dm DataModule) (*RunResult, error) {
	logger := ctxlog.FromContext(ctx)

	batches, err := t.batches(ctx, m, dm)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(t.logDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	res := &RunResult{RunID: uuid.NewString(), LogDir: t.logDir}
	logger.Info("Training started.", "run_id", res.RunID, "log_dir", t.logDir, "batches", len(batches))

	for _, cb := range t.callbacks {
		if err := cb.OnTrainStart(ctx, t, m); err != nil {
			return nil, fmt.Errorf("callback %T: %w", cb, err)
		}
	}

	epochs := t.maxEpochs
	if t.fastDevRun {
		epochs = 1
		batches = batches[:1]
	}

	for epoch := 0; epoch < epochs && !res.Stopped; epoch++ {
		var total float64
		for _, b := range batches {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			loss, err := m.TrainingStep(ctx, b)
			if err != nil {
				return nil, fmt.Errorf("epoch %d step %d: %w", epoch, res.Steps, err)
			}
			res.Steps++
			total += loss
			if res.Steps%t.logEvery == 0 {
				logger.Debug("Training step.", "epoch", epoch, "step", res.Steps, "loss", loss)
			}
		}
		res.Epochs++
		res.Loss = total / float64(len(batches))

		for _, cb := range t.callbacks {
			hook, ok := cb.(EpochEndCallback)
			if !ok {
				continue
			}
			err := hook.OnEpochEnd(ctx, t, m, epoch, res.Loss)
			switch {
			case errors.Is(err, ErrStopTraining):
				logger.Info("Training stopped by callback.", "callback", fmt.Sprintf("%T", cb), "epoch", epoch)
				res.Stopped = true
			case err != nil:
				return nil, fmt.Errorf("callback %T: %w", cb, err)
			}
		}
	}

	for _, cb := range t.callbacks {
		if hook, ok := cb.(TrainEndCallback); ok {
			if err := hook.OnTrainEnd(ctx, t, m, res); err != nil {
				return nil, fmt.Errorf("callback %T: %w", cb, err)
			}
		}
	}

	logger.Info("Training finished.", "run_id", res.RunID, "epochs", res.Epochs, "steps", res.Steps, "loss", res.Loss)
	return res, nil
}

func (t *LoopTrainer) batches(ctx context.Context, m Model, dm DataModule) ([]Batch, error) {
	if dm != nil {
		if err := dm.Setup(ctx); err != nil {
			return nil, fmt.Errorf("data setup: %w", err)
		}
		if b := dm.TrainBatches(); len(b) > 0 {
			return b, nil
		}
		return nil, fmt.Errorf("%w: data module produced no batches", errdefs.ErrState)
	}
	if src, ok := m.(BatchSource); ok && len(src.TrainBatches()) > 0 {
		return src.TrainBatches(), nil
	}
	return nil, fmt.Errorf("%w: no data module given and the model has no training batches", errdefs.ErrState)
}
