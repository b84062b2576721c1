package train

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/trainctl/internal/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingModel returns a fixed sequence of losses, cycling per step.
type countingModel struct {
	losses  []float64
	steps   int
	batches []Batch
	fail    error
}

func (m *countingModel) TrainingStep(_ context.Context, _ Batch) (float64, error) {
	if m.fail != nil {
		return 0, m.fail
	}
	loss := m.losses[m.steps%len(m.losses)]
	m.steps++
	return loss, nil
}

func (m *countingModel) TrainBatches() []Batch { return m.batches }

type staticData struct {
	batches []Batch
	setup   int
}

func (d *staticData) Setup(context.Context) error { d.setup++; return nil }

func (d *staticData) TrainBatches() []Batch { return d.batches }

// recorder captures every hook invocation.
type recorder struct {
	events []string
	logDir string
	stopAt int
}

func (r *recorder) OnTrainStart(_ context.Context, tr Trainer, _ Model) error {
	r.events = append(r.events, "start")
	r.logDir = tr.LogDir()
	return nil
}

func (r *recorder) OnEpochEnd(_ context.Context, _ Trainer, _ Model, epoch int, _ float64) error {
	r.events = append(r.events, "epoch")
	if r.stopAt > 0 && epoch+1 == r.stopAt {
		return ErrStopTraining
	}
	return nil
}

func (r *recorder) OnTrainEnd(_ context.Context, _ Trainer, _ Model, _ *RunResult) error {
	r.events = append(r.events, "end")
	return nil
}

func twoBatches() []Batch {
	return []Batch{
		{X: [][]float64{{1}}, Y: []float64{1}},
		{X: [][]float64{{2}}, Y: []float64{2}},
	}
}

func newTestTrainer(t *testing.T, args TrainerArgs) *LoopTrainer {
	t.Helper()
	if args.DefaultRootDir == "" {
		args.DefaultRootDir = t.TempDir()
	}
	tr, err := NewTrainer(context.Background(), &args)
	require.NoError(t, err)
	return tr
}

func TestLoopTrainer_Fit(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	rec := &recorder{}
	tr := newTestTrainer(t, TrainerArgs{MaxEpochs: 3, LogEveryNSteps: 1, Callbacks: []Callback{rec}})
	data := &staticData{batches: twoBatches()}
	model := &countingModel{losses: []float64{1, 3}}

	// --- Act ---
	res, err := tr.Fit(context.Background(), model, data)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 3, res.Epochs)
	assert.Equal(t, 6, res.Steps)
	assert.InDelta(t, 2.0, res.Loss, 1e-9)
	assert.False(t, res.Stopped)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, tr.LogDir(), res.LogDir)
	assert.Equal(t, tr.LogDir(), rec.logDir)
	assert.Equal(t, []string{"start", "epoch", "epoch", "epoch", "end"}, rec.events)
	assert.Equal(t, 1, data.setup)
	assert.DirExists(t, tr.LogDir())
}

func TestLoopTrainer_UsesModelBatchesWithoutData(t *testing.T) {
	t.Parallel()
	tr := newTestTrainer(t, TrainerArgs{MaxEpochs: 1})
	model := &countingModel{losses: []float64{0.5}, batches: twoBatches()}

	res, err := tr.Fit(context.Background(), model, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Steps)
}

func TestLoopTrainer_NoBatches(t *testing.T) {
	t.Parallel()
	tr := newTestTrainer(t, TrainerArgs{MaxEpochs: 1})

	_, err := tr.Fit(context.Background(), &countingModel{losses: []float64{1}}, nil)

	assert.ErrorIs(t, err, errdefs.ErrState)
	assert.NoDirExists(t, tr.LogDir())
}

func TestLoopTrainer_FastDevRun(t *testing.T) {
	t.Parallel()
	tr := newTestTrainer(t, TrainerArgs{MaxEpochs: 10, FastDevRun: true})

	res, err := tr.Fit(context.Background(), &countingModel{losses: []float64{1}}, &staticData{batches: twoBatches()})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Epochs)
	assert.Equal(t, 1, res.Steps)
}

func TestLoopTrainer_StopTraining(t *testing.T) {
	t.Parallel()
	rec := &recorder{stopAt: 2}
	tr := newTestTrainer(t, TrainerArgs{MaxEpochs: 10, Callbacks: []Callback{rec}})

	res, err := tr.Fit(context.Background(), &countingModel{losses: []float64{1}}, &staticData{batches: twoBatches()})

	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, 2, res.Epochs)
	assert.Equal(t, []string{"start", "epoch", "epoch", "end"}, rec.events)
}

func TestLoopTrainer_StepErrorPropagates(t *testing.T) {
	t.Parallel()
	boom := errors.New("diverged")
	tr := newTestTrainer(t, TrainerArgs{MaxEpochs: 1})

	_, err := tr.Fit(context.Background(), &countingModel{fail: boom}, &staticData{batches: twoBatches()})

	assert.ErrorIs(t, err, boom)
}

func TestLoopTrainer_Cancelled(t *testing.T) {
	t.Parallel()
	tr := newTestTrainer(t, TrainerArgs{MaxEpochs: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Fit(ctx, &countingModel{losses: []float64{1}}, &staticData{batches: twoBatches()})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewTrainer_NextVersionDir(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "logs", "version_0"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "logs", "version_4"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "logs", "other"), 0o755))

	// --- Act ---
	tr := newTestTrainer(t, TrainerArgs{MaxEpochs: 1, DefaultRootDir: root})

	// --- Assert ---
	assert.Equal(t, filepath.Join(root, "logs", "version_5"), tr.LogDir())
}
