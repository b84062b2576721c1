package linreg

import (
	"context"
	"fmt"

	"github.com/specialistvlad/trainctl/internal/train"
)

// Model is a linear regression y = w·x + b fitted on mean squared error.
// Parameters are stored as [w_0 .. w_n-1, b].
type Model struct {
	lr          float64
	weightDecay float64
	optimizer   train.Optimizer
	params      []float64
}

// LR is the learning rate the model was built with.
func (m *Model) LR() float64 { return m.lr }

// Weights returns a copy of the fitted weights followed by the bias.
func (m *Model) Weights() []float64 {
	return append([]float64(nil), m.params...)
}

// TrainingStep takes one optimiser step on b and returns the batch MSE
// measured before the update.
func (m *Model) TrainingStep(_ context.Context, b train.Batch) (float64, error) {
	if len(b.X) == 0 || len(b.X) != len(b.Y) {
		return 0, fmt.Errorf("malformed batch: %d inputs, %d targets", len(b.X), len(b.Y))
	}
	n := len(m.params) - 1
	grads := make([]float64, len(m.params))
	var loss float64
	for i, x := range b.X {
		if len(x) != n {
			return 0, fmt.Errorf("expected %d features, got %d", n, len(x))
		}
		pred := m.params[n]
		for j, xj := range x {
			pred += m.params[j] * xj
		}
		diff := pred - b.Y[i]
		loss += diff * diff
		for j, xj := range x {
			grads[j] += 2 * diff * xj
		}
		grads[n] += 2 * diff
	}

	scale := 1 / float64(len(b.X))
	for j := range grads {
		grads[j] *= scale
		if j < n {
			grads[j] += m.weightDecay * m.params[j]
		}
	}
	m.optimizer.Step(m.params, grads, m.lr)
	return loss * scale, nil
}
