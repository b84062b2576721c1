package linreg

import "math"

// SGD is stochastic gradient descent with optional momentum.
type SGD struct {
	Momentum float64
	velocity []float64
}

func (o *SGD) Step(params, grads []float64, lr float64) {
	if o.velocity == nil {
		o.velocity = make([]float64, len(params))
	}
	for i := range params {
		o.velocity[i] = o.Momentum*o.velocity[i] + grads[i]
		params[i] -= lr * o.velocity[i]
	}
}

// Adagrad scales each step by the inverse root of the accumulated squared
// gradients.
type Adagrad struct {
	Eps   float64
	accum []float64
}

func (o *Adagrad) Step(params, grads []float64, lr float64) {
	if o.accum == nil {
		o.accum = make([]float64, len(params))
	}
	for i := range params {
		o.accum[i] += grads[i] * grads[i]
		params[i] -= lr * grads[i] / (math.Sqrt(o.accum[i]) + o.Eps)
	}
}
