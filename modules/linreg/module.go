package linreg

import (
	"context"

	"github.com/specialistvlad/trainctl/internal/registry"
	"github.com/specialistvlad/trainctl/internal/schema"
	"github.com/specialistvlad/trainctl/internal/train"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Args defines the constructor arguments of LinearRegression.
type Args struct {
	LR          float64         `cty:"lr" validate:"gt=0"`
	InFeatures  int             `cty:"in_features" validate:"gte=1"`
	WeightDecay float64         `cty:"weight_decay" validate:"gte=0"`
	Optimizer   train.Optimizer `cty:"optimizer"`
}

// SGDArgs defines the arguments of the SGD optimizer.
type SGDArgs struct {
	Momentum float64 `cty:"momentum" validate:"gte=0,lt=1"`
}

// AdagradArgs defines the arguments of the Adagrad optimizer.
type AdagradArgs struct {
	Eps float64 `cty:"eps" validate:"gt=0"`
}

// New builds a LinearRegression with zero-initialised parameters.
func New(_ context.Context, args *Args) (*Model, error) {
	opt := args.Optimizer
	if opt == nil {
		opt = &SGD{}
	}
	return &Model{
		lr:          args.LR,
		weightDecay: args.WeightDecay,
		optimizer:   opt,
		params:      make([]float64, args.InFeatures+1),
	}, nil
}

// Register registers the model and optimizer classes.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass(registry.NewClass("LinearRegression", "Linear regression trained on mean squared error.", []*schema.Param{
		{Name: "lr", Type: cty.Number, Description: "Learning rate."},
		{Name: "in_features", Type: cty.Number, Default: schema.Default(cty.NumberIntVal(1)), Description: "Number of input features."},
		{Name: "weight_decay", Type: cty.Number, Default: schema.Default(cty.NumberIntVal(0)), Description: "L2 penalty on the weights."},
		{Name: "optimizer", Subclass: train.KindOptimizer, Default: schema.Default(cty.StringVal("SGD")), Description: "Optimizer updating the parameters."},
	}, New))

	r.RegisterClass(registry.NewClass("SGD", "Stochastic gradient descent.", []*schema.Param{
		{Name: "momentum", Type: cty.Number, Default: schema.Default(cty.NumberIntVal(0))},
	}, func(_ context.Context, args *SGDArgs) (*SGD, error) {
		return &SGD{Momentum: args.Momentum}, nil
	}))

	r.RegisterClass(registry.NewClass("Adagrad", "Adaptive gradient descent.", []*schema.Param{
		{Name: "eps", Type: cty.Number, Default: schema.Default(cty.NumberFloatVal(1e-10))},
	}, func(_ context.Context, args *AdagradArgs) (*Adagrad, error) {
		return &Adagrad{Eps: args.Eps}, nil
	}))
}
