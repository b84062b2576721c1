package synthetic

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/specialistvlad/trainctl/internal/registry"
	"github.com/specialistvlad/trainctl/internal/schema"
	"github.com/specialistvlad/trainctl/internal/train"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Args defines the constructor arguments of SyntheticRegression.
type Args struct {
	NSamples   int     `cty:"n_samples" validate:"gte=1"`
	InFeatures int     `cty:"in_features" validate:"gte=1"`
	Noise      float64 `cty:"noise" validate:"gte=0"`
	BatchSize  int     `cty:"batch_size" validate:"gte=1"`
	Seed       int64   `cty:"seed"`
	Bias       float64 `cty:"bias"`
}

// Regression generates samples of y = sum((i+1)*x_i) + bias + noise with x
// drawn uniformly from [-1, 1). The same seed always yields the same data.
type Regression struct {
	args    Args
	batches []train.Batch
}

// New builds a SyntheticRegression data module. Data is generated by Setup.
func New(_ context.Context, args *Args) (*Regression, error) {
	return &Regression{args: *args}, nil
}

// Setup generates the samples and splits them into batches.
func (d *Regression) Setup(_ context.Context) error {
	rng := rand.New(rand.NewSource(d.args.Seed))
	d.batches = nil

	var cur train.Batch
	for i := 0; i < d.args.NSamples; i++ {
		x := make([]float64, d.args.InFeatures)
		y := d.args.Bias
		for j := range x {
			x[j] = rng.Float64()*2 - 1
			y += float64(j+1) * x[j]
		}
		y += rng.NormFloat64() * d.args.Noise

		cur.X = append(cur.X, x)
		cur.Y = append(cur.Y, y)
		if len(cur.X) == d.args.BatchSize {
			d.batches = append(d.batches, cur)
			cur = train.Batch{}
		}
	}
	if len(cur.X) > 0 {
		d.batches = append(d.batches, cur)
	}
	if len(d.batches) == 0 {
		return fmt.Errorf("no samples generated")
	}
	return nil
}

func (d *Regression) TrainBatches() []train.Batch { return d.batches }

// Register registers the SyntheticRegression data module.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass(registry.NewClass("SyntheticRegression", "Seeded synthetic linear regression data.", []*schema.Param{
		{Name: "n_samples", Type: cty.Number, Default: schema.Default(cty.NumberIntVal(256))},
		{Name: "in_features", Type: cty.Number, Default: schema.Default(cty.NumberIntVal(1))},
		{Name: "noise", Type: cty.Number, Default: schema.Default(cty.NumberFloatVal(0.1))},
		{Name: "batch_size", Type: cty.Number, Default: schema.Default(cty.NumberIntVal(32))},
		{Name: "seed", Type: cty.Number, Default: schema.Default(cty.NumberIntVal(0))},
		{Name: "bias", Type: cty.Number, Default: schema.Default(cty.NumberFloatVal(0.5))},
	}, New))
}
