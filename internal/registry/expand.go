package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/trainctl/internal/errdefs"
	"github.com/specialistvlad/trainctl/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Expand constructs the class selection(s) held by v for the subclass
// parameter p. A single selection yields the instance; a Multiple parameter
// yields []any in selection order. A null value yields nil.
//
// Unknown classes and malformed init_args are parse errors, classes that do
// not implement p's kind are type mismatches, and constructor failures are
// construction errors.
func (r *Registry) Expand(ctx context.Context, p *schema.Param, v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	coerced, err := p.Coerce(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errdefs.ErrParse, p.Name, err)
	}
	selections, err := schema.Selections(coerced)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errdefs.ErrParse, p.Name, err)
	}

	instances := make([]any, 0, len(selections))
	for _, sel := range selections {
		obj, err := r.buildSelection(ctx, p, sel)
		if err != nil {
			return nil, err
		}
		instances = append(instances, obj)
	}

	if p.Multiple {
		return instances, nil
	}
	return instances[0], nil
}

func (r *Registry) buildSelection(ctx context.Context, p *schema.Param, sel schema.Selection) (any, error) {
	class, ok := r.Lookup(sel.ClassPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown class %q", errdefs.ErrParse, p.Name, sel.ClassPath)
	}
	if err := r.CheckKind(class, p.Subclass); err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}

	args := make(Args, len(sel.InitArgs))
	for _, key := range schema.SortedKeys(sel.InitArgs) {
		param, ok := class.Param(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s: class %q has no parameter %q", errdefs.ErrParse, p.Name, class.Name, key)
		}
		val, err := param.Coerce(sel.InitArgs[key])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s.%s: %w", errdefs.ErrParse, p.Name, class.Name, key, err)
		}
		args[key] = val
	}
	return r.Build(ctx, class, args)
}
