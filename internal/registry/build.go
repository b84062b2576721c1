package registry

import (
	"context"
	"fmt"
	"reflect"

	"github.com/specialistvlad/trainctl/internal/ctxlog"
	"github.com/specialistvlad/trainctl/internal/errdefs"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Build constructs an instance of class from args. Parameters missing from
// args take their declared default; a required parameter without a value is
// a construction error, as is any key the class does not declare. Class
// selections given as cty values are expanded first.
//
// Every failure caused by the arguments or by the constructor itself is
// returned as *errdefs.ConstructionError.
func (r *Registry) Build(ctx context.Context, class *Class, args Args) (any, error) {
	logger := ctxlog.FromContext(ctx)
	fail := func(err error) error {
		return &errdefs.ConstructionError{Class: class.Name, Err: err}
	}

	for key := range args {
		if _, ok := class.Param(key); !ok {
			return nil, fail(fmt.Errorf("unknown parameter %q", key))
		}
	}

	target := class.NewArgs()
	fields := reflect.ValueOf(target).Elem()
	fieldIndex := taggedFields(fields.Type())

	for _, p := range class.Params {
		raw, ok := args[p.Name]
		if !ok {
			raw = p.DefaultValue()
		}
		if isNull(raw) {
			if p.Required() {
				return nil, fail(fmt.Errorf("missing required parameter %q", p.Name))
			}
			continue
		}

		sf, ok := fieldIndex[p.Name]
		if !ok {
			return nil, fail(fmt.Errorf("parameter %q has no matching field", p.Name))
		}
		field := fields.FieldByIndex(sf.Index)

		if v, isCty := raw.(cty.Value); isCty && p.IsSubclass() {
			expanded, err := r.Expand(ctx, p, v)
			if err != nil {
				return nil, err
			}
			raw = expanded
		}

		if err := assign(field, raw); err != nil {
			return nil, fail(fmt.Errorf("parameter %q: %w", p.Name, err))
		}
	}

	if err := r.validate.StructCtx(ctx, target); err != nil {
		return nil, fail(err)
	}

	logger.Debug("Constructing class.", "class", class.Name)
	obj, err := class.New(ctx, target)
	if err != nil {
		return nil, fail(err)
	}
	return obj, nil
}

func isNull(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case cty.Value:
		return v.IsNull()
	}
	return false
}

// assign stores raw into field. cty values are converted to the field's
// implied type and decoded with gocty; Go values must be assignable, with
// []any accepted for slice fields element by element.
func assign(field reflect.Value, raw any) error {
	if v, ok := raw.(cty.Value); ok {
		want, err := gocty.ImpliedType(field.Interface())
		if err != nil {
			return err
		}
		converted, err := convert.Convert(v, want)
		if err != nil {
			return fmt.Errorf("expected %s: %w", want.FriendlyNameForConstraint(), err)
		}
		return gocty.FromCtyValue(converted, field.Addr().Interface())
	}

	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}

	items, ok := raw.([]any)
	if !ok || field.Kind() != reflect.Slice {
		return fmt.Errorf("%w: cannot use %s as %s", errdefs.ErrTypeMismatch, rv.Type(), field.Type())
	}
	elemType := field.Type().Elem()
	out := reflect.MakeSlice(field.Type(), 0, len(items))
	for i, item := range items {
		iv := reflect.ValueOf(item)
		if item == nil || !iv.Type().AssignableTo(elemType) {
			return fmt.Errorf("%w: element %d: cannot use %T as %s", errdefs.ErrTypeMismatch, i, item, elemType)
		}
		out = reflect.Append(out, iv)
	}
	field.Set(out)
	return nil
}
