package schema

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Keys of a class selection value.
const (
	ClassPathKey = "class_path"
	InitArgsKey  = "init_args"
)

// Selection is the decoded form of a class selection value.
type Selection struct {
	ClassPath string
	InitArgs  map[string]cty.Value
}

// normalizeSelection accepts either a bare class name or an object with a
// class_path and optional init_args, and returns the canonical object form
// {class_path = "...", init_args = {...}}.
func normalizeSelection(v cty.Value) (cty.Value, error) {
	ty := v.Type()
	if ty.Equals(cty.String) {
		return selectionVal(v.AsString(), cty.EmptyObjectVal), nil
	}
	if !ty.IsObjectType() && !ty.IsMapType() {
		return cty.NilVal, fmt.Errorf("class selection must be a class name or an object with %q, got %s", ClassPathKey, ty.FriendlyName())
	}

	attrs := v.AsValueMap()
	classPath, ok := attrs[ClassPathKey]
	if !ok || classPath.IsNull() || !classPath.Type().Equals(cty.String) {
		return cty.NilVal, fmt.Errorf("class selection requires a string %q", ClassPathKey)
	}

	initArgs := cty.EmptyObjectVal
	for key, val := range attrs {
		switch key {
		case ClassPathKey:
		case InitArgsKey:
			if val.IsNull() {
				continue
			}
			if !val.Type().IsObjectType() && !val.Type().IsMapType() {
				return cty.NilVal, fmt.Errorf("%q must be an object, got %s", InitArgsKey, val.Type().FriendlyName())
			}
			normalized, err := Normalize(cty.ObjectVal(val.AsValueMap()))
			if err != nil {
				return cty.NilVal, err
			}
			initArgs = normalized
		default:
			return cty.NilVal, fmt.Errorf("unexpected key %q in class selection", key)
		}
	}

	return selectionVal(classPath.AsString(), initArgs), nil
}

func selectionVal(classPath string, initArgs cty.Value) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		ClassPathKey: cty.StringVal(classPath),
		InitArgsKey:  initArgs,
	})
}

// Selections decodes a value previously produced by Coerce on a subclass
// parameter. A null value yields no selections.
func Selections(v cty.Value) ([]Selection, error) {
	if v.IsNull() {
		return nil, nil
	}

	var raw []cty.Value
	if v.Type().IsTupleType() || v.Type().IsListType() {
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			raw = append(raw, elem)
		}
	} else {
		raw = []cty.Value{v}
	}

	out := make([]Selection, 0, len(raw))
	for _, elem := range raw {
		norm, err := normalizeSelection(elem)
		if err != nil {
			return nil, err
		}
		attrs := norm.AsValueMap()
		sel := Selection{ClassPath: attrs[ClassPathKey].AsString()}
		if initArgs := attrs[InitArgsKey]; len(initArgs.Type().AttributeTypes()) > 0 {
			sel.InitArgs = initArgs.AsValueMap()
		}
		out = append(out, sel)
	}
	return out, nil
}
