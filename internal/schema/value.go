package schema

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Normalize rewrites every non-integral number in v to its float64 form.
// Numbers reach the tree from several decoders with different precisions
// (YAML yields float64, HCL and JSON parse arbitrary-precision decimals);
// normalising keeps values from all sources comparable with Equals and
// makes save/reload cycles stable.
func Normalize(v cty.Value) (cty.Value, error) {
	return cty.Transform(v, func(_ cty.Path, v cty.Value) (cty.Value, error) {
		if !v.Type().Equals(cty.Number) || v.IsNull() || !v.IsKnown() {
			return v, nil
		}
		bf := v.AsBigFloat()
		if bf.IsInt() {
			return v, nil
		}
		f, _ := bf.Float64()
		return cty.NumberFloatVal(f), nil
	})
}

// FromNative converts a value decoded by a generic decoder (YAML, flag
// strings) into a cty value. Maps become objects and slices become tuples;
// the declared parameter type is applied afterwards by Coerce.
func FromNative(raw any) (cty.Value, error) {
	switch v := raw.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return v, nil
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case uint64:
		return cty.NumberUIntVal(v), nil
	case float32:
		return cty.NumberFloatVal(float64(v)), nil
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return cty.NilVal, fmt.Errorf("unsupported number %v", v)
		}
		return cty.NumberFloatVal(v), nil
	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(v))
		for i, elem := range v {
			ev, err := FromNative(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(v) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(v))
		for key, elem := range v {
			ev, err := FromNative(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", key, err)
			}
			attrs[key] = ev
		}
		return cty.ObjectVal(attrs), nil
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, elem := range v {
			converted[fmt.Sprint(key)] = elem
		}
		return FromNative(converted)
	default:
		return cty.NilVal, fmt.Errorf("unsupported value of type %T", raw)
	}
}

// ToNative converts a cty value into plain Go values suitable for generic
// encoders: nil, string, bool, int64, float64, []any and map[string]any.
func ToNative(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("cannot encode an unknown value")
	}

	ty := v.Type()
	switch {
	case ty.Equals(cty.String):
		return v.AsString(), nil
	case ty.Equals(cty.Bool):
		return v.True(), nil
	case ty.Equals(cty.Number):
		return numberToNative(v.AsBigFloat()), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			nv, err := ToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any)
		for key, elem := range v.AsValueMap() {
			nv, err := ToNative(elem)
			if err != nil {
				return nil, err
			}
			out[key] = nv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot encode a value of type %s", ty.FriendlyName())
	}
}

func numberToNative(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
	}
	f, _ := bf.Float64()
	return f
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
