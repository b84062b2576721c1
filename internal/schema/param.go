package schema

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"gopkg.in/yaml.v3"
)

// Param declares a single constructor parameter of a class.
type Param struct {
	Name        string
	Type        cty.Type
	Description string
	// Default is used when no source provides a value. A nil Default with
	// Optional unset makes the parameter required.
	Default  *cty.Value
	Optional bool

	// Subclass names the capability kind of a parameter whose value selects
	// a registered class (e.g. "callback"). Type is ignored for such params.
	Subclass string
	// Multiple marks a subclass parameter that accepts a list of selections.
	Multiple bool
}

// Default returns a pointer to v, for use in Param literals.
func Default(v cty.Value) *cty.Value {
	return &v
}

// Required reports whether the parameter must be resolved from some source.
func (p *Param) Required() bool {
	return p.Default == nil && !p.Optional
}

// IsSubclass reports whether the parameter holds class selections.
func (p *Param) IsSubclass() bool {
	return p.Subclass != ""
}

// ValueType is the cty type values of this parameter are stored as.
func (p *Param) ValueType() cty.Type {
	if p.IsSubclass() {
		return cty.DynamicPseudoType
	}
	return p.Type
}

// DefaultValue returns the declared default, or a typed null.
func (p *Param) DefaultValue() cty.Value {
	if p.Default != nil {
		return *p.Default
	}
	return cty.NullVal(p.ValueType())
}

// TypeName is a short human-readable name used in help output.
func (p *Param) TypeName() string {
	switch {
	case p.IsSubclass() && p.Multiple:
		return "list of " + p.Subclass
	case p.IsSubclass():
		return p.Subclass
	default:
		return p.Type.FriendlyNameForConstraint()
	}
}

// Coerce converts v into the parameter's declared type. Null stays null.
func (p *Param) Coerce(v cty.Value) (cty.Value, error) {
	if p.IsSubclass() {
		return p.coerceSelection(v)
	}
	if v.IsNull() {
		return cty.NullVal(p.Type), nil
	}
	out, err := convert.Convert(v, p.Type)
	if err != nil {
		return cty.NilVal, fmt.Errorf("expected %s: %w", p.Type.FriendlyNameForConstraint(), err)
	}
	return Normalize(out)
}

// ParseString interprets a raw string from the command line or the
// environment. String parameters take the text verbatim; everything else is
// read as a YAML scalar or flow collection (e.g. "0.01", "true", "[1, 2]")
// before coercion.
func (p *Param) ParseString(s string) (cty.Value, error) {
	if !p.IsSubclass() && p.Type.Equals(cty.String) {
		return cty.StringVal(s), nil
	}

	var raw any
	if err := yaml.Unmarshal([]byte(s), &raw); err != nil {
		return cty.NilVal, fmt.Errorf("invalid value %q: %w", s, err)
	}
	v, err := FromNative(raw)
	if err != nil {
		return cty.NilVal, err
	}
	return p.Coerce(v)
}

func (p *Param) coerceSelection(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	if !p.Multiple {
		return normalizeSelection(v)
	}

	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() && !ty.IsSetType() {
		// A single selection is accepted where a list is expected.
		sel, err := normalizeSelection(v)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.TupleVal([]cty.Value{sel}), nil
	}
	if v.LengthInt() == 0 {
		return cty.EmptyTupleVal, nil
	}

	elems := make([]cty.Value, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		sel, err := normalizeSelection(elem)
		if err != nil {
			return cty.NilVal, fmt.Errorf("element %d: %w", len(elems), err)
		}
		elems = append(elems, sel)
	}
	return cty.TupleVal(elems), nil
}
