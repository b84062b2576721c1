package registry

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/specialistvlad/trainctl/internal/errdefs"
	"github.com/specialistvlad/trainctl/internal/schema"
)

// Class is a registered constructor together with the manifest of the
// parameters it accepts.
type Class struct {
	Name        string
	Description string
	Params      []*schema.Param

	// Type is the Go type produced by New.
	Type reflect.Type
	// NewArgs returns a pointer to a zero argument struct. Fields are matched
	// to parameters through their `cty` tags.
	NewArgs func() any
	New     func(ctx context.Context, args any) (any, error)
}

// NewClass builds a Class from a typed constructor. A is the argument struct
// and T the produced type.
func NewClass[A any, T any](name, description string, params []*schema.Param, fn func(ctx context.Context, args *A) (T, error)) *Class {
	return &Class{
		Name:        name,
		Description: description,
		Params:      params,
		Type:        reflect.TypeOf((*T)(nil)).Elem(),
		NewArgs:     func() any { return new(A) },
		New: func(ctx context.Context, args any) (any, error) {
			return fn(ctx, args.(*A))
		},
	}
}

// Param returns the manifest entry called name.
func (c *Class) Param(name string) (*schema.Param, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Implements reports whether instances of the class satisfy iface.
func (c *Class) Implements(iface reflect.Type) bool {
	return c.Type.Implements(iface)
}

// RegisterClass makes a class available by name.
func (r *Registry) RegisterClass(c *Class) {
	if _, exists := r.classes[c.Name]; exists {
		panic(fmt.Sprintf("class with name '%s' already registered", c.Name))
	}
	slog.Debug("Registering class.", "name", c.Name, "type", c.Type.String())
	r.classes[c.Name] = c
	r.order = append(r.order, c.Name)
}

// CheckKind fails with a type-mismatch error unless c can serve as kind.
func (r *Registry) CheckKind(c *Class, kind string) error {
	iface, ok := r.kinds[kind]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", errdefs.ErrTypeMismatch, kind)
	}
	if !c.Implements(iface) {
		return fmt.Errorf("%w: class %q (%s) does not implement %s", errdefs.ErrTypeMismatch, c.Name, c.Type, iface)
	}
	return nil
}
