package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Module is the interface that all modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Args holds the values a class is constructed from, keyed by parameter name.
// Values are either cty.Value (straight from the configuration tree) or Go
// values produced by expanding a class selection.
type Args map[string]any

// Registry holds the classes and capability kinds of a single application
// instance.
type Registry struct {
	classes  map[string]*Class
	order    []string
	kinds    map[string]reflect.Type
	validate *validator.Validate
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		classes:  make(map[string]*Class),
		kinds:    make(map[string]reflect.Type),
		validate: validator.New(),
	}
}

// RegisterKind registers the Go interface a class must implement to be used
// as the given kind, e.g. "callback".
func (r *Registry) RegisterKind(kind string, iface reflect.Type) {
	if _, exists := r.kinds[kind]; exists {
		panic(fmt.Sprintf("interface for kind '%s' already registered", kind))
	}
	if iface.Kind() != reflect.Interface {
		panic(fmt.Sprintf("kind '%s' must be an interface type, got %s", kind, iface))
	}
	slog.Debug("Registering kind interface.", "kind", kind, "interface", iface.String())
	r.kinds[kind] = iface
}

// Kind returns the interface registered for kind.
func (r *Registry) Kind(kind string) (reflect.Type, bool) {
	iface, ok := r.kinds[kind]
	return iface, ok
}

// Lookup returns the class registered under name.
func (r *Registry) Lookup(name string) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// Names lists, in lexical order, the registered classes that can serve as
// kind. An empty kind lists every class.
func (r *Registry) Names(kind string) []string {
	iface, hasKind := r.kinds[kind]
	var out []string
	for _, name := range r.order {
		if kind != "" && (!hasKind || !r.classes[name].Implements(iface)) {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
