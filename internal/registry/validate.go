package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/trainctl/internal/ctxlog"
	"github.com/specialistvlad/trainctl/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ValidateRegistry performs a strict parity check between class manifests and
// the argument structs their constructors decode into. It checks both the
// presence of parameters and the compatibility of their types.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.order {
		class := r.classes[name]
		argsType := reflect.TypeOf(class.NewArgs())
		if argsType.Kind() != reflect.Pointer || argsType.Elem().Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("class '%s': arguments must be a pointer to a struct, got %s", name, argsType))
			continue
		}

		goFields := taggedFields(argsType.Elem())
		declared := make(map[string]*schema.Param, len(class.Params))
		for _, p := range class.Params {
			if _, dup := declared[p.Name]; dup {
				errs = append(errs, fmt.Sprintf("class '%s': parameter '%s' declared twice", name, p.Name))
			}
			declared[p.Name] = p
		}

		// Check for presence mismatches
		for field := range goFields {
			if _, ok := declared[field]; !ok {
				errs = append(errs, fmt.Sprintf("class '%s': Go struct has field for parameter '%s' which is not declared in manifest", name, field))
			}
		}
		for _, p := range class.Params {
			if _, ok := goFields[p.Name]; !ok {
				errs = append(errs, fmt.Sprintf("class '%s': manifest declares parameter '%s' which is not found in Go struct", name, p.Name))
			}
		}

		// Check for type mismatches
		for _, p := range class.Params {
			goField, ok := goFields[p.Name]
			if !ok {
				continue
			}
			if p.IsSubclass() {
				if msg := r.checkSubclassField(p, goField); msg != "" {
					errs = append(errs, fmt.Sprintf("class '%s', parameter '%s': %s", name, p.Name, msg))
				}
				continue
			}

			if p.Type.Equals(cty.DynamicPseudoType) {
				logger.Warn("Manifest declares a parameter of type any, which disables static type checking.", "class", name, "param", p.Name)
				continue
			}
			goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
			if err != nil {
				errs = append(errs, fmt.Sprintf("class '%s', parameter '%s': could not imply cty type from Go field type %s: %v", name, p.Name, goField.Type, err))
				continue
			}
			if !p.Type.Equals(goFieldType) {
				errs = append(errs, fmt.Sprintf("class '%s', parameter '%s': type mismatch. Manifest requires '%s' but Go struct field '%s' provides '%s'",
					name, p.Name, p.Type.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (r *Registry) checkSubclassField(p *schema.Param, field reflect.StructField) string {
	iface, ok := r.kinds[p.Subclass]
	if !ok {
		return fmt.Sprintf("unknown kind '%s'", p.Subclass)
	}
	want := iface
	if p.Multiple {
		want = reflect.SliceOf(iface)
	}
	if field.Type != want {
		return fmt.Sprintf("Go struct field '%s' has type %s, want %s", field.Name, field.Type, want)
	}
	return ""
}

// taggedFields indexes the exported fields of t by their `cty` tag.
func taggedFields(t reflect.Type) map[string]reflect.StructField {
	out := make(map[string]reflect.StructField)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tagName := strings.Split(field.Tag.Get("cty"), ",")[0]
		if tagName != "" && tagName != "-" {
			out[tagName] = field
		}
	}
	return out
}
