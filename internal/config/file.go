package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/trainctl/internal/errdefs"
	"github.com/specialistvlad/trainctl/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Format is a configuration file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatOf picks the encoding for path from its extension. Unknown
// extensions are treated as YAML, which also accepts JSON documents.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".hcl":
		return FormatHCL
	default:
		return FormatYAML
	}
}

// ReadFile reads a configuration file into an object value whose attributes
// are the file's top-level keys. Namespaced sections are nested objects.
func ReadFile(path string) (cty.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: reading %s: %w", errdefs.ErrFile, path, err)
	}
	return Decode(FormatOf(path), data, path)
}

// Decode parses data in the given format. filename is used in messages only.
func Decode(format Format, data []byte, filename string) (cty.Value, error) {
	var (
		doc cty.Value
		err error
	)
	switch format {
	case FormatJSON:
		doc, err = decodeJSON(data)
	case FormatHCL:
		doc, err = decodeHCL(data, filename)
	default:
		doc, err = decodeYAML(data)
	}
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: parsing %s: %w", errdefs.ErrFile, filename, err)
	}

	if doc.IsNull() {
		return cty.EmptyObjectVal, nil
	}
	if !doc.Type().IsObjectType() {
		return cty.NilVal, fmt.Errorf("%w: parsing %s: top level must be a mapping, got %s", errdefs.ErrFile, filename, doc.Type().FriendlyName())
	}
	doc, err = schema.Normalize(doc)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: parsing %s: %w", errdefs.ErrFile, filename, err)
	}
	return doc, nil
}

// WriteFile serializes t to path in the format implied by its extension,
// creating parent directories as needed. With skipNone set, null values are
// omitted.
func WriteFile(path string, t *Tree, skipNone bool) error {
	data, err := Encode(FormatOf(path), t, skipNone)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", errdefs.ErrFile, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating directory for %s: %w", errdefs.ErrFile, path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %w", errdefs.ErrFile, path, err)
	}
	return nil
}

// Encode serializes t in the given format.
func Encode(format Format, t *Tree, skipNone bool) ([]byte, error) {
	sections := sectionsOf(t, skipNone)
	switch format {
	case FormatJSON:
		return encodeJSON(sections)
	case FormatHCL:
		return encodeHCL(sections), nil
	default:
		return encodeYAML(sections)
	}
}

type field struct {
	name  string
	value cty.Value
}

// section groups the fields of one namespace; the top-level section has an
// empty name and is always first.
type section struct {
	name   string
	fields []field
}

func sectionsOf(t *Tree, skipNone bool) []section {
	namespaces := t.Namespaces()
	ordered := make([]string, 0, len(namespaces))
	for _, ns := range namespaces {
		if ns == "" {
			ordered = append([]string{""}, ordered...)
			continue
		}
		ordered = append(ordered, ns)
	}

	out := make([]section, 0, len(ordered))
	for _, ns := range ordered {
		s := section{name: ns}
		for _, name := range t.NamespaceKeys(ns) {
			v, _ := t.Get(JoinKey(ns, name))
			if skipNone && v.IsNull() {
				continue
			}
			s.fields = append(s.fields, field{name: name, value: v})
		}
		out = append(out, s)
	}
	return out
}

func (s section) object() cty.Value {
	if len(s.fields) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(s.fields))
	for _, f := range s.fields {
		attrs[f.name] = f.value
	}
	return cty.ObjectVal(attrs)
}
