package config

import (
	"bytes"
	"fmt"
	"io"

	"github.com/specialistvlad/trainctl/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

func decodeYAML(data []byte) (cty.Value, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cty.NilVal, err
	}
	return schema.FromNative(raw)
}

func encodeYAML(sections []section) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range sections {
		target := root
		if s.name != "" {
			target = &yaml.Node{Kind: yaml.MappingNode}
			if len(s.fields) == 0 {
				target.Style = yaml.FlowStyle
			}
			root.Content = append(root.Content, keyNode(s.name), target)
		}
		for _, f := range s.fields {
			native, err := schema.ToNative(f.value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", JoinKey(s.name, f.name), err)
			}
			valueNode := &yaml.Node{}
			if err := valueNode.Encode(native); err != nil {
				return nil, fmt.Errorf("%s: %w", JoinKey(s.name, f.name), err)
			}
			target.Content = append(target.Content, keyNode(f.name), valueNode)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func keyNode(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}

// EncodeYAML writes t to w as YAML, the format used by --print_config.
func EncodeYAML(w io.Writer, t *Tree, skipNone bool) error {
	data, err := encodeYAML(sectionsOf(t, skipNone))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
