package cli

import (
	"strings"

	"github.com/specialistvlad/trainctl/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// optionValue adapts a manifest parameter to pflag.Value. Input is parsed
// and coerced when the flag is set, so malformed values fail during flag
// parsing with the flag name attached.
type optionValue struct {
	param *schema.Param
	value cty.Value
	raw   string
}

func (v *optionValue) String() string { return v.raw }

func (v *optionValue) Set(s string) error {
	val, err := v.param.ParseString(s)
	if err != nil {
		return err
	}
	v.value = val
	v.raw = s
	return nil
}

func (v *optionValue) Type() string { return v.param.TypeName() }

// renderValue formats v the way it would appear in a YAML config file.
func renderValue(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	native, err := schema.ToNative(v)
	if err != nil {
		return v.GoString()
	}
	out, err := yaml.Marshal(native)
	if err != nil {
		return v.GoString()
	}
	s := strings.TrimSpace(string(out))
	if strings.Contains(s, "\n") {
		// Flow style keeps collection defaults on one help line.
		var node yaml.Node
		if err := node.Encode(native); err == nil {
			setFlow(&node)
			if flow, err := yaml.Marshal(&node); err == nil {
				s = strings.TrimSpace(string(flow))
			}
		}
	}
	return s
}

func setFlow(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style = yaml.FlowStyle
	}
	for _, c := range n.Content {
		setFlow(c)
	}
}
