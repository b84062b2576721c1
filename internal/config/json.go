package config

import (
	"bytes"
	"encoding/json"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

func decodeJSON(data []byte) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(data, ty)
}

// encodeJSON writes one object per namespace. JSON objects carry no key
// order, so keys come out sorted.
func encodeJSON(sections []section) ([]byte, error) {
	attrs := make(map[string]cty.Value)
	for _, s := range sections {
		if s.name == "" {
			for _, f := range s.fields {
				attrs[f.name] = f.value
			}
			continue
		}
		attrs[s.name] = s.object()
	}

	compact, err := ctyjson.SimpleJSONValue{Value: cty.ObjectVal(attrs)}.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
