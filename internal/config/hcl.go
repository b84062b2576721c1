package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// decodeHCL reads top-level attributes as top-level options and each
// unlabeled block as a namespace:
//
//	model {
//	  lr = 0.01
//	}
func decodeHCL(data []byte, filename string) (cty.Value, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return cty.NilVal, fmt.Errorf("unexpected HCL body type %T", file.Body)
	}

	attrs, err := hclAttributes(body)
	if err != nil {
		return cty.NilVal, err
	}
	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return cty.NilVal, fmt.Errorf("%s: block %q must not have labels", block.DefRange(), block.Type)
		}
		if _, dup := attrs[block.Type]; dup {
			return cty.NilVal, fmt.Errorf("%s: duplicate %q section", block.DefRange(), block.Type)
		}
		nested, err := hclAttributes(block.Body)
		if err != nil {
			return cty.NilVal, err
		}
		if len(block.Body.Blocks) > 0 {
			inner := block.Body.Blocks[0]
			return cty.NilVal, fmt.Errorf("%s: nested blocks are not supported", inner.DefRange())
		}
		attrs[block.Type] = cty.ObjectVal(nested)
	}

	return cty.ObjectVal(attrs), nil
}

func hclAttributes(body *hclsyntax.Body) (map[string]cty.Value, error) {
	out := make(map[string]cty.Value, len(body.Attributes))
	for name, attr := range body.Attributes {
		v, diags := attr.Expr.Value(&hcl.EvalContext{})
		if diags.HasErrors() {
			return nil, diags
		}
		out[name] = v
	}
	return out, nil
}

func encodeHCL(sections []section) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()
	for i, s := range sections {
		body := root
		if s.name != "" {
			if i > 0 {
				root.AppendNewline()
			}
			body = root.AppendNewBlock(s.name, nil).Body()
		}
		for _, fld := range s.fields {
			body.SetAttributeValue(fld.name, fld.value)
		}
	}
	return f.Bytes()
}
