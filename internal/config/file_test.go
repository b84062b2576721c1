package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/trainctl/internal/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func sampleTree() *Tree {
	tree := NewTree()
	tree.Set("trainer.max_epochs", cty.NumberIntVal(3), SourceDefault)
	tree.Set("trainer.default_root_dir", cty.StringVal("runs"), SourceDefault)
	tree.Set("trainer.callbacks", cty.TupleVal([]cty.Value{
		cty.ObjectVal(map[string]cty.Value{
			"class_path": cty.StringVal("EarlyStopping"),
			"init_args":  cty.ObjectVal(map[string]cty.Value{"patience": cty.NumberIntVal(2)}),
		}),
	}), SourceCLI)
	tree.Set("model.lr", cty.NumberFloatVal(0.01), SourceCLI)
	tree.Set("model.weight_decay", cty.NullVal(cty.Number), SourceDefault)
	tree.Set("model.fit_intercept", cty.True, SourceDefault)
	tree.Set("seed", cty.NumberIntVal(42), SourceCLI)
	return tree
}

// loadTree mirrors what the parser does with a decoded file.
func loadTree(t *testing.T, doc cty.Value) *Tree {
	t.Helper()
	tree := NewTree()
	for key, v := range doc.AsValueMap() {
		if v.Type().IsObjectType() && key != "seed" {
			for name, inner := range v.AsValueMap() {
				tree.Set(JoinKey(key, name), inner, SourceFile)
			}
			continue
		}
		tree.Set(key, v, SourceFile)
	}
	return tree
}

func TestFormatOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, FormatYAML, FormatOf("config.yaml"))
	assert.Equal(t, FormatYAML, FormatOf("config.yml"))
	assert.Equal(t, FormatYAML, FormatOf("config"))
	assert.Equal(t, FormatJSON, FormatOf("config.JSON"))
	assert.Equal(t, FormatHCL, FormatOf("/tmp/x/config.hcl"))
}

func TestWriteFile_ReadFile_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"config.yaml", "config.json", "config.hcl"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			// --- Arrange ---
			want := sampleTree()
			path := filepath.Join(t.TempDir(), "nested", name)

			// --- Act ---
			require.NoError(t, WriteFile(path, want, false))
			doc, err := ReadFile(path)

			// --- Assert ---
			require.NoError(t, err)
			got := loadTree(t, doc)
			assert.Equal(t, want.Len(), got.Len())
			for _, key := range want.Keys() {
				w, _ := want.Get(key)
				g, ok := got.Get(key)
				require.True(t, ok, "missing key %s", key)
				if w.IsNull() {
					assert.True(t, g.IsNull(), "key %s", key)
					continue
				}
				assert.True(t, g.Equals(w).True(), "key %s: want %#v, got %#v", key, w, g)
			}
		})
	}
}

func TestEncode_SkipNone(t *testing.T) {
	t.Parallel()
	tree := sampleTree()

	full, err := Encode(FormatYAML, tree, false)
	require.NoError(t, err)
	skipped, err := Encode(FormatYAML, tree, true)
	require.NoError(t, err)

	assert.Contains(t, string(full), "weight_decay: null")
	assert.NotContains(t, string(skipped), "weight_decay")
	assert.Contains(t, string(skipped), "lr: 0.01")
}

func TestEncodeYAML_TopLevelFirstThenNamespacesInOrder(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	tree := NewTree()
	tree.Set("trainer.max_epochs", cty.NumberIntVal(1), SourceDefault)
	tree.Set("model.lr", cty.NumberFloatVal(0.5), SourceDefault)
	tree.Set("seed", cty.NumberIntVal(1), SourceDefault)
	var buf bytes.Buffer

	// --- Act ---
	err := EncodeYAML(&buf, tree, false)

	// --- Assert ---
	require.NoError(t, err)
	want := "seed: 1\ntrainer:\n  max_epochs: 1\nmodel:\n  lr: 0.5\n"
	assert.Equal(t, want, buf.String())
}

func TestDecode_EmptyDocument(t *testing.T) {
	t.Parallel()
	doc, err := Decode(FormatYAML, nil, "empty.yaml")
	require.NoError(t, err)
	assert.True(t, doc.RawEquals(cty.EmptyObjectVal))
}

func TestDecode_HCLBlocks(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := []byte(`
seed = 3

model {
  lr = 0.25
}
`)

	// --- Act ---
	doc, err := Decode(FormatHCL, src, "config.hcl")

	// --- Assert ---
	require.NoError(t, err)
	attrs := doc.AsValueMap()
	assert.True(t, attrs["seed"].RawEquals(cty.NumberIntVal(3)))
	assert.True(t, attrs["model"].GetAttr("lr").RawEquals(cty.NumberFloatVal(0.25)))
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		format Format
		data   string
	}{
		{name: "yaml syntax", format: FormatYAML, data: "model: [1, 2"},
		{name: "yaml not a mapping", format: FormatYAML, data: "- a\n- b\n"},
		{name: "json syntax", format: FormatJSON, data: `{"model": `},
		{name: "hcl syntax", format: FormatHCL, data: `model {`},
		{name: "hcl labeled block", format: FormatHCL, data: "model \"x\" {\n}\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tc.format, []byte(tc.data), "bad")
			require.Error(t, err)
			assert.ErrorIs(t, err, errdefs.ErrFile)
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
