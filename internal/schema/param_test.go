package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParam_Required(t *testing.T) {
	t.Parallel()
	assert.True(t, (&Param{Name: "lr", Type: cty.Number}).Required())
	assert.False(t, (&Param{Name: "lr", Type: cty.Number, Optional: true}).Required())
	assert.False(t, (&Param{Name: "lr", Type: cty.Number, Default: Default(cty.NumberFloatVal(0.1))}).Required())
}

func TestParam_DefaultValue(t *testing.T) {
	t.Parallel()
	withDefault := &Param{Name: "max_epochs", Type: cty.Number, Default: Default(cty.NumberIntVal(10))}
	withoutDefault := &Param{Name: "weight_decay", Type: cty.Number, Optional: true}
	subclass := &Param{Name: "optimizer", Subclass: "optimizer"}

	assert.True(t, withDefault.DefaultValue().RawEquals(cty.NumberIntVal(10)))
	assert.True(t, withoutDefault.DefaultValue().RawEquals(cty.NullVal(cty.Number)))
	assert.True(t, subclass.DefaultValue().RawEquals(cty.NullVal(cty.DynamicPseudoType)))
}

func TestParam_TypeName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "number", (&Param{Type: cty.Number}).TypeName())
	assert.Equal(t, "list of string", (&Param{Type: cty.List(cty.String)}).TypeName())
	assert.Equal(t, "optimizer", (&Param{Subclass: "optimizer"}).TypeName())
	assert.Equal(t, "list of callback", (&Param{Subclass: "callback", Multiple: true}).TypeName())
}

func TestParam_ParseString(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		param *Param
		input string
		want  cty.Value
	}{
		{name: "float", param: &Param{Type: cty.Number}, input: "0.01", want: cty.NumberFloatVal(0.01)},
		{name: "int", param: &Param{Type: cty.Number}, input: "3", want: cty.NumberIntVal(3)},
		{name: "bool", param: &Param{Type: cty.Bool}, input: "true", want: cty.True},
		{name: "string verbatim", param: &Param{Type: cty.String}, input: "007", want: cty.StringVal("007")},
		{name: "string from number", param: &Param{Type: cty.List(cty.String)}, input: "[a, 1]", want: cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("1")})},
		{name: "null", param: &Param{Type: cty.Number}, input: "null", want: cty.NullVal(cty.Number)},
		{name: "number list", param: &Param{Type: cty.List(cty.Number)}, input: "[1, 2.5]", want: cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberFloatVal(2.5)})},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tc.param.ParseString(tc.input)

			require.NoError(t, err)
			assert.True(t, got.RawEquals(tc.want), "want %#v, got %#v", tc.want, got)
		})
	}
}

func TestParam_ParseString_Errors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		param *Param
		input string
	}{
		{name: "not a number", param: &Param{Type: cty.Number}, input: "fast"},
		{name: "not a bool", param: &Param{Type: cty.Bool}, input: "[1]"},
		{name: "malformed yaml", param: &Param{Type: cty.Number}, input: "[1, 2"},
		{name: "bad selection", param: &Param{Subclass: "optimizer"}, input: "{init_args: {}}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tc.param.ParseString(tc.input)
			require.Error(t, err)
		})
	}
}

func TestParam_Coerce_Selections(t *testing.T) {
	t.Parallel()
	single := &Param{Name: "optimizer", Subclass: "optimizer"}
	multiple := &Param{Name: "callbacks", Subclass: "callback", Multiple: true}

	t.Run("shorthand", func(t *testing.T) {
		t.Parallel()
		got, err := single.ParseString("SGD")

		require.NoError(t, err)
		want := cty.ObjectVal(map[string]cty.Value{
			ClassPathKey: cty.StringVal("SGD"),
			InitArgsKey:  cty.EmptyObjectVal,
		})
		assert.True(t, got.RawEquals(want))
	})

	t.Run("single value where a list is expected", func(t *testing.T) {
		t.Parallel()
		got, err := multiple.ParseString("{class_path: EarlyStopping, init_args: {patience: 2}}")

		require.NoError(t, err)
		sels, err := Selections(got)
		require.NoError(t, err)
		require.Len(t, sels, 1)
		assert.Equal(t, "EarlyStopping", sels[0].ClassPath)
		assert.True(t, sels[0].InitArgs["patience"].RawEquals(cty.NumberIntVal(2)))
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		got, err := multiple.ParseString("[ProgressLogger, {class_path: MetricsExporter}]")

		require.NoError(t, err)
		sels, err := Selections(got)
		require.NoError(t, err)
		require.Len(t, sels, 2)
		assert.Equal(t, "ProgressLogger", sels[0].ClassPath)
		assert.Nil(t, sels[0].InitArgs)
		assert.Equal(t, "MetricsExporter", sels[1].ClassPath)
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		got, err := multiple.ParseString("[]")

		require.NoError(t, err)
		sels, err := Selections(got)
		require.NoError(t, err)
		assert.Empty(t, sels)
	})

	t.Run("unexpected key", func(t *testing.T) {
		t.Parallel()
		_, err := single.ParseString("{class_path: SGD, lr: 1}")
		require.ErrorContains(t, err, `unexpected key "lr"`)
	})
}
