package render

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/specialistvlad/chirpcfg/internal/refgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

func resolvedFixture(t *testing.T) []*refgraph.Resolved {
	t.Helper()
	ctx := context.Background()
	g := refgraph.New()
	_, err := g.Define(ctx, "base",
		refgraph.F("sample_rate_hz", refgraph.Int(32000)),
		refgraph.F("name", refgraph.Str("true")),
		refgraph.F("enabled", refgraph.Bool(true)),
		refgraph.F("gain", refgraph.Float(0.25)),
		refgraph.F("window", refgraph.Ints(5, 10)),
		refgraph.F("nothing", refgraph.Lit(cty.NullVal(cty.String))),
	)
	require.NoError(t, err)
	_, err = g.Define(ctx, "data",
		refgraph.F("stage", refgraph.NewCall("pipeline.Batch",
			refgraph.F("split_across_devices", refgraph.Bool(true)),
			refgraph.F("batch_size", g.MustRef("base", "sample_rate_hz")),
		)),
		refgraph.F("ops", refgraph.Tuple{refgraph.NewCall("pipeline.Repeat")}),
	)
	require.NoError(t, err)

	nodes, err := g.ResolveAll(ctx)
	require.NoError(t, err)
	return nodes
}

// keys returns the keys of a YAML mapping node in document order.
func keys(n *yaml.Node) []string {
	var out []string
	for i := 0; i < len(n.Content); i += 2 {
		out = append(out, n.Content[i].Value)
	}
	return out
}

func child(t *testing.T, n *yaml.Node, key string) *yaml.Node {
	t.Helper()
	for i := 0; i < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	t.Fatalf("key %q not found", key)
	return nil
}

func TestYAML_PreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, resolvedFixture(t)))

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	root := doc.Content[0]
	assert.Equal(t, []string{"base", "data"}, keys(root))

	base := child(t, root, "base")
	assert.Equal(t, []string{"sample_rate_hz", "name", "enabled", "gain", "window", "nothing"}, keys(base))

	stage := child(t, child(t, root, "data"), "stage")
	assert.Equal(t, []string{"kind", "args"}, keys(stage))
	assert.Equal(t, []string{"split_across_devices", "batch_size"}, keys(child(t, stage, "args")))

	var decoded struct {
		Base struct {
			SampleRate int     `yaml:"sample_rate_hz"`
			Name       string  `yaml:"name"`
			Enabled    bool    `yaml:"enabled"`
			Gain       float64 `yaml:"gain"`
			Window     []int   `yaml:"window"`
			Nothing    *string `yaml:"nothing"`
		} `yaml:"base"`
		Data struct {
			Stage struct {
				Kind string         `yaml:"kind"`
				Args map[string]any `yaml:"args"`
			} `yaml:"stage"`
			Ops []struct {
				Kind string         `yaml:"kind"`
				Args map[string]any `yaml:"args"`
			} `yaml:"ops"`
		} `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 32000, decoded.Base.SampleRate)
	assert.Equal(t, "true", decoded.Base.Name)
	assert.True(t, decoded.Base.Enabled)
	assert.Equal(t, 0.25, decoded.Base.Gain)
	assert.Equal(t, []int{5, 10}, decoded.Base.Window)
	assert.Nil(t, decoded.Base.Nothing)
	assert.Equal(t, "pipeline.Batch", decoded.Data.Stage.Kind)
	assert.Equal(t, 32000, decoded.Data.Stage.Args["batch_size"])
	require.Len(t, decoded.Data.Ops, 1)
	assert.Equal(t, "pipeline.Repeat", decoded.Data.Ops[0].Kind)
	assert.Empty(t, decoded.Data.Ops[0].Args)
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, resolvedFixture(t)))

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, 32000.0, decoded["base"]["sample_rate_hz"])
	assert.Equal(t, []any{5.0, 10.0}, decoded["base"]["window"])
	assert.Nil(t, decoded["base"]["nothing"])

	stage := decoded["data"]["stage"].(map[string]any)
	assert.Equal(t, "pipeline.Batch", stage["kind"])
	assert.Equal(t, 32000.0, stage["args"].(map[string]any)["batch_size"])

	ops := decoded["data"]["ops"].([]any)
	require.Len(t, ops, 1)
	assert.Equal(t, map[string]any{"kind": "pipeline.Repeat", "args": map[string]any{}}, ops[0])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("toml")
	assert.ErrorContains(t, err, `unknown output format "toml"`)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, nil))
	assert.Equal(t, "{}\n", buf.String())
}

func TestToCty_Empty(t *testing.T) {
	assert.True(t, ToCty(nil).RawEquals(cty.EmptyObjectVal))
}
