package hclpreset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/chirpcfg/internal/cfgerr"
	"github.com/specialistvlad/chirpcfg/internal/pipeline"
	"github.com/specialistvlad/chirpcfg/internal/preset"
	"github.com/specialistvlad/chirpcfg/internal/refgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const smallPreset = `
preset "small" {
  extends = "supervised"

  base {
    batch_size     = 16
    sample_rate_hz = 16000
  }

  init {
    learning_rate = 0.001
    warmup_steps  = base.num_train_steps / 100
  }

  train {
    log_every_steps = max(floor(base.num_train_steps / 1000), 10)
  }

  eval {
    num_train_steps   = base.num_train_steps * 2
    target_class_list = base.target_class_list
  }

  train_dataset {
    mixin_prob  = 0.5
    dataset_dir = "/data/xc"
  }

  eval_dataset {
    dataset_dir = "/data/caples"
    split       = "test"
  }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func load(t *testing.T, content string) *File {
	t.Helper()
	path := writeFile(t, t.TempDir(), "preset.hcl", content)
	f, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	return f
}

func num(t *testing.T, r *preset.Resolved, node, field string) float64 {
	t.Helper()
	n, ok := r.Node(node)
	require.True(t, ok)
	v, err := n.Value(field)
	require.NoError(t, err)
	f, _ := v.AsBigFloat().Float64()
	return f
}

func TestLoad_DecodesPresetBlocks(t *testing.T) {
	f := load(t, smallPreset)
	assert.Equal(t, []string{"small"}, f.Names())

	p, ok := f.Preset("small")
	require.True(t, ok)
	assert.Equal(t, "supervised", p.Extends)

	nodes := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = n.Node
	}
	assert.Equal(t, []string{"base", "init", "train", "eval", "eval_dataset"}, nodes)

	attrs := make([]string, len(p.Nodes[0].Attrs))
	for i, a := range p.Nodes[0].Attrs {
		attrs[i] = a.Name
	}
	assert.Equal(t, []string{"batch_size", "sample_rate_hz"}, attrs)

	require.NotNil(t, p.TrainData.MixinProb)
	assert.Equal(t, 0.5, *p.TrainData.MixinProb)
	require.NotNil(t, p.EvalData.DatasetDir)
	assert.Equal(t, "/data/caples", *p.EvalData.DatasetDir)
	assert.Nil(t, p.EvalData.MixinProb)
}

func TestPreset_Build(t *testing.T) {
	ctx := context.Background()
	p, ok := load(t, smallPreset).Preset("small")
	require.True(t, ok)

	built, err := p.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, "small", built.Name)

	r, err := built.Resolve(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0.001, num(t, r, preset.NodeInit, "learning_rate"))
	assert.Equal(t, 10_000.0, num(t, r, preset.NodeInit, "warmup_steps"))
	assert.Equal(t, 1000.0, num(t, r, preset.NodeTrain, "log_every_steps"))
	assert.Equal(t, 2_000_000.0, num(t, r, preset.NodeEval, "num_train_steps"))

	initNode, _ := r.Node(preset.NodeInit)
	shape, err := initNode.Value("input_shape")
	require.NoError(t, err)
	assert.True(t, shape.RawEquals(cty.TupleVal([]cty.Value{cty.NumberIntVal(80000)})))

	for _, spec := range []*pipeline.Spec{r.Train, r.Eval} {
		batch, ok := spec.Stage(pipeline.KindBatch)
		require.True(t, ok)
		size, err := batch.DataArg("batch_size")
		require.NoError(t, err)
		assert.True(t, size.RawEquals(cty.NumberIntVal(16)), spec.Node)
	}
	assert.Equal(t, "/data/xc", r.Train.DatasetDir)
	assert.Equal(t, "/data/caples", r.Eval.DatasetDir)
	assert.Equal(t, "test", r.Eval.Split)
	assert.Equal(t, "train", r.Train.Split)

	mix, _ := r.Train.Stage(pipeline.KindMixAudio)
	prob, _ := mix.DataArg("mixin_prob")
	assert.True(t, prob.RawEquals(cty.NumberFloatVal(0.5)))
}

func TestPreset_ExpressionsFollowLaterOverrides(t *testing.T) {
	ctx := context.Background()
	p, _ := load(t, smallPreset).Preset("small")
	built, err := p.Build(ctx)
	require.NoError(t, err)

	// A sweep after the file was applied still reaches computed fields.
	require.NoError(t, built.Override(ctx, preset.NodeBase,
		refgraph.F("num_train_steps", refgraph.Int(5000)),
		refgraph.F("target_class_list", refgraph.Str("caples")),
	))
	r, err := built.Resolve(ctx)
	require.NoError(t, err)

	assert.Equal(t, 50.0, num(t, r, preset.NodeInit, "warmup_steps"))
	assert.Equal(t, 10.0, num(t, r, preset.NodeTrain, "log_every_steps"))
	assert.Equal(t, 10_000.0, num(t, r, preset.NodeEval, "num_train_steps"))

	evalNode, _ := r.Node(preset.NodeEval)
	classes, err := evalNode.Value("target_class_list")
	require.NoError(t, err)
	assert.Equal(t, "caples", classes.AsString())
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("syntax error", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.hcl", `preset "x" {`)
		_, err := NewLoader().Load(ctx, path)
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to parse HCL file")
	})

	t.Run("unknown block", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.hcl", `preset "x" {
  model {
    depth = 3
  }
}`)
		_, err := NewLoader().Load(ctx, path)
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to decode HCL file")
	})

	t.Run("duplicate preset across files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.hcl", `preset "x" {}`)
		writeFile(t, dir, "nested/b.hcl", `preset "x" {}`)
		_, err := NewLoader().Load(ctx, dir)
		require.Error(t, err)
		assert.ErrorContains(t, err, `preset "x" declared twice`)
	})

	t.Run("reference in dataset option", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.hcl", `preset "x" {
  train_dataset {
    mixin_prob = base.mixin
  }
}`)
		_, err := NewLoader().Load(ctx, path)
		require.Error(t, err)
	})

	t.Run("missing paths are skipped", func(t *testing.T) {
		f, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, f.Names())
	})
}

func TestPreset_ApplyErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown reference", func(t *testing.T) {
		p, _ := load(t, `preset "x" {
  train {
    log_every_steps = model.depth * 2
  }
}`).Preset("x")
		_, err := p.Build(ctx)
		var unknown *cfgerr.UnknownFieldError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "model", unknown.Node)
	})

	t.Run("unknown field on known node", func(t *testing.T) {
		p, _ := load(t, `preset "x" {
  eval {
    num_train_steps = base.num_eval_steps
  }
}`).Preset("x")
		_, err := p.Build(ctx)
		var unknown *cfgerr.UnknownFieldError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "num_eval_steps", unknown.Field)
	})

	t.Run("unknown catalogue preset", func(t *testing.T) {
		p, _ := load(t, `preset "x" {
  extends = "self_supervised"
}`).Preset("x")
		_, err := p.Build(ctx)
		var cfgErr *cfgerr.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("self reference is a cycle", func(t *testing.T) {
		p, _ := load(t, `preset "x" {
  base {
    batch_size = base.batch_size * 2
  }
}`).Preset("x")
		built, err := p.Build(ctx)
		require.NoError(t, err)
		_, err = built.Resolve(ctx)
		var cycle *cfgerr.CyclicReferenceError
		require.ErrorAs(t, err, &cycle)
	})

	t.Run("type error surfaces at resolution", func(t *testing.T) {
		p, _ := load(t, `preset "x" {
  train {
    log_every_steps = base.target_class_list * 2
  }
}`).Preset("x")
		built, err := p.Build(ctx)
		require.NoError(t, err)
		_, err = built.Resolve(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "evaluating")
	})
}
