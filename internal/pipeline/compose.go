package pipeline

import (
	"context"
	"fmt"

	"github.com/specialistvlad/chirpcfg/internal/ctxlog"
	rg "github.com/specialistvlad/chirpcfg/internal/refgraph"
)

// baseRefs collects references into the base node, remembering the first
// failure so stage construction reads straight through.
type baseRefs struct {
	g    *rg.Graph
	base string
	err  error
}

func (b *baseRefs) ref(field string) rg.Value {
	r, err := b.g.Ref(b.base, field)
	if err != nil && b.err == nil {
		b.err = err
	}
	return r
}

// Build composes the pipeline for variant and defines it in g as node
// "<variant>_dataset". The node carries the pipeline descriptor, the
// dataset split, the data directory (a reference to the base) and the
// dataset directory.
func Build(ctx context.Context, g *rg.Graph, base string, variant Variant, opts Options) (*rg.Node, error) {
	if _, err := ParseVariant(string(variant)); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	set := opts.settings()

	refs := &baseRefs{g: g, base: base}
	var ops rg.Tuple
	switch variant {
	case Train:
		ops = trainOps(refs, set)
	case Eval:
		ops = evalOps(refs, set)
	}
	dataDir := refs.ref("tfds_data_dir")
	if refs.err != nil {
		return nil, fmt.Errorf("composing %s pipeline: %w", variant, refs.err)
	}

	n, err := g.Define(ctx, variant.NodeName(),
		rg.F("pipeline", rg.NewCall(KindPipeline, rg.F("ops", ops))),
		rg.F("split", rg.Str(set.split)),
		rg.F("tfds_data_dir", dataDir),
		rg.F("dataset_directory", rg.Str(set.datasetDir)),
	)
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Pipeline composed.", "variant", variant, "stages", len(ops), "options", opts.String())
	return n, nil
}

func labelsStage(refs *baseRefs) *rg.Call {
	return rg.NewCall(KindConvertLabels,
		rg.F("source_namespace", rg.Str(SourceNamespace)),
		rg.F("target_class_list", refs.ref("target_class_list")),
		rg.F("add_taxonomic_labels", refs.ref("add_taxonomic_labels")),
	)
}

func batchStage(refs *baseRefs) *rg.Call {
	return rg.NewCall(KindBatch,
		rg.F("batch_size", refs.ref("batch_size")),
		rg.F("split_across_devices", rg.Bool(true)),
	)
}

func trainOps(refs *baseRefs, set settings) rg.Tuple {
	window := Train.WindowField()
	return rg.Tuple{
		rg.NewCall(KindShuffle, rg.F("shuffle_buffer_size", rg.Int(int64(set.shuffleBufferSize)))),
		rg.NewCall(KindOnlyJaxTypes),
		labelsStage(refs),
		rg.NewCall(KindMixAudio, rg.F("mixin_prob", rg.Float(set.mixinProb))),
		rg.NewCall(KindPad,
			rg.F("pad_size", refs.ref(window)),
			rg.F("add_mask", refs.ref("pad_mask")),
		),
		rg.NewCall(KindRandomSlice, rg.F("window_size", refs.ref(window))),
		batchStage(refs),
		rg.NewCall(KindRandomNormalizeAudio,
			rg.F("min_gain", rg.Float(set.minGain)),
			rg.F("max_gain", rg.Float(set.maxGain)),
		),
		rg.NewCall(KindRepeat),
	}
}

func evalOps(refs *baseRefs, set settings) rg.Tuple {
	window := Eval.WindowField()
	return rg.Tuple{
		rg.NewCall(KindOnlyJaxTypes),
		labelsStage(refs),
		rg.NewCall(KindPad,
			rg.F("pad_size", refs.ref(window)),
			rg.F("random", rg.Bool(false)),
			rg.F("add_mask", refs.ref("pad_mask")),
		),
		rg.NewCall(KindSlice,
			rg.F("window_size", refs.ref(window)),
			rg.F("start", rg.Float(0)),
		),
		batchStage(refs),
		rg.NewCall(KindNormalizeAudio, rg.F("target_gain", rg.Float(set.targetGain))),
	}
}
