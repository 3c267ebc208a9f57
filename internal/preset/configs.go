package preset

import (
	"context"

	"github.com/specialistvlad/chirpcfg/internal/refgraph"
)

// Node names defined by Build.
const (
	NodeBase     = "base"
	NodeInit     = "init"
	NodeTrain    = "train"
	NodeEval     = "eval"
	NodeFrontend = "frontend"
)

// defineWith defines a node and layers the caller's overrides on top.
func defineWith(ctx context.Context, g *refgraph.Graph, name string, fields []refgraph.Field, overrides []refgraph.Field) error {
	if _, err := g.Define(ctx, name, fields...); err != nil {
		return err
	}
	if len(overrides) == 0 {
		return nil
	}
	_, err := g.Override(ctx, name, overrides...)
	return err
}

// DefineInit defines the model init config. input_shape is the number of
// samples in one training window.
func DefineInit(ctx context.Context, g *refgraph.Graph, overrides ...refgraph.Field) error {
	fields := []refgraph.Field{
		refgraph.F("input_shape", refgraph.Tuple{
			refgraph.WholeProduct("input_shape",
				g.MustRef(NodeBase, "train_window_size_s"),
				g.MustRef(NodeBase, "sample_rate_hz"),
			),
		}),
		refgraph.F("learning_rate", refgraph.Float(0.0001)),
		refgraph.F("rng_seed", refgraph.Int(0)),
		refgraph.F("target_class_list", g.MustRef(NodeBase, "target_class_list")),
	}
	return defineWith(ctx, g, NodeInit, fields, overrides)
}

// DefineTrain defines the training loop config.
func DefineTrain(ctx context.Context, g *refgraph.Graph, overrides ...refgraph.Field) error {
	fields := []refgraph.Field{
		refgraph.F("num_train_steps", g.MustRef(NodeBase, "num_train_steps")),
		refgraph.F("log_every_steps", refgraph.Int(250)),
		refgraph.F("checkpoint_every_steps", refgraph.Int(25_000)),
	}
	return defineWith(ctx, g, NodeTrain, fields, overrides)
}

// DefineEval defines the evaluation loop config.
func DefineEval(ctx context.Context, g *refgraph.Graph, overrides ...refgraph.Field) error {
	fields := []refgraph.Field{
		refgraph.F("num_train_steps", g.MustRef(NodeBase, "num_train_steps")),
		refgraph.F("eval_steps_per_checkpoint", refgraph.Int(1000)),
		refgraph.F("tflite_export", refgraph.Bool(true)),
	}
	return defineWith(ctx, g, NodeEval, fields, overrides)
}
