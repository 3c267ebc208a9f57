package pipeline

import (
	"context"
	"fmt"

	"github.com/specialistvlad/chirpcfg/internal/cfgerr"
	rg "github.com/specialistvlad/chirpcfg/internal/refgraph"
	"github.com/zclconf/go-cty/cty"
)

// Spec is a resolved dataset node: the stage calls in order plus the
// dataset location.
type Spec struct {
	Node       string
	Stages     []*rg.ResolvedCall
	Split      string
	DataDir    string
	DatasetDir string
}

// Resolve resolves a dataset node defined by Build into a Spec.
func Resolve(ctx context.Context, g *rg.Graph, node string) (*Spec, error) {
	res, err := g.Resolve(ctx, node)
	if err != nil {
		return nil, err
	}
	return FromResolved(res)
}

// FromResolved extracts a Spec from an already resolved dataset node.
func FromResolved(res *rg.Resolved) (*Spec, error) {
	pipe, err := res.Call("pipeline")
	if err != nil {
		return nil, err
	}
	if pipe.Kind != KindPipeline {
		return nil, fmt.Errorf("field %s.pipeline is a %s, not a %s", res.Node, pipe.Kind, KindPipeline)
	}

	spec := &Spec{Node: res.Node}
	ops, ok := pipe.Arg("ops")
	if !ok {
		return nil, fmt.Errorf("pipeline of %s has no ops", res.Node)
	}
	switch list := ops.(type) {
	case rg.List:
		for i, item := range list {
			stage, ok := item.(*rg.ResolvedCall)
			if !ok {
				return nil, fmt.Errorf("stage %d of %s is not a call", i, res.Node)
			}
			spec.Stages = append(spec.Stages, stage)
		}
	case rg.Data:
		// Only an empty tuple resolves to plain data.
		if !list.Val.Type().IsTupleType() || list.Val.LengthInt() != 0 {
			return nil, fmt.Errorf("ops of %s must be a list of stage calls", res.Node)
		}
	default:
		return nil, fmt.Errorf("ops of %s must be a list of stage calls", res.Node)
	}

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"split", &spec.Split},
		{"tfds_data_dir", &spec.DataDir},
		{"dataset_directory", &spec.DatasetDir},
	} {
		v, err := res.Value(f.name)
		if err != nil {
			return nil, err
		}
		if v.IsNull() || !v.Type().Equals(cty.String) {
			return nil, fmt.Errorf("field %s.%s must be a string", res.Node, f.name)
		}
		*f.dst = v.AsString()
	}
	return spec, nil
}

// Kinds returns the stage kinds in order.
func (s *Spec) Kinds() []string {
	out := make([]string, len(s.Stages))
	for i, st := range s.Stages {
		out[i] = st.Kind
	}
	return out
}

// Index returns the position of the first stage of the given kind, or -1.
func (s *Spec) Index(kind string) int {
	for i, st := range s.Stages {
		if st.Kind == kind {
			return i
		}
	}
	return -1
}

// Stage returns the first stage of the given kind.
func (s *Spec) Stage(kind string) (*rg.ResolvedCall, bool) {
	if i := s.Index(kind); i >= 0 {
		return s.Stages[i], true
	}
	return nil, false
}

// indexAny returns the position of the first stage matching any kind.
func (s *Spec) indexAny(kinds ...string) int {
	for i, st := range s.Stages {
		for _, k := range kinds {
			if st.Kind == k {
				return i
			}
		}
	}
	return -1
}

// CheckOrder verifies the stage ordering rules for the variant.
func CheckOrder(s *Spec, variant Variant) error {
	violation := func(format string, args ...any) error {
		return cfgerr.Invalid(s.Node, "stage order: "+format, args...)
	}

	mix := s.Index(KindMixAudio)
	pad := s.Index(KindPad)
	slice := s.indexAny(KindSlice, KindRandomSlice)
	batch := s.Index(KindBatch)
	norm := s.indexAny(KindNormalizeAudio, KindRandomNormalizeAudio)
	repeat := s.Index(KindRepeat)

	for _, req := range []struct {
		what string
		pos  int
	}{{KindPad, pad}, {"slice stage", slice}, {KindBatch, batch}} {
		if req.pos < 0 {
			return violation("missing %s", req.what)
		}
	}
	if mix >= 0 && mix > pad {
		return violation("%s must precede %s", KindMixAudio, KindPad)
	}
	if pad > slice {
		return violation("%s must precede slicing", KindPad)
	}
	if slice > batch {
		return violation("slicing must precede %s", KindBatch)
	}
	if norm >= 0 && norm < slice {
		return violation("normalisation must follow slicing")
	}

	switch variant {
	case Train:
		if repeat != len(s.Stages)-1 {
			return violation("%s must be the final stage", KindRepeat)
		}
	case Eval:
		if repeat >= 0 {
			return violation("evaluation must not repeat")
		}
		for _, st := range s.Stages {
			if randomKinds[st.Kind] {
				return violation("evaluation must not use %s", st.Kind)
			}
		}
		padStage := s.Stages[pad]
		random, err := padStage.DataArg("random")
		if err != nil || !random.Type().Equals(cty.Bool) || random.IsNull() || random.True() {
			return violation("evaluation padding must set random=false")
		}
	default:
		return cfgerr.Invalid("variant", "unknown pipeline variant %q", variant)
	}
	return nil
}
