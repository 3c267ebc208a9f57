package hclpreset

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/chirpcfg/internal/ctxlog"
	"github.com/specialistvlad/chirpcfg/internal/preset"
	"github.com/specialistvlad/chirpcfg/internal/refgraph"
)

// DefaultExtends is the catalogue preset used when a file preset does not
// name one.
const DefaultExtends = "supervised"

// NodeOverrides are the attributes set on one node, in source order.
type NodeOverrides struct {
	Node  string
	Attrs []*hcl.Attribute
}

// DataOptions are composer options set in a dataset block. Nil means unset.
type DataOptions struct {
	MixinProb  *float64
	DatasetDir *string
}

func (d DataOptions) applyTo(o *preset.Options, train bool) {
	target := &o.EvalData
	if train {
		target = &o.TrainData
	}
	if d.MixinProb != nil {
		target.MixinProb = *d.MixinProb
	}
	if d.DatasetDir != nil {
		target.DatasetDir = *d.DatasetDir
	}
}

// Preset is one decoded preset block.
type Preset struct {
	Name      string
	Extends   string
	Nodes     []NodeOverrides
	TrainData DataOptions
	EvalData  DataOptions
	DeclRange hcl.Range
}

// Options returns the build options: the extended catalogue preset with the
// dataset block options applied.
func (p *Preset) Options() (preset.Options, error) {
	extends := p.Extends
	if extends == "" {
		extends = DefaultExtends
	}
	opts, err := preset.Lookup(extends)
	if err != nil {
		return preset.Options{}, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	opts.Name = p.Name
	p.TrainData.applyTo(&opts, true)
	p.EvalData.applyTo(&opts, false)
	return opts, nil
}

// Apply turns every attribute into an override on the matching node of g.
// Each block is applied as one override, base first.
func (p *Preset) Apply(ctx context.Context, g *refgraph.Graph) error {
	logger := ctxlog.FromContext(ctx)
	for _, n := range p.Nodes {
		updates := make([]refgraph.Field, 0, len(n.Attrs))
		for _, attr := range n.Attrs {
			v, err := Translate(g, attr.Expr)
			if err != nil {
				return fmt.Errorf("%s: %s.%s: %w", attr.Range, n.Node, attr.Name, err)
			}
			updates = append(updates, refgraph.F(attr.Name, v))
		}
		if _, err := g.Override(ctx, n.Node, updates...); err != nil {
			return fmt.Errorf("preset %q: %w", p.Name, err)
		}
		logger.Debug("Preset file overrides applied.", "preset", p.Name, "node", n.Node, "count", len(updates))
	}
	return nil
}

// Build assembles the preset: Options, preset.Build, then Apply.
func (p *Preset) Build(ctx context.Context) (*preset.Preset, error) {
	opts, err := p.Options()
	if err != nil {
		return nil, err
	}
	built, err := preset.Build(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	if err := p.Apply(ctx, built.Graph); err != nil {
		return nil, err
	}
	return built, nil
}
