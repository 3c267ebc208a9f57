package hclpreset

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/chirpcfg/internal/ctxlog"
	"github.com/specialistvlad/chirpcfg/internal/fsutil"
)

// Loader reads preset files.
type Loader struct{}

// NewLoader creates a new HCL preset loader.
func NewLoader() *Loader {
	return &Loader{}
}

// File is the merged content of every loaded preset file.
type File struct {
	presets map[string]*Preset
}

// Preset returns a loaded preset by name.
func (f *File) Preset(name string) (*Preset, bool) {
	p, ok := f.presets[name]
	return p, ok
}

// Names lists the loaded presets, sorted.
func (f *File) Names() []string {
	out := make([]string, 0, len(f.presets))
	for name := range f.presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Load walks the given files and directories for .hcl files and decodes
// every preset block in them. Preset names must be unique across files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL preset loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(".hcl", paths...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	out := &File{presets: make(map[string]*Preset)}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Presets {
			if prev, exists := out.presets[block.Name]; exists {
				return nil, fmt.Errorf("preset %q declared twice: %s and %s", block.Name, prev.DeclRange, block.DeclRange)
			}
			p, err := translatePreset(block)
			if err != nil {
				return nil, fmt.Errorf("failed to process preset in %s: %w", file, err)
			}
			out.presets[p.Name] = p
		}
	}

	logger.Debug("HCL loading complete.", "presets", len(out.presets))
	return out, nil
}

func translatePreset(b *presetBlock) (*Preset, error) {
	p := &Preset{Name: b.Name, DeclRange: b.DeclRange}
	if b.Extends != nil {
		p.Extends = *b.Extends
	}

	for _, nb := range []struct {
		node  string
		block *nodeBlock
	}{
		{"base", b.Base},
		{"init", b.Init},
		{"train", b.Train},
		{"eval", b.Eval},
	} {
		if nb.block == nil {
			continue
		}
		attrs, err := sortedAttributes(nb.block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", nb.node, err)
		}
		p.Nodes = append(p.Nodes, NodeOverrides{Node: nb.node, Attrs: attrs})
	}

	for _, db := range []struct {
		node  string
		block *datasetBlock
		dst   *DataOptions
	}{
		{"train_dataset", b.TrainDataset, &p.TrainData},
		{"eval_dataset", b.EvalDataset, &p.EvalData},
	} {
		if db.block == nil {
			continue
		}
		db.dst.MixinProb = db.block.MixinProb
		db.dst.DatasetDir = db.block.DatasetDir
		attrs, err := sortedAttributes(db.block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", db.node, err)
		}
		if len(attrs) > 0 {
			p.Nodes = append(p.Nodes, NodeOverrides{Node: db.node, Attrs: attrs})
		}
	}
	return p, nil
}

// sortedAttributes returns the attributes of a body in source order.
func sortedAttributes(body hcl.Body) ([]*hcl.Attribute, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	out := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Range.Start.Byte < out[j].Range.Start.Byte
	})
	return out, nil
}
