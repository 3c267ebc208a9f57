package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"sort"

	"github.com/specialistvlad/chirpcfg/internal/refgraph"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatYAML, FormatJSON}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected yaml or json)", s)
}

// Write renders nodes in the given format.
func Write(w io.Writer, format Format, nodes []*refgraph.Resolved) error {
	switch format {
	case FormatYAML:
		return YAML(w, nodes)
	case FormatJSON:
		return JSON(w, nodes)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// ToCty converts resolved nodes into one object keyed by node name.
func ToCty(nodes []*refgraph.Resolved) cty.Value {
	if len(nodes) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(nodes))
	for _, n := range nodes {
		attrs[n.Node] = n.ToCty()
	}
	return cty.ObjectVal(attrs)
}

// JSON writes nodes as indented JSON.
func JSON(w io.Writer, nodes []*refgraph.Resolved) error {
	val := ToCty(nodes)
	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return fmt.Errorf("encoding resolved config as JSON: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

// YAML writes nodes as a YAML document in definition order.
func YAML(w io.Writer, nodes []*refgraph.Resolved) error {
	doc := mapping()
	for _, n := range nodes {
		fields, err := fieldsNode(n.Fields)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", n.Node, err)
		}
		appendPair(doc, n.Node, fields)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding resolved config as YAML: %w", err)
	}
	return enc.Close()
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar("!!str", key), value)
}

func fieldsNode(fields []refgraph.ResolvedField) (*yaml.Node, error) {
	m := mapping()
	for _, f := range fields {
		v, err := resultNode(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		appendPair(m, f.Name, v)
	}
	return m, nil
}

func resultNode(r refgraph.Result) (*yaml.Node, error) {
	switch v := r.(type) {
	case refgraph.Data:
		return valueNode(v.Val)
	case refgraph.List:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range v {
			n, err := resultNode(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case *refgraph.ResolvedCall:
		args, err := fieldsNode(v.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Kind, err)
		}
		m := mapping()
		appendPair(m, "kind", scalar("!!str", v.Kind))
		appendPair(m, "args", args)
		return m, nil
	}
	return nil, fmt.Errorf("unsupported result %T", r)
}

func valueNode(v cty.Value) (*yaml.Node, error) {
	if v.IsNull() {
		return scalar("!!null", "null"), nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return scalar("!!str", v.AsString()), nil
	case ty == cty.Bool:
		if v.True() {
			return scalar("!!bool", "true"), nil
		}
		return scalar("!!bool", "false"), nil
	case ty == cty.Number:
		return numberNode(v.AsBigFloat()), nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			n, err := valueNode(ev)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case ty.IsObjectType() || ty.IsMapType():
		vals := v.AsValueMap()
		keys := make([]string, 0, len(vals))
		for k := range vals {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := mapping()
		for _, k := range keys {
			n, err := valueNode(vals[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			appendPair(m, k, n)
		}
		return m, nil
	}
	return nil, fmt.Errorf("cannot render %s", ty.FriendlyName())
}

func numberNode(f *big.Float) *yaml.Node {
	if f.IsInt() {
		i, _ := f.Int(nil)
		return scalar("!!int", i.String())
	}
	return scalar("!!float", f.Text('g', -1))
}
