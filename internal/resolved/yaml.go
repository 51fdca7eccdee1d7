package resolved

import (
	"strconv"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/vk/trainconf/internal/node"
)

// YAML renders the configuration back as a YAML document, preserving the
// original key order. Used by --print and for debugging.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(toYAML(c.root))
}

func toYAML(n *node.Node) *yaml.Node {
	switch n.Kind {
	case node.KindMapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range n.Keys {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				toYAML(n.Children[key]))
		}
		return out
	case node.KindSequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items {
			out.Content = append(out.Content, toYAML(item))
		}
		return out
	case node.KindPlaceholder:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "???"}
	case node.KindReference:
		// New rejects trees with references; this branch only serves
		// debugging output of intermediate trees.
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Raw}
	default:
		return scalarToYAML(n.Value)
	}
}

func scalarToYAML(v cty.Value) *yaml.Node {
	out := &yaml.Node{Kind: yaml.ScalarNode}
	if v.IsNull() {
		out.Tag = "!!null"
		out.Value = "null"
		return out
	}
	switch v.Type() {
	case cty.Bool:
		out.Tag = "!!bool"
		out.Value = strconv.FormatBool(v.True())
	case cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == 0 {
			out.Tag = "!!int"
			out.Value = strconv.FormatInt(i, 10)
		} else {
			f, _ := bf.Float64()
			out.Tag = "!!float"
			out.Value = strconv.FormatFloat(f, 'g', -1, 64)
		}
	default:
		out.Tag = "!!str"
		out.Value = v.AsString()
	}
	return out
}
