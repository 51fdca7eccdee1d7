package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/vk/trainconf/internal/node"
)

// placeholderMarker is the scalar that marks a field as required but
// intentionally unsupplied, matching the conventional "???" notation.
const placeholderMarker = "???"

// Load reads and parses the document at path into a node tree.
func Load(path string) (*node.Node, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration document: %w", err)
	}
	return Parse(src, path)
}

// Parse parses a YAML document into a node tree. The filename is only used
// for positions in error messages. An empty document yields an empty
// mapping.
func Parse(src []byte, filename string) (*node.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, &ParseError{File: filename, Msg: err.Error()}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return node.NewMapping(node.Range{File: filename, Line: 1, Col: 1}), nil
	}
	return convert(doc.Content[0], filename)
}

func convert(y *yaml.Node, filename string) (*node.Node, error) {
	rng := node.Range{File: filename, Line: y.Line, Col: y.Column}

	switch y.Kind {
	case yaml.MappingNode:
		m := node.NewMapping(rng)
		for i := 0; i+1 < len(y.Content); i += 2 {
			keyNode, valNode := y.Content[i], y.Content[i+1]
			if _, exists := m.Get(keyNode.Value); exists {
				return nil, &ParseError{
					File: filename,
					Line: keyNode.Line,
					Col:  keyNode.Column,
					Msg:  fmt.Sprintf("duplicate mapping key %q", keyNode.Value),
				}
			}
			child, err := convert(valNode, filename)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, child)
		}
		return m, nil

	case yaml.SequenceNode:
		s := node.NewSequence(rng)
		for _, itemNode := range y.Content {
			item, err := convert(itemNode, filename)
			if err != nil {
				return nil, err
			}
			s.Append(item)
		}
		return s, nil

	case yaml.ScalarNode:
		return convertScalar(y, filename, rng)

	case yaml.AliasNode:
		return convert(y.Alias, filename)

	default:
		return nil, &ParseError{
			File: filename,
			Line: y.Line,
			Col:  y.Column,
			Msg:  fmt.Sprintf("unsupported YAML node kind %d", y.Kind),
		}
	}
}

func convertScalar(y *yaml.Node, filename string, rng node.Range) (*node.Node, error) {
	// The required marker and interpolation syntax win over the YAML type
	// tag, regardless of quoting style.
	if y.Value == placeholderMarker {
		return node.NewPlaceholder(rng), nil
	}
	if strings.Contains(y.Value, "${") {
		return parseTemplate(y.Value, filename, rng)
	}

	switch y.LongTag() {
	case "tag:yaml.org,2002:null":
		return node.NewScalar(cty.NullVal(cty.DynamicPseudoType), rng), nil
	case "tag:yaml.org,2002:bool":
		b, err := strconv.ParseBool(strings.ToLower(y.Value))
		if err != nil {
			return nil, &ParseError{File: filename, Line: y.Line, Col: y.Column,
				Msg: fmt.Sprintf("invalid boolean %q", y.Value)}
		}
		return node.NewScalar(cty.BoolVal(b), rng), nil
	case "tag:yaml.org,2002:int":
		plain := strings.ReplaceAll(y.Value, "_", "")
		if i, err := strconv.ParseInt(plain, 0, 64); err == nil {
			return node.NewScalar(cty.NumberIntVal(i), rng), nil
		}
		// Out of int64 range; fall back to arbitrary precision.
		num, err := cty.ParseNumberVal(plain)
		if err != nil {
			return nil, &ParseError{File: filename, Line: y.Line, Col: y.Column,
				Msg: fmt.Sprintf("invalid integer %q", y.Value)}
		}
		return node.NewScalar(num, rng), nil
	case "tag:yaml.org,2002:float":
		f, err := strconv.ParseFloat(strings.ReplaceAll(y.Value, "_", ""), 64)
		if err != nil {
			return nil, &ParseError{File: filename, Line: y.Line, Col: y.Column,
				Msg: fmt.Sprintf("invalid number %q", y.Value)}
		}
		return node.NewScalar(cty.NumberFloatVal(f), rng), nil
	default:
		return node.NewScalar(cty.StringVal(y.Value), rng), nil
	}
}

// parseTemplate parses a string containing "${...}" into a reference node.
// A template that is exactly one interpolation keeps the target's native
// type at resolution time; mixed templates evaluate to strings.
func parseTemplate(raw, filename string, rng node.Range) (*node.Node, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(raw), filename, hcl.Pos{Line: rng.Line, Column: rng.Col})
	if diags.HasErrors() {
		return nil, &ParseError{
			File: filename,
			Line: rng.Line,
			Col:  rng.Col,
			Msg:  fmt.Sprintf("malformed interpolation %q: %s", raw, diags.Error()),
		}
	}
	return node.NewReference(expr, raw, rng), nil
}
