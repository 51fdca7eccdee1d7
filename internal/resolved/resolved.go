// Package resolved wraps a fully resolved configuration tree in a read-only
// view. A Config is constructed once at startup, after merge, resolution and
// validation, and is then shared freely: nothing in this package mutates the
// underlying tree, so no synchronization is needed.
package resolved

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/trainconf/internal/node"
)

// Config is the immutable, fully substituted configuration handed to the
// trainer, data module and task collaborators.
type Config struct {
	root *node.Node
}

// New wraps a resolved tree. It refuses a tree that still contains
// reference expressions; that indicates resolution was skipped or failed.
func New(root *node.Node) (*Config, error) {
	if remaining := root.ReferencePaths(); len(remaining) > 0 {
		return nil, fmt.Errorf("tree still contains unresolved references: %v", remaining)
	}
	return &Config{root: root}, nil
}

// Value returns the cty value at the given dotted path.
func (c *Config) Value(path string) (cty.Value, bool) {
	n, ok := c.root.Lookup(node.ParsePath(path))
	if !ok || n.Kind != node.KindScalar {
		return cty.NilVal, false
	}
	return n.Value, true
}

// Has reports whether the given dotted path exists.
func (c *Config) Has(path string) bool {
	_, ok := c.root.Lookup(node.ParsePath(path))
	return ok
}

// Sub returns the configuration subtree at the given path as its own
// read-only view.
func (c *Config) Sub(path string) (*Config, bool) {
	n, ok := c.root.Lookup(node.ParsePath(path))
	if !ok || n.Kind != node.KindMapping {
		return nil, false
	}
	return &Config{root: n}, true
}

// Keys returns the top-level section names in document order.
func (c *Config) Keys() []string {
	if c.root.Kind != node.KindMapping {
		return nil
	}
	return append([]string(nil), c.root.Keys...)
}

// String extracts a string field.
func (c *Config) String(path string) (string, error) {
	var out string
	err := c.decode(path, cty.String, &out)
	return out, err
}

// Int extracts an integer field.
func (c *Config) Int(path string) (int, error) {
	var out int
	err := c.decode(path, cty.Number, &out)
	return out, err
}

// Float extracts a floating point field.
func (c *Config) Float(path string) (float64, error) {
	var out float64
	err := c.decode(path, cty.Number, &out)
	return out, err
}

// Bool extracts a boolean field.
func (c *Config) Bool(path string) (bool, error) {
	var out bool
	err := c.decode(path, cty.Bool, &out)
	return out, err
}

func (c *Config) decode(path string, want cty.Type, target any) error {
	val, ok := c.Value(path)
	if !ok {
		return fmt.Errorf("configuration field %q not found", path)
	}
	converted, err := convert.Convert(val, want)
	if err != nil {
		return fmt.Errorf("configuration field %q: %w", path, err)
	}
	if err := gocty.FromCtyValue(converted, target); err != nil {
		return fmt.Errorf("configuration field %q: %w", path, err)
	}
	return nil
}

// Decode converts the subtree at path into the given Go struct using its
// cty field tags. Extra configuration keys not present in the struct are
// dropped, mirroring keyword-argument hand-off.
func (c *Config) Decode(path string, target any) error {
	n, ok := c.root.Lookup(node.ParsePath(path))
	if !ok {
		return fmt.Errorf("configuration section %q not found", path)
	}
	val := toCty(n)

	want, err := gocty.ImpliedType(target)
	if err != nil {
		return fmt.Errorf("configuration section %q: %w", path, err)
	}
	converted, err := convert.Convert(val, want)
	if err != nil {
		return fmt.Errorf("configuration section %q: %w", path, err)
	}
	if err := gocty.FromCtyValue(converted, target); err != nil {
		return fmt.Errorf("configuration section %q: %w", path, err)
	}
	return nil
}

// ToNative converts the whole configuration into plain Go values:
// map[string]any, []any, string, bool, int64, float64 and nil. Remaining
// placeholders surface as the "???" marker string.
func (c *Config) ToNative() any {
	return toNative(c.root)
}

func toCty(n *node.Node) cty.Value {
	switch n.Kind {
	case node.KindScalar:
		return n.Value
	case node.KindMapping:
		if len(n.Keys) == 0 {
			return cty.EmptyObjectVal
		}
		attrs := make(map[string]cty.Value, len(n.Keys))
		for _, key := range n.Keys {
			attrs[key] = toCty(n.Children[key])
		}
		return cty.ObjectVal(attrs)
	case node.KindSequence:
		if len(n.Items) == 0 {
			return cty.EmptyTupleVal
		}
		items := make([]cty.Value, len(n.Items))
		for i, item := range n.Items {
			items[i] = toCty(item)
		}
		return cty.TupleVal(items)
	default:
		return cty.DynamicVal
	}
}

func toNative(n *node.Node) any {
	switch n.Kind {
	case node.KindMapping:
		out := make(map[string]any, len(n.Keys))
		for _, key := range n.Keys {
			out[key] = toNative(n.Children[key])
		}
		return out
	case node.KindSequence:
		out := make([]any, len(n.Items))
		for i, item := range n.Items {
			out[i] = toNative(item)
		}
		return out
	case node.KindPlaceholder:
		return "???"
	default:
		return scalarToNative(n.Value)
	}
}

func scalarToNative(v cty.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Type() {
	case cty.Bool:
		return v.True()
	case cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == 0 {
			return i
		}
		f, _ := bf.Float64()
		return f
	case cty.String:
		return v.AsString()
	default:
		return v.GoString()
	}
}
