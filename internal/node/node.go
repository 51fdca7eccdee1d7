package node

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Kind discriminates the variants of a Node.
type Kind int

const (
	// KindScalar is a concrete value: bool, number, string or null.
	KindScalar Kind = iota
	// KindMapping is an ordered map of string keys to child nodes.
	KindMapping
	// KindSequence is an ordered list of child nodes.
	KindSequence
	// KindReference is an unresolved interpolation expression such as
	// "${program.seed}" or "run-${program.seed}".
	KindReference
	// KindPlaceholder is the "???" marker: a value that must be supplied
	// by an override layer before the configuration can be consumed.
	KindPlaceholder
)

// String returns a human readable name for the kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindReference:
		return "reference"
	case KindPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Range records where a node came from in its source document.
type Range struct {
	File string
	Line int
	Col  int
}

// String renders the range as "file:line:col", degrading gracefully when the
// position is unknown.
func (r Range) String() string {
	if r.File == "" {
		return "<unknown>"
	}
	if r.Line == 0 {
		return r.File
	}
	return fmt.Sprintf("%s:%d:%d", r.File, r.Line, r.Col)
}

// Node is one vertex of the configuration tree. Exactly the fields implied
// by Kind are meaningful; the rest stay zero.
type Node struct {
	Kind Kind

	// Value holds the concrete value of a KindScalar node.
	Value cty.Value

	// Expr is the parsed interpolation template of a KindReference node and
	// Raw its original source text.
	Expr hcl.Expression
	Raw  string

	// Keys preserves document order of a KindMapping node's children.
	Keys     []string
	Children map[string]*Node

	// Items are the elements of a KindSequence node.
	Items []*Node

	Range Range
}

// NewScalar wraps a concrete cty value.
func NewScalar(v cty.Value, rng Range) *Node {
	return &Node{Kind: KindScalar, Value: v, Range: rng}
}

// NewMapping returns an empty mapping node.
func NewMapping(rng Range) *Node {
	return &Node{Kind: KindMapping, Children: map[string]*Node{}, Range: rng}
}

// NewSequence returns an empty sequence node.
func NewSequence(rng Range) *Node {
	return &Node{Kind: KindSequence, Range: rng}
}

// NewReference wraps a parsed interpolation template.
func NewReference(expr hcl.Expression, raw string, rng Range) *Node {
	return &Node{Kind: KindReference, Expr: expr, Raw: raw, Range: rng}
}

// NewPlaceholder returns a required-field marker.
func NewPlaceholder(rng Range) *Node {
	return &Node{Kind: KindPlaceholder, Range: rng}
}

// Set inserts or replaces a mapping child, preserving first-seen key order.
func (n *Node) Set(key string, child *Node) {
	if n.Kind != KindMapping {
		panic("node: Set called on non-mapping node")
	}
	if _, ok := n.Children[key]; !ok {
		n.Keys = append(n.Keys, key)
	}
	n.Children[key] = child
}

// Get returns the named mapping child.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind != KindMapping {
		return nil, false
	}
	child, ok := n.Children[key]
	return child, ok
}

// Append adds an element to a sequence node.
func (n *Node) Append(item *Node) {
	if n.Kind != KindSequence {
		panic("node: Append called on non-sequence node")
	}
	n.Items = append(n.Items, item)
}

// Lookup descends the tree along the given path. Mapping segments select
// children by key; a decimal segment selects a sequence element by index.
func (n *Node) Lookup(p Path) (*Node, bool) {
	current := n
	for _, segment := range p {
		switch current.Kind {
		case KindMapping:
			child, ok := current.Children[segment]
			if !ok {
				return nil, false
			}
			current = child
		case KindSequence:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(current.Items) {
				return nil, false
			}
			current = current.Items[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Replace swaps the node at the given path for a new node. The path must
// address an existing node below a mapping or sequence parent.
func (n *Node) Replace(p Path, replacement *Node) error {
	if p.IsRoot() {
		return fmt.Errorf("cannot replace the root node")
	}
	parent, ok := n.Lookup(p.Parent())
	if !ok {
		return fmt.Errorf("path %q not found", p.Parent())
	}
	last := p[len(p)-1]
	switch parent.Kind {
	case KindMapping:
		if _, ok := parent.Children[last]; !ok {
			return fmt.Errorf("path %q not found", p)
		}
		parent.Children[last] = replacement
		return nil
	case KindSequence:
		idx, err := strconv.Atoi(last)
		if err != nil || idx < 0 || idx >= len(parent.Items) {
			return fmt.Errorf("path %q not found", p)
		}
		parent.Items[idx] = replacement
		return nil
	default:
		return fmt.Errorf("path %q does not address a container", p.Parent())
	}
}

// Clone returns a deep copy of the tree. Expressions are immutable after
// parsing and are shared between the copies.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Kind:  n.Kind,
		Value: n.Value,
		Expr:  n.Expr,
		Raw:   n.Raw,
		Range: n.Range,
	}
	if n.Kind == KindMapping {
		out.Keys = append([]string(nil), n.Keys...)
		out.Children = make(map[string]*Node, len(n.Children))
		for key, child := range n.Children {
			out.Children[key] = child.Clone()
		}
	}
	if n.Kind == KindSequence {
		out.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Walk visits every node in the tree depth first, in document order,
// reporting each node's path. Returning an error aborts the walk.
func (n *Node) Walk(fn func(p Path, n *Node) error) error {
	return n.walk(nil, fn)
}

func (n *Node) walk(p Path, fn func(p Path, n *Node) error) error {
	if err := fn(p, n); err != nil {
		return err
	}
	switch n.Kind {
	case KindMapping:
		for _, key := range n.Keys {
			if err := n.Children[key].walk(p.Child(key), fn); err != nil {
				return err
			}
		}
	case KindSequence:
		for i, item := range n.Items {
			if err := item.walk(p.Child(strconv.Itoa(i)), fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReferencePaths returns the sorted paths of every reference node remaining
// in the tree.
func (n *Node) ReferencePaths() []string {
	return n.pathsOfKind(KindReference)
}

// PlaceholderPaths returns the sorted paths of every required placeholder
// remaining in the tree.
func (n *Node) PlaceholderPaths() []string {
	return n.pathsOfKind(KindPlaceholder)
}

func (n *Node) pathsOfKind(kind Kind) []string {
	var paths []string
	_ = n.Walk(func(p Path, child *Node) error {
		if child.Kind == kind {
			paths = append(paths, p.String())
		}
		return nil
	})
	sort.Strings(paths)
	return paths
}
