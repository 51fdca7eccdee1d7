package resolve

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/trainconf/internal/ctxlog"
	"github.com/vk/trainconf/internal/dag"
	"github.com/vk/trainconf/internal/node"
)

// reference is one field whose value is still an interpolation template.
type reference struct {
	path node.Path
	expr hcl.Expression
	rng  node.Range
}

// Resolve substitutes every reference expression in the tree and returns a
// new tree containing only concrete values and, possibly, required
// placeholders. The input tree is not modified.
//
// A reference whose target (or any value its target transitively needs) is a
// placeholder resolves to a placeholder itself, so required-field validation
// reports both the original and the derived field.
func Resolve(ctx context.Context, tree *node.Node) (*node.Node, error) {
	logger := ctxlog.FromContext(ctx)
	out := tree.Clone()

	refs := collectReferences(out)
	logger.Debug("Reference expressions collected.", "count", len(refs))
	if len(refs) == 0 {
		return out, nil
	}

	graph := dag.New()
	for path := range refs {
		graph.AddNode(path)
	}
	for path, ref := range refs {
		if err := linkDependencies(out, graph, path, ref); err != nil {
			return nil, err
		}
	}

	order, err := graph.TopologicalOrder()
	if err != nil {
		return nil, asCyclic(err)
	}
	logger.Debug("Reference resolution order computed.", "order", order)

	for _, path := range order {
		ref := refs[path]
		if err := evaluate(out, ref); err != nil {
			return nil, err
		}
	}

	logger.Debug("All references resolved.")
	return out, nil
}

func collectReferences(tree *node.Node) map[string]*reference {
	refs := make(map[string]*reference)
	_ = tree.Walk(func(p node.Path, n *node.Node) error {
		if n.Kind == node.KindReference {
			path := append(node.Path(nil), p...)
			refs[p.String()] = &reference{path: path, expr: n.Expr, rng: n.Range}
		}
		return nil
	})
	return refs
}

// linkDependencies adds an edge for every reference the given field's
// evaluation has to wait for.
func linkDependencies(tree *node.Node, graph *dag.Graph, path string, ref *reference) error {
	for _, traversal := range ref.expr.Variables() {
		target, err := traversalPath(traversal)
		if err != nil {
			return &UnresolvedReferenceError{Path: path, Range: ref.rng, Reason: err.Error()}
		}

		deps, found := dependenciesOf(tree, target)
		if !found {
			return &UnresolvedReferenceError{
				Path:   path,
				Target: target.String(),
				Range:  ref.rng,
			}
		}
		for _, dep := range deps {
			if err := graph.AddEdge(dep, path); err != nil {
				return asCyclic(err)
			}
		}
	}
	return nil
}

// dependenciesOf returns the reference fields the value at target depends
// on. When the descent passes through an unresolved reference, the target's
// existence cannot be checked statically; the blocking reference becomes the
// dependency and evaluation settles the rest.
func dependenciesOf(tree *node.Node, target node.Path) (deps []string, found bool) {
	current := tree
	for i, segment := range target {
		if current.Kind == node.KindReference {
			return []string{target[:i].String()}, true
		}
		next, ok := current.Lookup(node.Path{segment})
		if !ok {
			return nil, false
		}
		current = next
	}

	// The target subtree exists; wait for every reference inside it (the
	// target itself included, when it is one).
	prefix := append(node.Path(nil), target...)
	_ = current.Walk(func(p node.Path, n *node.Node) error {
		if n.Kind == node.KindReference {
			full := append(append(node.Path(nil), prefix...), p...)
			deps = append(deps, full.String())
		}
		return nil
	})
	return deps, true
}

// traversalPath converts an HCL variable traversal into a dotted tree path.
func traversalPath(traversal hcl.Traversal) (node.Path, error) {
	var p node.Path
	for _, step := range traversal {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			p = append(p, s.Name)
		case hcl.TraverseAttr:
			p = append(p, s.Name)
		case hcl.TraverseIndex:
			switch s.Key.Type() {
			case cty.String:
				p = append(p, s.Key.AsString())
			case cty.Number:
				idx, _ := s.Key.AsBigFloat().Int64()
				p = append(p, strconv.FormatInt(idx, 10))
			default:
				return nil, fmt.Errorf("unsupported index type in reference")
			}
		default:
			return nil, fmt.Errorf("unsupported traversal step in reference")
		}
	}
	return p, nil
}

// evaluate computes one reference's value against the current tree state and
// writes the result back in place of the reference node.
func evaluate(tree *node.Node, ref *reference) error {
	evalCtx := buildEvalContext(tree)

	val, diags := ref.expr.Value(evalCtx)
	if diags.HasErrors() {
		return &UnresolvedReferenceError{
			Path:   ref.path.String(),
			Range:  ref.rng,
			Reason: diags.Error(),
		}
	}

	var replacement *node.Node
	if !val.IsWhollyKnown() {
		// The value depends on a required placeholder; the requirement
		// propagates to this field.
		replacement = node.NewPlaceholder(ref.rng)
	} else {
		replacement = fromCty(val, ref.rng)
	}
	return tree.Replace(ref.path, replacement)
}

// buildEvalContext exposes the tree's top level sections as HCL variables.
func buildEvalContext(tree *node.Node) *hcl.EvalContext {
	variables := map[string]cty.Value{}
	if tree.Kind == node.KindMapping {
		for _, key := range tree.Keys {
			variables[key] = toCty(tree.Children[key])
		}
	}
	return &hcl.EvalContext{Variables: variables}
}

func asCyclic(err error) error {
	var cycle *dag.CycleError
	if errors.As(err, &cycle) {
		return &CyclicReferenceError{Cycle: cycle.Members}
	}
	return err
}
