package resolve

import (
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/trainconf/internal/node"
)

// toCty projects a (possibly partially resolved) tree into a cty value.
// Unresolved references and placeholders become unknown values, so a
// traversal through them stays unknown instead of failing; the topological
// order guarantees nothing we actually need is still unknown.
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

// fromCty converts an evaluated cty value back into tree form, so a
// reference to a whole section materializes as a real mapping subtree.
func fromCty(v cty.Value, rng node.Range) *node.Node {
	if v.IsNull() {
		return node.NewScalar(v, rng)
	}

	ty := v.Type()
	switch {
	case ty.IsObjectType() || ty.IsMapType():
		m := node.NewMapping(rng)
		attrs := v.AsValueMap()
		keys := make([]string, 0, len(attrs))
		for key := range attrs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			m.Set(key, fromCty(attrs[key], rng))
		}
		return m
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		s := node.NewSequence(rng)
		for _, item := range v.AsValueSlice() {
			s.Append(fromCty(item, rng))
		}
		return s
	default:
		return node.NewScalar(v, rng)
	}
}
