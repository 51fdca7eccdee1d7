// Package merge implements the layered deep merge of configuration trees:
// defaults under an optional override document under command-line overrides.
package merge

import (
	"fmt"

	"github.com/vk/trainconf/internal/node"
)

// ConflictError reports an override whose shape disagrees with the base
// document: a mapping on one side and a non-mapping on the other at the same
// path.
type ConflictError struct {
	Path     node.Path
	Base     node.Kind
	Override node.Kind
	Range    node.Range
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot merge %s over %s at %q (%s)",
		e.Override, e.Base, e.Path.String(), e.Range)
}

// Merge deep-merges override into base and returns a new tree; neither input
// is modified. Mappings merge key by key, any other kind on the override
// side replaces the base value wholesale, and an override placeholder never
// erases a concrete base value. Merging a tree into itself is the identity.
func Merge(base, override *node.Node) (*node.Node, error) {
	return mergeNodes(nil, base, override)
}

func mergeNodes(p node.Path, base, override *node.Node) (*node.Node, error) {
	switch {
	case override == nil:
		return base.Clone(), nil
	case base == nil:
		return override.Clone(), nil
	}

	// A required marker in an override layer keeps the base value: overriding
	// with "???" re-declares the field as required, it does not unset it.
	if override.Kind == node.KindPlaceholder && base.Kind != node.KindPlaceholder {
		return base.Clone(), nil
	}

	// A base placeholder accepts whatever the override supplies, a whole
	// mapping or sequence included.
	if base.Kind == node.KindPlaceholder {
		return override.Clone(), nil
	}

	if base.Kind == node.KindMapping && override.Kind == node.KindMapping {
		return mergeMappings(p, base, override)
	}

	if base.Kind == node.KindMapping || override.Kind == node.KindMapping {
		return nil, &ConflictError{
			Path:     p,
			Base:     base.Kind,
			Override: override.Kind,
			Range:    override.Range,
		}
	}

	// Scalar, sequence or reference override replaces the base value.
	return override.Clone(), nil
}

func mergeMappings(p node.Path, base, override *node.Node) (*node.Node, error) {
	merged := node.NewMapping(base.Range)

	for _, key := range base.Keys {
		overrideChild := override.Children[key]
		child, err := mergeNodes(p.Child(key), base.Children[key], overrideChild)
		if err != nil {
			return nil, err
		}
		merged.Set(key, child)
	}

	// Keys introduced by the override append after the base keys, in the
	// override document's order.
	for _, key := range override.Keys {
		if _, seen := base.Children[key]; seen {
			continue
		}
		merged.Set(key, override.Children[key].Clone())
	}

	return merged, nil
}
