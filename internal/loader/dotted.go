package loader

import (
	"fmt"
	"strings"

	"github.com/vk/trainconf/internal/node"
)

// FromDotted builds an override tree from command-line assignments of the
// form "path.to.field=value". Values go through the normal YAML scalar
// rules, so "seed=5" yields a number, "overwrite=true" a bool and
// "name=${program.seed}" a reference. A later assignment to the same path
// wins.
func FromDotted(assignments []string) (*node.Node, error) {
	root := node.NewMapping(node.Range{File: "<command line>"})

	for _, assignment := range assignments {
		key, rawValue, found := strings.Cut(assignment, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid override %q: expected path.to.field=value", assignment)
		}

		value, err := Parse([]byte(rawValue), fmt.Sprintf("<override %s>", key))
		if err != nil {
			return nil, fmt.Errorf("invalid override value for %q: %w", key, err)
		}
		// An empty right-hand side parses as an empty mapping; treat it as
		// an explicit null instead.
		if rawValue == "" {
			value, err = Parse([]byte("null"), fmt.Sprintf("<override %s>", key))
			if err != nil {
				return nil, err
			}
		}

		if err := insert(root, node.ParsePath(key), value); err != nil {
			return nil, fmt.Errorf("invalid override %q: %w", assignment, err)
		}
	}

	return root, nil
}

func insert(root *node.Node, p node.Path, value *node.Node) error {
	current := root
	for i, segment := range p {
		if i == len(p)-1 {
			current.Set(segment, value)
			return nil
		}
		child, ok := current.Get(segment)
		if !ok || child.Kind != node.KindMapping {
			child = node.NewMapping(node.Range{File: "<command line>"})
			current.Set(segment, child)
		}
		current = child
	}
	return nil
}
