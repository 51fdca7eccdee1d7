// Package validate checks a resolved configuration tree for required fields
// that were never supplied. It runs after resolution and before any
// collaborator sees the configuration, so a missing required value fails
// startup instead of surfacing as a crash deep inside the trainer.
package validate

import (
	"fmt"
	"strings"

	"github.com/vk/trainconf/internal/node"
)

// MissingFieldError lists every required field still unsupplied after all
// override layers were applied.
type MissingFieldError struct {
	Paths []string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required configuration field(s): %s",
		strings.Join(e.Paths, ", "))
}

// Required returns the sorted dotted paths of every placeholder remaining in
// the tree.
func Required(tree *node.Node) []string {
	return tree.PlaceholderPaths()
}

// Check fails with a MissingFieldError when any required field remains
// unsupplied.
func Check(tree *node.Node) error {
	missing := Required(tree)
	if len(missing) > 0 {
		return &MissingFieldError{Paths: missing}
	}
	return nil
}
