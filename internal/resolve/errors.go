package resolve

import (
	"fmt"
	"strings"

	"github.com/vk/trainconf/internal/node"
)

// UnresolvedReferenceError reports a reference expression whose target does
// not exist in the merged tree, or whose evaluation failed.
type UnresolvedReferenceError struct {
	// Path is the field containing the reference expression.
	Path string
	// Target is the referenced path, when the failure is a missing path.
	Target string
	Range  node.Range
	Reason string
}

// Error implements the error interface.
func (e *UnresolvedReferenceError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("unresolved reference at %q (%s): path %q does not exist",
			e.Path, e.Range, e.Target)
	}
	return fmt.Sprintf("unresolved reference at %q (%s): %s", e.Path, e.Range, e.Reason)
}

// CyclicReferenceError reports references that depend on each other.
type CyclicReferenceError struct {
	// Cycle lists the fields involved, in dependency order. A single entry
	// means a field references itself or its own enclosing section.
	Cycle []string
}

// Error implements the error interface.
func (e *CyclicReferenceError) Error() string {
	if len(e.Cycle) == 1 {
		return fmt.Sprintf("cyclic reference: %q refers to itself", e.Cycle[0])
	}
	return fmt.Sprintf("cyclic reference: %s -> %s",
		strings.Join(e.Cycle, " -> "), e.Cycle[0])
}
