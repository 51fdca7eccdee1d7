package node

import "strings"

// Path addresses a node in the configuration tree as a sequence of mapping
// keys, e.g. ["program", "seed"] for "program.seed". Sequence elements are
// addressed by their decimal index as a segment.
type Path []string

// ParsePath splits a dotted path string into its segments. An empty string
// yields the root path.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "."))
}

// String serializes the path into its canonical dotted representation.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Child returns a new path extended by one segment. The receiver is not
// modified.
func (p Path) Child(segment string) Path {
	child := make(Path, 0, len(p)+1)
	child = append(child, p...)
	return append(child, segment)
}

// Parent returns the path with its last segment removed. The parent of the
// root is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// IsRoot reports whether the path addresses the document root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Equal checks two paths segment by segment.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses the same node as p or one of
// its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}
