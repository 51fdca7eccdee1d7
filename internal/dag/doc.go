// Package dag provides the dependency graph used to order reference
// resolution. Each vertex is the dotted path of a field containing a
// reference expression; an edge records that one field's value is needed
// before another's can be evaluated. Cycle detection rejects mutually
// recursive references and the topological order makes forward references
// (a field referencing one defined later in the document) work.
package dag
