// Package resolve substitutes every reference expression in a merged
// configuration tree with the value of the path it points at. References are
// ordered through a dependency graph, so forward references and chains of
// references work regardless of document order, and cycles are rejected
// before any evaluation happens. Evaluation itself reuses the HCL expression
// machinery: the partially resolved tree is projected into an EvalContext
// and each template is evaluated against it.
package resolve
