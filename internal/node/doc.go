// Package node defines the intermediate configuration tree shared by the
// loader, merger and resolver. A tree is built once from the defaults
// document, layered with overrides, and then resolved into a tree with no
// remaining reference expressions.
//
// Values are represented as a tagged variant rather than overloading strings:
// a node is exactly one of scalar, mapping, sequence, reference expression or
// required placeholder. This lets reference paths be validated before the
// configuration is handed to any consumer.
package node
