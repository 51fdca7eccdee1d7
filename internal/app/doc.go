// Package app wires the configuration pipeline together: load the defaults
// document, layer the override document and command-line overrides on top,
// resolve reference expressions, validate required fields and decode the
// result into collaborator options. The pipeline runs once at startup; any
// error is fatal, configuration is a precondition rather than a recoverable
// operation.
package app
