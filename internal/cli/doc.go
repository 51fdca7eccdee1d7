// Package cli parses the command-line surface and environment settings into
// an app.Config. It owns no pipeline logic.
package cli
