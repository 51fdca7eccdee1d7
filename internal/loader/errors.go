package loader

import "fmt"

// ParseError reports a malformed configuration document. Line and Col are
// zero when the underlying parser did not provide a position.
type ParseError struct {
	File string
	Line int
	Col  int
	Msg  string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}
