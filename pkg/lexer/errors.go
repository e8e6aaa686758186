package lexer

import "fmt"

// SyntaxError is returned when no rule of the active grammar matches.
// It is not fatal: the tokens read before the error are still usable.
type SyntaxError struct {
	Mode      Mode   // grammar that was active
	Offset    int    // byte offset into the preprocessed source
	Remaining string // unconsumed input
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("unexpected %s at offset %d: %s", e.Mode, e.Offset, e.Remaining)
}
