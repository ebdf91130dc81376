// Package diag implements positional error reporting.
//
// Diagnostics are Go errors, not direct calls to os.Exit - the
// tokenizer, parser and code generator all return the first *Error
// they hit, and it propagates up through ordinary error returns. Only
// the driver in main.go prints a diagnostic and terminates the
// process; this keeps "the first diagnostic is fatal, there is no
// recovery path" true without scattering process-exit calls through
// the compiler's internals.
package diag

import (
	"fmt"
	"strings"

	"github.com/skx/subc/source"
	"github.com/skx/subc/token"
)

// Error is a positional diagnostic: a message anchored to a byte
// offset in a Source, rendered with the offending line and a caret.
type Error struct {
	Src    *source.Source
	Offset int
	Msg    string
}

// Error renders "name:line: <line>\n<caret> msg", a C-compiler-style
// caret diagnostic.
func (e *Error) Error() string {
	if e.Src == nil {
		return e.Msg
	}

	lineNo, start, end := e.Src.Line(e.Offset)
	line := e.Src.Text[start:end]
	col := e.Offset - start

	prefix := fmt.Sprintf("%s:%d: ", e.Src.Name, lineNo)
	caret := strings.Repeat(" ", len(prefix)+col) + "^ " + e.Msg

	return prefix + line + "\n" + caret
}

// At builds a diagnostic anchored to a byte offset.
func At(src *source.Source, offset int, format string, args ...interface{}) *Error {
	return &Error{Src: src, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// Tok builds a diagnostic anchored to a token's location.
func Tok(tok *token.Token, format string, args ...interface{}) *Error {
	return At(tok.Src, tok.Offset, format, args...)
}

// Plain builds a diagnostic with no source location, for internal
// invariant failures (e.g. an unbalanced code-generation stack) that
// aren't tied to a specific byte of user input.
func Plain(format string, args ...interface{}) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}
