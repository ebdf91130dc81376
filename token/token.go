// Package token contains the tokens that the lexer produces when
// scanning a source file.
package token

import (
	"github.com/skx/subc/source"
	"github.com/skx/subc/types"
)

// Kind identifies what a Token represents.
type Kind int

// pre-defined Kind values.
const (
	// IDENT is an identifier: [A-Za-z_][A-Za-z0-9_]*
	IDENT Kind = iota

	// PUNCT is a punctuator, one or two bytes long.
	PUNCT

	// KEYWORD is an identifier re-tagged because its spelling matches
	// a reserved word.
	KEYWORD

	// STR is a double-quoted string literal.
	STR

	// NUM is a decimal integer literal.
	NUM

	// EOF marks the end of the token stream.
	EOF
)

// String renders a Kind for diagnostics and test failures.
func (k Kind) String() string {
	switch k {
	case IDENT:
		return "IDENT"
	case PUNCT:
		return "PUNCT"
	case KEYWORD:
		return "KEYWORD"
	case STR:
		return "STR"
	case NUM:
		return "NUM"
	case EOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// keywords is the set of identifier spellings re-tagged as KEYWORD
// after the initial scan.
var keywords = map[string]bool{
	"return": true,
	"if":     true,
	"else":   true,
	"for":    true,
	"while":  true,
	"int":    true,
	"char":   true,
	"sizeof": true,
}

// IsKeyword reports whether word is one of the language's reserved words.
func IsKeyword(word string) bool {
	return keywords[word]
}

// Token is a tagged lexeme with its location in Src.
type Token struct {
	Kind Kind

	// Src is the buffer this token was carved from; shared by every
	// token of a compilation unit so diagnostics can recover context
	// long after scanning has finished.
	Src *source.Source

	// Offset and Len locate the token's spelling within Src.Text.
	Offset int
	Len    int

	// Val holds the decoded value of a NUM token.
	Val int64

	// Str holds the decoded bytes of a STR token, including the
	// trailing NUL. StrTy is the ARRAY-of-CHAR type matching Str's
	// length.
	Str   []byte
	StrTy *types.Type
}

// Lexeme returns the token's original source text.
func (t *Token) Lexeme() string {
	return t.Src.Text[t.Offset : t.Offset+t.Len]
}

// Equal reports whether the token's spelling is exactly op - length and
// text both have to match, unlike a naive prefix/memcmp comparison.
func Equal(t *Token, op string) bool {
	return t.Len == len(op) && t.Lexeme() == op
}
