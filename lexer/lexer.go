// Package lexer turns source text into the token stream the parser
// consumes.
package lexer

import (
	"strconv"
	"strings"

	"github.com/skx/subc/diag"
	"github.com/skx/subc/source"
	"github.com/skx/subc/token"
	"github.com/skx/subc/types"
)

// Tokenize scans src end to end and returns its tokens, terminated by
// an EOF token positioned just past the last byte.
//
// Recognized lexemes are attempted in the order: whitespace, line
// comments, block comments, decimal integers, string literals,
// identifiers, two-byte punctuators, one-byte punctuators. Anything
// else is a diagnostic.
func Tokenize(src *source.Source) ([]*token.Token, error) {
	text := src.Text
	toks := make([]*token.Token, 0, len(text)/2)

	i := 0
	for i < len(text) {
		c := text[i]

		switch {
		case isSpace(c):
			i++

		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			for i < len(text) && text[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			start := i
			j := strings.Index(text[i+2:], "*/")
			if j < 0 {
				return nil, diag.At(src, start, "unterminated block comment")
			}
			i += 2 + j + 2

		case isDigit(c):
			start := i
			for i < len(text) && isDigit(text[i]) {
				i++
			}
			lit := text[start:i]
			val, err := strconv.ParseUint(lit, 10, 64)
			if err != nil {
				return nil, diag.At(src, start, "invalid numeric literal %q", lit)
			}
			toks = append(toks, &token.Token{
				Kind: token.NUM, Src: src, Offset: start, Len: i - start, Val: int64(val),
			})

		case c == '"':
			tok, next, err := scanString(src, text, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next

		case isIdentStart(c):
			start := i
			i++
			for i < len(text) && isIdentCont(text[i]) {
				i++
			}
			toks = append(toks, &token.Token{Kind: token.IDENT, Src: src, Offset: start, Len: i - start})

		case isMultiPunct(text, i):
			toks = append(toks, &token.Token{Kind: token.PUNCT, Src: src, Offset: i, Len: 2})
			i += 2

		case isPunct(c):
			toks = append(toks, &token.Token{Kind: token.PUNCT, Src: src, Offset: i, Len: 1})
			i++

		default:
			return nil, diag.At(src, i, "cannot tokenize: invalid token")
		}
	}

	toks = append(toks, &token.Token{Kind: token.EOF, Src: src, Offset: len(text), Len: 0})

	retagKeywords(toks)

	return toks, nil
}

// scanString decodes a double-quoted string literal starting at i
// (text[i] == '"'), returning the STR token and the index just past
// its closing quote.
func scanString(src *source.Source, text string, i int) (*token.Token, int, error) {
	start := i
	i++

	decoded := make([]byte, 0, 16)
	for {
		if i >= len(text) || text[i] == '\n' {
			return nil, 0, diag.At(src, start, "unterminated string literal")
		}
		if text[i] == '"' {
			i++
			break
		}
		if text[i] == '\\' {
			i++
			if i >= len(text) {
				return nil, 0, diag.At(src, start, "unterminated string literal")
			}
			decoded = append(decoded, decodeEscape(text[i]))
			i++
			continue
		}
		decoded = append(decoded, text[i])
		i++
	}
	decoded = append(decoded, 0)

	ty := types.ArrayOf(types.TyChar, len(decoded))
	tok := &token.Token{
		Kind: token.STR, Src: src, Offset: start, Len: i - start, Str: decoded, StrTy: ty,
	}
	return tok, i, nil
}

// decodeEscape maps the byte following a backslash to its decoded
// value; any byte not in the recognized set decodes to itself.
func decodeEscape(c byte) byte {
	switch c {
	case 'a':
		return 7
	case 'b':
		return 8
	case 't':
		return 9
	case 'n':
		return 10
	case 'v':
		return 11
	case 'f':
		return 12
	case 'r':
		return 13
	case 'e':
		return 27
	default:
		return c
	}
}

// retagKeywords walks the finished token list, re-tagging any IDENT
// whose spelling matches a reserved word as KEYWORD.
func retagKeywords(toks []*token.Token) {
	for _, t := range toks {
		if t.Kind == token.IDENT && token.IsKeyword(t.Lexeme()) {
			t.Kind = token.KEYWORD
		}
	}
}

var multiPuncts = []string{"==", "!=", "<=", ">="}

func isMultiPunct(text string, i int) bool {
	if i+2 > len(text) {
		return false
	}
	two := text[i : i+2]
	for _, op := range multiPuncts {
		if two == op {
			return true
		}
	}
	return false
}

// isPunct reports whether c is an ASCII punctuation byte, mirroring
// ispunct() from the source this compiler was consolidated from.
func isPunct(c byte) bool {
	return (c >= 0x21 && c <= 0x2F) ||
		(c >= 0x3A && c <= 0x40) ||
		(c >= 0x5B && c <= 0x60) ||
		(c >= 0x7B && c <= 0x7E)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
