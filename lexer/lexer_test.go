package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skx/subc/source"
	"github.com/skx/subc/token"
)

func scan(t *testing.T, input string) []*token.Token {
	t.Helper()
	toks, err := Tokenize(source.New("t.c", input))
	require.NoError(t, err)
	return toks
}

func TestPunctuationAndNumbers(t *testing.T) {
	toks := scan(t, "1 + 23 * 4")

	want := []struct {
		kind token.Kind
		lit  string
	}{
		{token.NUM, "1"},
		{token.PUNCT, "+"},
		{token.NUM, "23"},
		{token.PUNCT, "*"},
		{token.NUM, "4"},
		{token.EOF, ""},
	}

	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w.kind, toks[i].Kind, "token %d", i)
		if w.kind != token.EOF {
			assert.Equal(t, w.lit, toks[i].Lexeme(), "token %d", i)
		}
	}
}

func TestMultiCharPunctuators(t *testing.T) {
	toks := scan(t, "a == b != c <= d >= e")

	var ops []string
	for _, tok := range toks {
		if tok.Kind == token.PUNCT {
			ops = append(ops, tok.Lexeme())
		}
	}
	assert.Equal(t, []string{"==", "!=", "<=", ">="}, ops)
}

func TestKeywordRetagging(t *testing.T) {
	toks := scan(t, "int return notakeyword")

	assert.Equal(t, token.KEYWORD, toks[0].Kind)
	assert.Equal(t, token.KEYWORD, toks[1].Kind)
	assert.Equal(t, token.IDENT, toks[2].Kind)
}

func TestLineComment(t *testing.T) {
	toks := scan(t, "1 // trailing comment\n+ 2")
	assert.Equal(t, token.NUM, toks[0].Kind)
	assert.Equal(t, token.PUNCT, toks[1].Kind)
	assert.Equal(t, "+", toks[1].Lexeme())
}

func TestBlockComment(t *testing.T) {
	toks := scan(t, "1 /* skip\nme */ + 2")
	assert.Equal(t, token.NUM, toks[0].Kind)
	assert.Equal(t, token.PUNCT, toks[1].Kind)
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, err := Tokenize(source.New("t.c", "1 /* never closed"))
	require.Error(t, err)
}

func TestStringLiteralEscapes(t *testing.T) {
	toks := scan(t, `"hi\n"`)
	require.Equal(t, token.STR, toks[0].Kind)
	assert.Equal(t, []byte{'h', 'i', '\n', 0}, toks[0].Str)
	assert.Equal(t, 4, toks[0].StrTy.Len)
}

func TestUnterminatedString(t *testing.T) {
	_, err := Tokenize(source.New("t.c", `"never closed`))
	require.Error(t, err)
}

func TestStringWithEmbeddedNewlineIsUnterminated(t *testing.T) {
	_, err := Tokenize(source.New("t.c", "\"oops\nmore\""))
	require.Error(t, err)
}

func TestCannotTokenize(t *testing.T) {
	_, err := Tokenize(source.New("t.c", "int x = 1 \x01 2;"))
	require.Error(t, err)
}

func TestIdentifiers(t *testing.T) {
	toks := scan(t, "_foo Bar123 baz")
	for i := 0; i < 3; i++ {
		assert.Equal(t, token.IDENT, toks[i].Kind)
	}
}
