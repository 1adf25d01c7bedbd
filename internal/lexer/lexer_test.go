package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mirrrek/nitrogen/internal/diag"
	"github.com/Mirrrek/nitrogen/internal/lexer"
	"github.com/Mirrrek/nitrogen/internal/token"
)

func tokenize(t *testing.T, src string) ([]token.Token, *diag.CollectingSink) {
	t.Helper()
	sink := &diag.CollectingSink{}
	toks, err := lexer.Tokenize("test.nit", src, sink)
	require.NoError(t, err)
	return toks, sink
}

func texts(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Text
	}
	return out
}

func TestSymbolLongestMatch(t *testing.T) {
	toks, _ := tokenize(t, "== = != ++ + -- -")
	var syms []string
	for _, tok := range toks {
		if tok.Type == token.Symbol {
			syms = append(syms, tok.Text)
		}
	}
	assert.Equal(t, []string{"==", "=", "!=", "++", "+", "--", "-"}, syms)
}

// A bare trailing dot ("42.") is not a valid float (no fractional digits),
// so the integer "42" is emitted and the lone "." is left for the next
// token attempt, which fails: "." is not a recognized symbol on its own.
func TestNumberTrailingDotIsIntegerThenError(t *testing.T) {
	l := lexer.New("test.nit", "42.", nil)
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, token.IntegerLiteral, tok.Type)
	assert.EqualValues(t, 42, tok.IntValue)

	_, err = l.Next()
	require.Error(t, err)
}

func TestFloatLiteral(t *testing.T) {
	toks, _ := tokenize(t, "3.25")
	require.Len(t, toks, 2)
	assert.Equal(t, token.FloatLiteral, toks[0].Type)
	assert.InDelta(t, 3.25, toks[0].FloatValue, 1e-9)
}

func TestHexBinOctIntegers(t *testing.T) {
	toks, _ := tokenize(t, "0x1F 0b101 0o17")
	require.Len(t, toks, 4)
	assert.EqualValues(t, 31, toks[0].IntValue)
	assert.EqualValues(t, 5, toks[1].IntValue)
	assert.EqualValues(t, 15, toks[2].IntValue)
}

func TestLineComment(t *testing.T) {
	toks, _ := tokenize(t, "i32 x // trailing comment\n; ")
	require.Len(t, toks, 4)
	assert.Equal(t, ";", toks[2].Text)
}

func TestBlockComment(t *testing.T) {
	toks, _ := tokenize(t, "i32 /* multi\nline */ x;")
	var kinds []string
	for _, tok := range toks {
		kinds = append(kinds, tok.Text)
	}
	assert.Equal(t, []string{"i32", "x", ";", ""}, kinds)
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, err := lexer.Tokenize("test.nit", "i32 x; /* oops", nil)
	require.Error(t, err)
}

func TestDoubleQuoteWarning(t *testing.T) {
	_, sink := tokenize(t, `"hello"`)
	require.Len(t, sink.Diagnostics, 1)
	assert.Equal(t, diag.Warning, sink.Diagnostics[0].Severity)
}

func TestSingleQuoteNoWarning(t *testing.T) {
	_, sink := tokenize(t, `'hello'`)
	assert.Empty(t, sink.Diagnostics)
}

func TestDoubleQuoteContainingSingleQuoteNoWarning(t *testing.T) {
	_, sink := tokenize(t, `"it's fine"`)
	assert.Empty(t, sink.Diagnostics)
}

func TestSnakeCaseWarning(t *testing.T) {
	_, sink := tokenize(t, "my_variable")
	require.Len(t, sink.Diagnostics, 1)
}

func TestLeadingOrTrailingUnderscoreNoWarning(t *testing.T) {
	_, sink := tokenize(t, "_private trailing_")
	assert.Empty(t, sink.Diagnostics)
}

func TestKeywordsNotIdentifiers(t *testing.T) {
	toks, _ := tokenize(t, "if else while do for break return const")
	for _, tok := range toks[:8] {
		assert.Equal(t, token.Keyword, tok.Type)
	}
}

func TestRawStringEscapesPreserved(t *testing.T) {
	toks, _ := tokenize(t, `'a\nb'`)
	require.Len(t, toks, 2)
	assert.Equal(t, `a\nb`, toks[0].StringValue)
}

func TestUnterminatedString(t *testing.T) {
	_, err := lexer.Tokenize("test.nit", "'abc", nil)
	require.Error(t, err)
}

func TestControlCharacterRejected(t *testing.T) {
	_, err := lexer.Tokenize("test.nit", "i32 x\x01;", nil)
	require.Error(t, err)
}

func TestPositionsTrackLinesAndColumns(t *testing.T) {
	toks, _ := tokenize(t, "i32 x;\ni32 y;")
	require.GreaterOrEqual(t, len(toks), 5)
	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 1, toks[0].Pos.Column)
	assert.Equal(t, 5, toks[1].Pos.Column) // "x"
	// "i32" on the second line
	var secondLineTok token.Token
	for _, tok := range toks {
		if tok.Pos.Line == 2 {
			secondLineTok = tok
			break
		}
	}
	assert.Equal(t, "i32", secondLineTok.Text)
	assert.Equal(t, 1, secondLineTok.Pos.Column)
}
