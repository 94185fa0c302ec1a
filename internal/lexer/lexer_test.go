package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lykiadb/lykiadb/internal/lexer"
	"github.com/lykiadb/lykiadb/internal/token"
)

func kinds(t *testing.T, toks []token.Token) []token.Kind {
	t.Helper()
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScanLiteralsAndSymbols(t *testing.T) {
	toks, err := lexer.Scan(`$x = 1.5e2 + "hi\"there" - null;`)
	require.NoError(t, err)
	require.NotEmpty(t, toks)

	assert.Equal(t, token.KindIdentifier, toks[0].Kind)
	assert.True(t, toks[0].Dollar)
	assert.Equal(t, "x", toks[0].Lexeme)

	var num token.Token
	var str token.Token
	for _, tok := range toks {
		if tok.Kind == token.KindNumber {
			num = tok
		}
		if tok.Kind == token.KindString {
			str = tok
		}
	}
	assert.Equal(t, float64(150), num.Literal.Num)
	assert.Equal(t, `hi"there`, str.Literal.Str)

	assert.Equal(t, token.KindEOF, toks[len(toks)-1].Kind)
}

func TestScanTwoCharSymbols(t *testing.T) {
	toks, err := lexer.Scan(`a == b != c <= d >= e`)
	require.NoError(t, err)
	var lexemes []string
	for _, tok := range toks {
		if tok.Kind == token.KindSymbol {
			lexemes = append(lexemes, tok.Lexeme)
		}
	}
	assert.Equal(t, []string{"==", "!=", "<=", ">="}, lexemes)
}

func TestScanSQLKeywordsCaseInsensitive(t *testing.T) {
	toks, err := lexer.Scan(`select * from Users where id = 1`)
	require.NoError(t, err)
	assert.Equal(t, token.KindSQLKeyword, toks[0].Kind)
	assert.Equal(t, "SELECT", toks[0].Lexeme)
}

func TestScanLineCommentsAreSkipped(t *testing.T) {
	toks, err := lexer.Scan("1 // this is a comment\n+ 2")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{token.KindNumber, token.KindSymbol, token.KindNumber, token.KindEOF}, kinds(t, toks))
}

func TestScanUnterminatedStringIsError(t *testing.T) {
	_, err := lexer.Scan(`"never closed`)
	require.Error(t, err)
}

func TestScanMalformedNumberIsError(t *testing.T) {
	_, err := lexer.Scan(`1.`)
	require.Error(t, err)
}

func TestScanUnexpectedCharacterIsError(t *testing.T) {
	_, err := lexer.Scan("`")
	require.Error(t, err)
}

func TestScanNonASCIIIdentifierAndString(t *testing.T) {
	toks, err := lexer.Scan(`café + "héllo wörld"`)
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, token.KindIdentifier, toks[0].Kind)
	assert.Equal(t, "café", toks[0].Lexeme)
	assert.Equal(t, token.KindString, toks[2].Kind)
	assert.Equal(t, "héllo wörld", toks[2].Literal.Str)
}

func TestScanTrueFalseNull(t *testing.T) {
	toks, err := lexer.Scan(`true false null`)
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, token.KindTrue, toks[0].Kind)
	assert.True(t, toks[0].Literal.Bool)
	assert.Equal(t, token.KindFalse, toks[1].Kind)
	assert.Equal(t, token.KindNull, toks[2].Kind)
	assert.True(t, toks[2].Literal.IsNull)
}
