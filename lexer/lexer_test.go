package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightscope/bsc/lexer"
	"github.com/brightscope/bsc/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeEndsInEOF(t *testing.T) {
	toks := lexer.Tokenize("x")
	require.NotEmpty(t, toks)
	assert.Equal(t, token.KindEOF, toks[len(toks)-1].Kind)
}

func TestTokenizeEmptyArray(t *testing.T) {
	toks := lexer.Tokenize("_ = []")
	assert.Equal(t, []token.Kind{
		token.KindIdentifier, token.KindEquals, token.KindLBracket, token.KindRBracket, token.KindEOF,
	}, kinds(toks))
}

func TestTokenizeKeywordVsIdentifier(t *testing.T) {
	toks := lexer.Tokenize("sub foo")
	require.Len(t, toks, 3)
	assert.Equal(t, token.KindKeyword, toks[0].Kind)
	assert.True(t, toks[0].IsReserved)
	assert.Equal(t, token.KindIdentifier, toks[1].Kind)
	assert.False(t, toks[1].IsReserved)
}

func TestTokenizeStringWithEscapedQuote(t *testing.T) {
	toks := lexer.Tokenize(`"a""b"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.KindString, toks[0].Kind)
	assert.Equal(t, `"a"b"`, toks[0].Text)
}

func TestTokenizeCRLFNewline(t *testing.T) {
	toks := lexer.Tokenize("x\r\ny")
	require.Len(t, toks, 4)
	assert.Equal(t, token.KindNewline, toks[1].Kind)
}

func TestTokenizeCommentRunsToLineEnd(t *testing.T) {
	toks := lexer.Tokenize("x = 1 'bs:disable-line 2001\ny")
	var comment token.Token
	for _, tk := range toks {
		if tk.Kind == token.KindComment {
			comment = tk
		}
	}
	assert.Equal(t, "'bs:disable-line 2001", comment.Text)
}

func TestTokenizeMultiByteOperators(t *testing.T) {
	toks := lexer.Tokenize("a <= b && c <> d")
	got := kinds(toks)
	assert.Contains(t, got, token.KindLessEq)
	assert.Contains(t, got, token.KindAmpAmp)
	assert.Contains(t, got, token.KindNotEq)
}
