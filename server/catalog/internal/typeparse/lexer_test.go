package typeparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexerTokens(t *testing.T) {
	l := NewLexer(" map<string, `my col`:decimal(10,2)> ")

	var got []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		if tok.Kind == EOF {
			break
		}
		got = append(got, tok)
	}

	texts := make([]string, len(got))
	for i, tok := range got {
		texts[i] = tok.Text
	}
	assert.Equal(t, []string{"map", "<", "string", ",", "my col", ":", "decimal", "(", "10", ",", "2", ")", ">"}, texts)
	assert.Equal(t, Number, got[8].Kind)
	assert.Equal(t, Ident, got[4].Kind)
}

func TestLexerHelpers(t *testing.T) {
	l := NewLexer("varchar(20) not null")

	ident, err := l.ExpectIdent()
	require.NoError(t, err)
	assert.Equal(t, "varchar", ident)
	require.NoError(t, l.Expect("("))
	n, err := l.ExpectInt()
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	require.NoError(t, l.Expect(")"))

	ok, err := l.AcceptKeyword("NOT")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.Accept(",")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = l.AcceptKeyword("NULL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, l.ExpectEOF())
}

func TestLexerErrors(t *testing.T) {
	_, err := NewLexer("int;").Next()
	require.NoError(t, err)

	l := NewLexer("int;")
	_, _ = l.Next()
	_, err = l.Next()
	assert.Error(t, err)

	_, err = NewLexer("`open").Next()
	assert.Error(t, err)

	err = NewLexer("int extra").Expect("<")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "offset 0")
}
