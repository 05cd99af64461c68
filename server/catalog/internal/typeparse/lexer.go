// Package typeparse tokenizes type strings such as "map<string,array<int>>"
// or "ROW<a INT NOT NULL>" for the recursive descent parsers built on it.
package typeparse

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenKind classifies a token
type TokenKind int

const (
	EOF TokenKind = iota
	Ident
	Number
	Punct
)

// Token is one lexeme of a type string
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// Lexer splits a type string into identifiers, numbers and the punctuation
// < > ( ) , : on demand. Backquoted identifiers keep their inner text.
type Lexer struct {
	input string
	pos   int
	peek  *Token
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Input returns the string being lexed
func (l *Lexer) Input() string {
	return l.input
}

func (l *Lexer) Peek() (Token, error) {
	if l.peek == nil {
		tok, err := l.scan()
		if err != nil {
			return Token{}, err
		}
		l.peek = &tok
	}
	return *l.peek, nil
}

func (l *Lexer) Next() (Token, error) {
	tok, err := l.Peek()
	if err != nil {
		return Token{}, err
	}
	l.peek = nil
	return tok, nil
}

// Accept consumes the next token if it is the punctuation p
func (l *Lexer) Accept(p string) (bool, error) {
	tok, err := l.Peek()
	if err != nil {
		return false, err
	}
	if tok.Kind == Punct && tok.Text == p {
		l.peek = nil
		return true, nil
	}
	return false, nil
}

// AcceptKeyword consumes the next token if it is the identifier kw, ignoring case
func (l *Lexer) AcceptKeyword(kw string) (bool, error) {
	tok, err := l.Peek()
	if err != nil {
		return false, err
	}
	if tok.Kind == Ident && strings.EqualFold(tok.Text, kw) {
		l.peek = nil
		return true, nil
	}
	return false, nil
}

func (l *Lexer) Expect(p string) error {
	tok, err := l.Next()
	if err != nil {
		return err
	}
	if tok.Kind != Punct || tok.Text != p {
		return l.Errorf(tok, "expected %q", p)
	}
	return nil
}

func (l *Lexer) ExpectIdent() (string, error) {
	tok, err := l.Next()
	if err != nil {
		return "", err
	}
	if tok.Kind != Ident {
		return "", l.Errorf(tok, "expected identifier")
	}
	return tok.Text, nil
}

func (l *Lexer) ExpectInt() (int, error) {
	tok, err := l.Next()
	if err != nil {
		return 0, err
	}
	if tok.Kind != Number {
		return 0, l.Errorf(tok, "expected number")
	}
	n, err := strconv.Atoi(tok.Text)
	if err != nil {
		return 0, l.Errorf(tok, "number out of range")
	}
	return n, nil
}

// ExpectEOF fails unless the whole input was consumed
func (l *Lexer) ExpectEOF() error {
	tok, err := l.Next()
	if err != nil {
		return err
	}
	if tok.Kind != EOF {
		return l.Errorf(tok, "unexpected trailing input")
	}
	return nil
}

func (l *Lexer) Errorf(tok Token, format string, args ...interface{}) error {
	found := tok.Text
	if tok.Kind == EOF {
		found = "end of input"
	}
	return fmt.Errorf("%s at offset %d in %q (found %s)", fmt.Sprintf(format, args...), tok.Pos, l.input, found)
}

func (l *Lexer) scan() (Token, error) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Kind: EOF, Pos: start}, nil
	}

	c := l.input[l.pos]
	switch {
	case strings.IndexByte("<>(),:", c) >= 0:
		l.pos++
		return Token{Kind: Punct, Text: string(c), Pos: start}, nil
	case c == '`':
		end := strings.IndexByte(l.input[l.pos+1:], '`')
		if end < 0 {
			return Token{}, fmt.Errorf("unterminated quoted identifier at offset %d in %q", start, l.input)
		}
		text := l.input[l.pos+1 : l.pos+1+end]
		l.pos += end + 2
		return Token{Kind: Ident, Text: text, Pos: start}, nil
	case isDigit(c):
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		return Token{Kind: Number, Text: l.input[start:l.pos], Pos: start}, nil
	case isIdentStart(c):
		for l.pos < len(l.input) && (isIdentStart(l.input[l.pos]) || isDigit(l.input[l.pos])) {
			l.pos++
		}
		return Token{Kind: Ident, Text: l.input[start:l.pos], Pos: start}, nil
	default:
		return Token{}, fmt.Errorf("unexpected character %q at offset %d in %q", c, start, l.input)
	}
}

func isSpace(c byte) bool      { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
