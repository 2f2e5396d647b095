package spec

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/earley/error"
)

func TestLexer_Run(t *testing.T) {
	symTok := func(text string, row, col int) *token {
		return newSymbolToken(text, newPosition(row, col))
	}

	termTok := func(text string, row, col int) *token {
		return newTerminalToken(text, newPosition(row, col))
	}

	markTok := func(kind tokenKind, row, col int) *token {
		return newMarkToken(kind, newPosition(row, col))
	}

	tests := []struct {
		caption string
		src     string
		tokens  []*token
		err     error
	}{
		{
			caption: "the lexer can recognize all kinds of tokens",
			src:     `Sum -> Number '+' Sum`,
			tokens: []*token{
				symTok("Sum", 1, 1),
				markTok(tokenKindArrow, 1, 5),
				symTok("Number", 1, 8),
				termTok("+", 1, 15),
				symTok("Sum", 1, 19),
				newEOFToken(newPosition(1, 22)),
			},
		},
		{
			caption: "the lexer skips white spaces and line comments",
			src:     "a\t->   'x' // comment\n// another comment\nb -> a",
			tokens: []*token{
				symTok("a", 1, 1),
				markTok(tokenKindArrow, 1, 3),
				termTok("x", 1, 8),
				markTok(tokenKindNewline, 1, 22),
				markTok(tokenKindNewline, 2, 19),
				symTok("b", 3, 1),
				markTok(tokenKindArrow, 3, 3),
				symTok("a", 3, 6),
				newEOFToken(newPosition(3, 7)),
			},
		},
		{
			caption: "an arrow followed by other characters is a symbol",
			src:     `->x`,
			tokens: []*token{
				symTok("->x", 1, 1),
				newEOFToken(newPosition(1, 4)),
			},
		},
		{
			caption: "a terminal can contain any characters except quotes and newlines",
			src:     `'-> x'`,
			tokens: []*token{
				termTok("-> x", 1, 1),
				newEOFToken(newPosition(1, 7)),
			},
		},
		{
			caption: "a terminal must include at least one character",
			src:     `a -> ''`,
			err:     synErrEmptyTerminal,
		},
		{
			caption: "a terminal must be closed on the same line",
			src:     "a -> 'x\nb -> 'y'",
			err:     synErrUnclosedTerminal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			l, err := newLexer(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			n := 0
			for {
				tok, err := l.next()
				if tt.err != nil {
					if err == nil {
						if tok.kind == tokenKindEOF {
							t.Fatalf("expected error did not occur; want: %v", tt.err)
						}
						continue
					}
					var specErr *verr.SpecError
					if !errors.As(err, &specErr) {
						t.Fatalf("unexpected error type; want: %T, got: %T", specErr, err)
					}
					if specErr.Cause != tt.err {
						t.Fatalf("unexpected error; want: %v, got: %v", tt.err, specErr.Cause)
					}
					break
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if n >= len(tt.tokens) {
					t.Fatalf("too many tokens; want: %v tokens, got: %+v", len(tt.tokens), tok)
				}
				testToken(t, tok, tt.tokens[n])
				n++
				if tok.kind == tokenKindEOF {
					break
				}
			}
		})
	}
}

func testToken(t *testing.T, tok, expected *token) {
	t.Helper()
	if tok.kind != expected.kind || tok.text != expected.text || tok.pos != expected.pos {
		t.Fatalf("unexpected token; want: %+v, got: %+v", expected, tok)
	}
}
