package spec

import (
	"fmt"
	"io"
	"sync"

	verr "github.com/nihei9/earley/error"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

type tokenKind string

const (
	tokenKindSymbol   = tokenKind("symbol")
	tokenKindTerminal = tokenKind("terminal")
	tokenKindArrow    = tokenKind("->")
	tokenKindNewline  = tokenKind("newline")
	tokenKindEOF      = tokenKind("eof")
	tokenKindInvalid  = tokenKind("invalid")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newSymbolToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindSymbol,
		text: text,
		pos:  pos,
	}
}

func newTerminalToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindTerminal,
		text: text,
		pos:  pos,
	}
}

func newMarkToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

func newInvalidToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindInvalid,
		text: text,
		pos:  pos,
	}
}

// The entries are ordered by priority; when two patterns match the same length, the earlier one wins.
var grammarLexEntries = []*mlspec.LexEntry{
	{Kind: "white_space", Pattern: `[\u{0009}\u{0020}]+`},
	{Kind: "newline", Pattern: `\u{000A}|\u{000D}\u{000A}|\u{000D}`},
	{Kind: "line_comment", Pattern: `//[^\u{000A}\u{000D}]*`},
	{Kind: "arrow", Pattern: `->`},
	{Kind: "terminal", Pattern: `'[^'\u{000A}\u{000D}]*'`},
	{Kind: "unclosed_terminal", Pattern: `'[^'\u{000A}\u{000D}]*`},
	{Kind: "symbol", Pattern: `[^\u{0009}\u{000A}\u{000D}\u{0020}']+`},
}

var (
	grammarLexSpec     *mlspec.CompiledLexSpec
	grammarLexSpecErr  error
	grammarLexSpecOnce sync.Once
)

func compiledGrammarLexSpec() (*mlspec.CompiledLexSpec, error) {
	grammarLexSpecOnce.Do(func() {
		grammarLexSpec, grammarLexSpecErr = CompileLexSpec("grammar", grammarLexEntries)
	})
	return grammarLexSpec, grammarLexSpecErr
}

type lexer struct {
	s   *mlspec.CompiledLexSpec
	d   *mldriver.Lexer
	cur Cursor
}

func newLexer(src io.Reader) (*lexer, error) {
	s, err := compiledGrammarLexSpec()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s: s,
		d: d,
	}, nil
}

func (l *lexer) next() (*token, error) {
	for {
		tok, err := l.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return newEOFToken(newPosition(l.cur.Pos())), nil
		}
		pos := newPosition(tok.Row+1, tok.Col+1)
		l.cur.Advance(tok.Row, tok.Col, tok.Lexeme)
		if tok.Invalid {
			return newInvalidToken(string(tok.Lexeme), pos), nil
		}

		text := string(tok.Lexeme)
		switch KindName(l.s, int(tok.KindID)) {
		case "white_space", "line_comment":
			continue
		case "newline":
			return newMarkToken(tokenKindNewline, pos), nil
		case "arrow":
			return newMarkToken(tokenKindArrow, pos), nil
		case "terminal":
			// Remove the enclosing quotes.
			name := text[1 : len(text)-1]
			if name == "" {
				return nil, &verr.SpecError{
					Cause: synErrEmptyTerminal,
					Row:   pos.Row,
					Col:   pos.Col,
				}
			}
			return newTerminalToken(name, pos), nil
		case "unclosed_terminal":
			return nil, &verr.SpecError{
				Cause:  synErrUnclosedTerminal,
				Detail: text,
				Row:    pos.Row,
				Col:    pos.Col,
			}
		case "symbol":
			return newSymbolToken(text, pos), nil
		default:
			return nil, fmt.Errorf("unknown token kind: %v", tok.KindID)
		}
	}
}
