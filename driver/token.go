package driver

import (
	"fmt"
	"io"
	"sync"

	"github.com/nihei9/earley/grammar"
	"github.com/nihei9/earley/spec"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

// Token is a terminal occurrence in an input. Row and Col are 1-based.
type Token struct {
	Terminal grammar.SymbolID
	Text     string
	Row      int
	Col      int
}

func (t Token) String() string {
	return fmt.Sprintf("%v:%v: %v", t.Row, t.Col, t.Text)
}

// UnknownTerminalError reports an input atom that doesn't match any terminal name.
type UnknownTerminalError struct {
	Text string
	Row  int
	Col  int
}

func (e *UnknownTerminalError) Error() string {
	return fmt.Sprintf("%v:%v: unknown terminal: %v", e.Row, e.Col, e.Text)
}

const (
	tokenKindWhiteSpace = "white_space"
	tokenKindAtom       = "atom"
)

var tokenLexEntries = []*mlspec.LexEntry{
	{Kind: tokenKindWhiteSpace, Pattern: `[\u{0009}\u{000A}\u{000D}\u{0020}]+`},
	{Kind: tokenKindAtom, Pattern: `[^\u{0009}\u{000A}\u{000D}\u{0020}]+`},
}

var (
	tokenLexSpec     *mlspec.CompiledLexSpec
	tokenLexSpecErr  error
	tokenLexSpecOnce sync.Once
)

func compiledTokenLexSpec() (*mlspec.CompiledLexSpec, error) {
	tokenLexSpecOnce.Do(func() {
		tokenLexSpec, tokenLexSpecErr = spec.CompileLexSpec("token", tokenLexEntries)
	})
	return tokenLexSpec, tokenLexSpecErr
}

// Tokenize splits a source into whitespace-separated atoms and maps each atom to the terminal having
// the same name. The result always ends with exactly one EOF token.
func Tokenize(gram *grammar.Grammar, src io.Reader) ([]Token, error) {
	s, err := compiledTokenLexSpec()
	if err != nil {
		return nil, err
	}
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}

	var toks []Token
	var cur spec.Cursor
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read a token: %w", err)
		}
		if tok.EOF {
			eof, _ := gram.Symbol(gram.EOF())
			row, col := cur.Pos()
			toks = append(toks, Token{
				Terminal: eof.ID,
				Text:     eof.Name,
				Row:      row,
				Col:      col,
			})
			return toks, nil
		}
		row := tok.Row + 1
		col := tok.Col + 1
		cur.Advance(tok.Row, tok.Col, tok.Lexeme)

		text := string(tok.Lexeme)
		if tok.Invalid {
			return nil, &UnknownTerminalError{
				Text: text,
				Row:  row,
				Col:  col,
			}
		}
		if spec.KindName(s, int(tok.KindID)) == tokenKindWhiteSpace {
			continue
		}

		sym, ok := gram.SymbolByName(text)
		if !ok || !sym.Terminal || sym.IsEOF() {
			return nil, &UnknownTerminalError{
				Text: text,
				Row:  row,
				Col:  col,
			}
		}
		toks = append(toks, Token{
			Terminal: sym.ID,
			Text:     text,
			Row:      row,
			Col:      col,
		})
	}
}
