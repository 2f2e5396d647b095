package spec

import (
	"errors"
	"io"

	verr "github.com/nihei9/earley/error"
)

type RootNode struct {
	Rules []*RuleNode
}

type RuleNode struct {
	Head string
	Body []*ElementNode
	Pos  Position
}

type ElementNode struct {
	Name string

	// Quoted is true when the element is written as 'name' in the source.
	Quoted bool

	Pos Position
}

// Parse reads a grammar written one rule per line:
//
//	Sum -> Number '+' Sum
//
// When the source has malformed lines, Parse reports all of them as verr.SpecErrors.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return root, nil
}

type parser struct {
	lex     *lexer
	lastTok *token
	errs    verr.SpecErrors
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (*RootNode, error) {
	root := &RootNode{}
	for {
		rule, eof, err := p.parseRule()
		if err != nil {
			var specErr *verr.SpecError
			if !errors.As(err, &specErr) {
				return nil, err
			}
			p.errs = append(p.errs, specErr)
			eof, err = p.skipLine()
			if err != nil {
				return nil, err
			}
		}
		if rule != nil {
			root.Rules = append(root.Rules, rule)
		}
		if eof {
			break
		}
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	if len(root.Rules) == 0 {
		return nil, verr.SpecErrors{
			{
				Cause: synErrNoRule,
			},
		}
	}
	return root, nil
}

// parseRule parses one line. Blank lines yield a nil rule.
func (p *parser) parseRule() (*RuleNode, bool, error) {
	tok, err := p.next()
	if err != nil {
		return nil, false, err
	}
	switch tok.kind {
	case tokenKindEOF:
		return nil, true, nil
	case tokenKindNewline:
		return nil, false, nil
	case tokenKindSymbol:
	case tokenKindTerminal:
		return nil, false, p.errorAt(synErrQuotedHead, tok)
	default:
		return nil, false, p.errorAt(synErrNoHead, tok)
	}
	rule := &RuleNode{
		Head: tok.text,
		Pos:  tok.pos,
	}

	tok, err = p.next()
	if err != nil {
		return nil, false, err
	}
	if tok.kind != tokenKindArrow {
		return nil, false, p.errorAt(synErrNoArrow, tok)
	}
	arrow := tok

	for {
		tok, err := p.next()
		if err != nil {
			return nil, false, err
		}
		switch tok.kind {
		case tokenKindSymbol, tokenKindTerminal:
			rule.Body = append(rule.Body, &ElementNode{
				Name:   tok.text,
				Quoted: tok.kind == tokenKindTerminal,
				Pos:    tok.pos,
			})
			continue
		case tokenKindArrow:
			return nil, false, p.errorAt(synErrArrowInBody, tok)
		case tokenKindNewline, tokenKindEOF:
			if len(rule.Body) == 0 {
				return nil, false, p.errorAt(synErrEmptyBody, arrow)
			}
			return rule, tok.kind == tokenKindEOF, nil
		default:
			return nil, false, p.errorAt(synErrInvalidToken, tok)
		}
	}
}

func (p *parser) skipLine() (bool, error) {
	// The token that caused the error may already be the end of the line.
	if p.lastTok != nil {
		switch p.lastTok.kind {
		case tokenKindEOF:
			return true, nil
		case tokenKindNewline:
			return false, nil
		}
	}
	for {
		tok, err := p.next()
		if err != nil {
			var specErr *verr.SpecError
			if errors.As(err, &specErr) {
				continue
			}
			return false, err
		}
		switch tok.kind {
		case tokenKindEOF:
			return true, nil
		case tokenKindNewline:
			return false, nil
		}
	}
}

func (p *parser) next() (*token, error) {
	tok, err := p.lex.next()
	if err != nil {
		p.lastTok = nil
		return nil, err
	}
	p.lastTok = tok
	return tok, nil
}

func (p *parser) errorAt(cause *SyntaxError, tok *token) *verr.SpecError {
	return &verr.SpecError{
		Cause:  cause,
		Detail: tok.text,
		Row:    tok.pos.Row,
		Col:    tok.pos.Col,
	}
}
