package driver

import (
	"fmt"
	"io"
	"strings"

	"github.com/nihei9/earley/grammar"
)

// SyntaxError reports an input that isn't a sentence of the grammar. Token is the first token the
// parser couldn't scan. ExpectedTerminals lists the terminals acceptable at that position.
type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             Token
	ExpectedTerminals []string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v:%v: %v: %v", e.Row, e.Col, e.Message, e.Token.Text)
	if len(e.ExpectedTerminals) > 0 {
		fmt.Fprintf(&b, "; expected: %v", strings.Join(e.ExpectedTerminals, ", "))
	}
	return b.String()
}

type ParserOption func(p *Parser) error

// MaxTreeDepth limits the depth of a derivation tree the parser rebuilds.
func MaxTreeDepth(depth int) ParserOption {
	return func(p *Parser) error {
		if depth <= 0 {
			return fmt.Errorf("a max tree depth must be greater than 0: %v", depth)
		}
		p.maxDepth = depth
		return nil
	}
}

// SkipAcceptanceCheck makes the parser try to rebuild a tree without checking whether the chart
// accepts the input. A rejected input then fails with ErrReconstructionFailed.
func SkipAcceptanceCheck() ParserOption {
	return func(p *Parser) error {
		p.skipAcceptance = true
		return nil
	}
}

type Parser struct {
	gram           *grammar.Grammar
	maxDepth       int
	skipAcceptance bool
	chart          *Chart
}

func NewParser(gram *grammar.Grammar, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		gram:     gram,
		maxDepth: defaultMaxTreeDepth,
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Parse tokenizes a source, builds its chart, and rebuilds one derivation tree.
func (p *Parser) Parse(src io.Reader) (*Node, error) {
	p.chart = nil

	toks, err := Tokenize(p.gram, src)
	if err != nil {
		return nil, err
	}

	p.chart = Recognize(p.gram, toks)

	if !p.skipAcceptance && !p.chart.Accepted(p.gram) {
		return nil, p.chart.SyntaxError(p.gram)
	}

	return newExtractor(p.chart, p.gram, p.maxDepth).extract()
}

// Chart returns the chart that the last call of Parse built. It is nil when Parse failed before
// building a chart.
func (p *Parser) Chart() *Chart {
	return p.chart
}
