package driver

import (
	"errors"
	"fmt"

	"github.com/nihei9/earley/grammar"
	"github.com/tliron/commonlog"
)

var (
	ErrReconstructionFailed = errors.New("failed to reconstruct a derivation tree")
	ErrTreeTooDeep          = errors.New("a derivation tree is too deep")
)

const defaultMaxTreeDepth = 10000

// Edge is a completed rule spanning the tokens from Origin to End (exclusive).
type Edge struct {
	Origin int
	End    int
	Rule   *grammar.Rule
}

// indexEdges collects edges from the complete items and groups them by origin. The state sets are walked
// from the last one to the first, so the edges at an origin are ordered by end in descending order, and
// edges having the same end keep the order of the chart. The extractor tries edges in this order, and
// the first derivation it finds is the result.
func indexEdges(chart *Chart, gram *grammar.Grammar) [][]*Edge {
	edges := make([][]*Edge, len(chart.Sets))
	for end := len(chart.Sets) - 1; end >= 0; end-- {
		for _, item := range chart.Sets[end].Items() {
			rule, ok := gram.Rule(item.Rule)
			if !ok || item.Dot != len(rule.Body) {
				continue
			}
			edges[item.Origin] = append(edges[item.Origin], &Edge{
				Origin: item.Origin,
				End:    end,
				Rule:   rule,
			})
		}
	}
	return edges
}

type span struct {
	from int
	to   int
	sym  grammar.SymbolID
}

type splitKey struct {
	rule grammar.RuleID
	dot  int
	from int
	to   int
}

type extractor struct {
	gram     *grammar.Grammar
	tokens   []Token
	edges    [][]*Edge
	maxDepth int
	depth    int

	// active holds the spans being built on the current path.
	active map[span]struct{}

	// failed holds splits known to fail. A split is recorded only when no cycle was cut while
	// evaluating it, because such a failure depends on the path.
	failed    map[splitKey]struct{}
	cycleCuts int
}

func newExtractor(chart *Chart, gram *grammar.Grammar, maxDepth int) *extractor {
	return &extractor{
		gram:     gram,
		tokens:   chart.Tokens,
		edges:    indexEdges(chart, gram),
		maxDepth: maxDepth,
		active:   map[span]struct{}{},
		failed:   map[splitKey]struct{}{},
	}
}

// Extract rebuilds one derivation tree of the start symbol spanning all tokens except the EOF token.
// When the input is ambiguous, it returns the first derivation found in the order of the edges.
func Extract(chart *Chart, gram *grammar.Grammar) (*Node, error) {
	return newExtractor(chart, gram, defaultMaxTreeDepth).extract()
}

func (e *extractor) extract() (*Node, error) {
	if len(e.tokens) == 0 {
		return nil, fmt.Errorf("%w: the chart has no tokens", ErrReconstructionFailed)
	}

	log := commonlog.GetLogger("earley.extractor")

	to := len(e.tokens) - 1
	tree, err := e.buildTree(0, to, e.gram.Start())
	if err != nil {
		return nil, err
	}
	if tree == nil {
		log.Debugf("no derivation of %v spans 0..%v", e.gram.Name(e.gram.Start()), to)
		return nil, fmt.Errorf("%w: no derivation of %v spans the input", ErrReconstructionFailed, e.gram.Name(e.gram.Start()))
	}
	log.Debugf("rebuilt a tree; memoized failures: %v, cycle cuts: %v", len(e.failed), e.cycleCuts)
	return tree, nil
}

// buildTree returns a tree of the symbol spanning the tokens from `from` to `to` (exclusive). When no such
// tree exists, it returns nil without an error; errors abort the whole extraction.
func (e *extractor) buildTree(from, to int, sym grammar.SymbolID) (*Node, error) {
	if e.gram.IsTerminal(sym) {
		if from+1 != to || e.tokens[from].Terminal != sym {
			return nil, nil
		}
		return e.newLeaf(from), nil
	}

	s := span{
		from: from,
		to:   to,
		sym:  sym,
	}
	if _, ok := e.active[s]; ok {
		e.cycleCuts++
		return nil, nil
	}
	if e.depth >= e.maxDepth {
		return nil, fmt.Errorf("%w: the limit is %v", ErrTreeTooDeep, e.maxDepth)
	}
	e.active[s] = struct{}{}
	e.depth++
	defer func() {
		delete(e.active, s)
		e.depth--
	}()

	// A candidate must span exactly [from, to); a shorter one would leave tokens without leaves.
	for _, edge := range e.edges[from] {
		if edge.Rule.Head != sym || edge.End != to {
			continue
		}

		if isAllTerminal(e.gram, edge.Rule) {
			if children, ok := e.matchTerminals(edge.Rule, from, to); ok {
				return e.newNode(sym, children), nil
			}
			continue
		}

		children, err := e.split(edge.Rule, 0, from, to)
		if err != nil {
			return nil, err
		}
		if children != nil {
			return e.newNode(sym, children), nil
		}
	}

	return nil, nil
}

// split divides the tokens from `from` to `to` among the body symbols after the dot and returns their
// subtrees. It returns nil when no division exists.
func (e *extractor) split(rule *grammar.Rule, dot, from, to int) ([]*Node, error) {
	if dot == len(rule.Body) {
		if from != to {
			return nil, nil
		}
		return []*Node{}, nil
	}
	// Every symbol spans at least one token.
	if to-from < len(rule.Body)-dot {
		return nil, nil
	}

	key := splitKey{
		rule: rule.ID,
		dot:  dot,
		from: from,
		to:   to,
	}
	if _, ok := e.failed[key]; ok {
		return nil, nil
	}
	cuts := e.cycleCuts

	sym := rule.Body[dot]
	if e.gram.IsTerminal(sym) {
		if e.tokens[from].Terminal == sym {
			rest, err := e.split(rule, dot+1, from+1, to)
			if err != nil {
				return nil, err
			}
			if rest != nil {
				return append([]*Node{e.newLeaf(from)}, rest...), nil
			}
		}
	} else {
		tried := map[int]struct{}{}
		for _, edge := range e.edges[from] {
			if edge.Rule.Head != sym || edge.End > to {
				continue
			}
			if _, ok := tried[edge.End]; ok {
				continue
			}
			tried[edge.End] = struct{}{}

			rest, err := e.split(rule, dot+1, edge.End, to)
			if err != nil {
				return nil, err
			}
			if rest == nil {
				continue
			}
			child, err := e.buildTree(from, edge.End, sym)
			if err != nil {
				return nil, err
			}
			if child == nil {
				continue
			}
			return append([]*Node{child}, rest...), nil
		}
	}

	if e.cycleCuts == cuts {
		e.failed[key] = struct{}{}
	}
	return nil, nil
}

// matchTerminals succeeds only when the body covers [from, to) one token per symbol.
func (e *extractor) matchTerminals(rule *grammar.Rule, from, to int) ([]*Node, bool) {
	if to-from != len(rule.Body) {
		return nil, false
	}
	children := make([]*Node, len(rule.Body))
	for i, sym := range rule.Body {
		if e.tokens[from+i].Terminal != sym {
			return nil, false
		}
		children[i] = e.newLeaf(from + i)
	}
	return children, true
}

func isAllTerminal(gram *grammar.Grammar, rule *grammar.Rule) bool {
	for _, sym := range rule.Body {
		if !gram.IsTerminal(sym) {
			return false
		}
	}
	return true
}

func (e *extractor) newLeaf(pos int) *Node {
	tok := e.tokens[pos]
	return &Node{
		Type:     NodeTypeTerminal,
		Symbol:   tok.Terminal,
		KindName: e.gram.Name(tok.Terminal),
		Text:     tok.Text,
		Row:      tok.Row,
		Col:      tok.Col,
	}
}

func (e *extractor) newNode(sym grammar.SymbolID, children []*Node) *Node {
	node := &Node{
		Type:     NodeTypeNonTerminal,
		Symbol:   sym,
		KindName: e.gram.Name(sym),
		Children: children,
	}
	if len(children) > 0 {
		node.Row = children[0].Row
		node.Col = children[0].Col
	}
	return node
}
