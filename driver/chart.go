package driver

import (
	"fmt"
	"io"

	"github.com/nihei9/earley/grammar"
)

// Item is a rule with a dot position and the index of the state set where the rule was predicted.
// Items are compared structurally.
type Item struct {
	Rule   grammar.RuleID
	Dot    int
	Origin int
}

func (i Item) advance() Item {
	return Item{
		Rule:   i.Rule,
		Dot:    i.Dot + 1,
		Origin: i.Origin,
	}
}

// StateSet is an insertion-ordered set of items.
type StateSet struct {
	items []Item
	index map[Item]struct{}
}

func newStateSet() *StateSet {
	return &StateSet{
		index: map[Item]struct{}{},
	}
}

// Add appends an item unless the set already contains it. It reports whether the item was added.
func (s *StateSet) Add(item Item) bool {
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = struct{}{}
	s.items = append(s.items, item)
	return true
}

func (s *StateSet) Contains(item Item) bool {
	_, ok := s.index[item]
	return ok
}

// Items returns the items in insertion order. Callers must not modify the returned slice.
func (s *StateSet) Items() []Item {
	return s.items
}

func (s *StateSet) Len() int {
	return len(s.items)
}

// Chart holds one state set per position of the tokens, plus one for the position after the last token.
type Chart struct {
	Sets   []*StateSet
	Tokens []Token
}

// Accepted reports whether the tokens form a sentence of the grammar. The decision is made at the
// position after the last real token, that is, where the EOF token is scanned.
func (c *Chart) Accepted(gram *grammar.Grammar) bool {
	if len(c.Tokens) == 0 {
		return false
	}
	for _, item := range c.Sets[len(c.Tokens)-1].Items() {
		if item.Origin != 0 {
			continue
		}
		rule, ok := gram.Rule(item.Rule)
		if !ok {
			continue
		}
		if rule.Head == gram.Start() && item.Dot == len(rule.Body) {
			return true
		}
	}
	return false
}

// lastNonEmptySet returns the index of the last state set containing items.
func (c *Chart) lastNonEmptySet() int {
	for i := len(c.Sets) - 1; i > 0; i-- {
		if c.Sets[i].Len() > 0 {
			return i
		}
	}
	return 0
}

// expectedTerminals returns the names of the terminals that the items in a state set are waiting for,
// in the order they first appear in the set.
func (c *Chart) expectedTerminals(gram *grammar.Grammar, pos int) []string {
	var terms []string
	seen := map[grammar.SymbolID]struct{}{}
	for _, item := range c.Sets[pos].Items() {
		rule, ok := gram.Rule(item.Rule)
		if !ok || item.Dot >= len(rule.Body) {
			continue
		}
		next := rule.Body[item.Dot]
		if !gram.IsTerminal(next) {
			continue
		}
		if _, ok := seen[next]; ok {
			continue
		}
		seen[next] = struct{}{}
		terms = append(terms, gram.Name(next))
	}
	return terms
}

// Write prints the items of each state set. A line `i: token` between two sets shows the token that
// moves the parser from position i to position i+1.
func (c *Chart) Write(w io.Writer, gram *grammar.Grammar) error {
	for i, set := range c.Sets {
		_, err := fmt.Fprintf(w, "# Set %v\n", i)
		if err != nil {
			return err
		}
		for _, item := range set.Items() {
			rule, ok := gram.Rule(item.Rule)
			if !ok {
				return fmt.Errorf("rule %v was not found", item.Rule)
			}
			_, err := fmt.Fprintf(w, "(%v) %v\n", item.Origin, gram.FormatRule(rule, item.Dot))
			if err != nil {
				return err
			}
		}
		if i < len(c.Tokens) {
			_, err := fmt.Fprintf(w, "\n%v: %v\n\n", i, c.Tokens[i].Text)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// SyntaxError describes why the chart rejects its tokens. The offending token is the one following the
// last non-empty state set. It returns nil when the chart accepts the tokens.
func (c *Chart) SyntaxError(gram *grammar.Grammar) *SyntaxError {
	if len(c.Tokens) == 0 || c.Accepted(gram) {
		return nil
	}

	pos := c.lastNonEmptySet()
	if pos >= len(c.Tokens) {
		pos = len(c.Tokens) - 1
	}
	tok := c.Tokens[pos]
	msg := "unexpected token"
	if tok.Terminal == gram.EOF() {
		msg = "unexpected end of input"
	}
	return &SyntaxError{
		Row:               tok.Row,
		Col:               tok.Col,
		Message:           msg,
		Token:             tok,
		ExpectedTerminals: c.expectedTerminals(gram, pos),
	}
}
