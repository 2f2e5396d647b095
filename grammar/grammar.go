package grammar

import (
	"fmt"
	"io"
	"strings"

	verr "github.com/nihei9/earley/error"
	"github.com/nihei9/earley/spec"
	"github.com/tliron/commonlog"
)

// Grammar is a set of symbols and rules. A grammar is immutable once GrammarBuilder builds it.
type Grammar struct {
	symbolTable *symbolTable
	ruleSet     *ruleSet
	start       SymbolID
}

type GrammarBuilder struct {
	AST *spec.RootNode

	// Warnings holds problems that don't prevent the grammar from working, such as a non-terminal
	// symbol without rules. Build fills it.
	Warnings verr.SpecErrors

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	if b.AST == nil || len(b.AST.Rules) == 0 {
		return nil, verr.SpecErrors{
			{
				Cause: semErrNoRule,
			},
		}
	}

	symTab := b.genSymbolTable(b.AST)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	rules, err := b.genRuleSet(b.AST, symTab)
	if err != nil {
		return nil, err
	}

	startSym, _ := symTab.reader().toSymbol(b.AST.Rules[0].Head)
	gram := &Grammar{
		symbolTable: symTab,
		ruleSet:     rules,
		start:       startSym.ID,
	}

	b.checkUnusedSymbols(gram)
	log := commonlog.GetLogger("earley.grammar")
	for _, w := range b.Warnings {
		log.Warningf("%v", w)
	}

	return gram, nil
}

// genSymbolTable assigns IDs to symbols in order of first appearance. The kind of a symbol is fixed at its
// first appearance: a quoted body element introduces a terminal symbol, and anything else introduces
// a non-terminal symbol. However, a symbol appearing as a rule head is always a non-terminal symbol even
// if its first appearance is quoted.
func (b *GrammarBuilder) genSymbolTable(root *spec.RootNode) *symbolTable {
	heads := map[string]struct{}{}
	for _, rule := range root.Rules {
		heads[rule.Head] = struct{}{}
	}

	symTab := newSymbolTable()
	w := symTab.writer()
	for _, rule := range root.Rules {
		if rule.Head == symbolNameEOF {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrReservedName,
				Detail: rule.Head,
				Row:    rule.Pos.Row,
				Col:    rule.Pos.Col,
			})
			continue
		}
		w.register(rule.Head, false)

		for _, elem := range rule.Body {
			if elem.Name == symbolNameEOF {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrReservedName,
					Detail: elem.Name,
					Row:    elem.Pos.Row,
					Col:    elem.Pos.Col,
				})
				continue
			}
			_, isHead := heads[elem.Name]
			w.register(elem.Name, elem.Quoted && !isHead)
		}
	}

	return symTab
}

func (b *GrammarBuilder) genRuleSet(root *spec.RootNode, symTab *symbolTable) (*ruleSet, error) {
	r := symTab.reader()
	rules := newRuleSet()
	for i, ruleNode := range root.Rules {
		head, ok := r.toSymbol(ruleNode.Head)
		if !ok {
			return nil, fmt.Errorf("symbol '%v' was not found in a symbol table", ruleNode.Head)
		}
		body := make([]*Symbol, len(ruleNode.Body))
		for j, elem := range ruleNode.Body {
			sym, ok := r.toSymbol(elem.Name)
			if !ok {
				return nil, fmt.Errorf("symbol '%v' was not found in a symbol table", elem.Name)
			}
			body[j] = sym
		}

		rule, err := newRule(RuleID(i), head, body)
		if err != nil {
			return nil, err
		}
		rules.append(rule)
	}

	return rules, nil
}

func (b *GrammarBuilder) checkUnusedSymbols(gram *Grammar) {
	for _, sym := range gram.symbolTable.reader().nonTerminalSymbols() {
		if len(gram.RulesOf(sym.ID)) > 0 {
			continue
		}
		for _, ruleNode := range b.AST.Rules {
			var elem *spec.ElementNode
			for _, e := range ruleNode.Body {
				if e.Name == sym.Name {
					elem = e
					break
				}
			}
			if elem == nil {
				continue
			}
			b.Warnings = append(b.Warnings, &verr.SpecError{
				Cause:  semErrUndefinedSym,
				Detail: sym.Name,
				Row:    elem.Pos.Row,
				Col:    elem.Pos.Col,
			})
			break
		}
	}

	reachable := map[SymbolID]struct{}{
		gram.start: {},
	}
	queue := []SymbolID{gram.start}
	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]
		for _, rule := range gram.RulesOf(head) {
			for _, id := range rule.Body {
				if _, ok := reachable[id]; ok {
					continue
				}
				reachable[id] = struct{}{}
				queue = append(queue, id)
			}
		}
	}
	for i, rule := range gram.ruleSet.rules {
		if _, ok := reachable[rule.Head]; ok {
			continue
		}
		ruleNode := b.AST.Rules[i]
		b.Warnings = append(b.Warnings, &verr.SpecError{
			Cause:  semErrUnreachableRule,
			Detail: gram.FormatRule(rule, -1),
			Row:    ruleNode.Pos.Row,
			Col:    ruleNode.Pos.Col,
		})
	}
}

// Start returns the start symbol, which is the head of the first rule.
func (g *Grammar) Start() SymbolID {
	return g.start
}

func (g *Grammar) EOF() SymbolID {
	return SymbolIDEOF
}

func (g *Grammar) Symbol(id SymbolID) (*Symbol, bool) {
	return g.symbolTable.reader().byID(id)
}

func (g *Grammar) SymbolByName(name string) (*Symbol, bool) {
	return g.symbolTable.reader().toSymbol(name)
}

// Symbols returns all symbols ordered by ID. The first one is always the EOF symbol.
func (g *Grammar) Symbols() []*Symbol {
	return g.symbolTable.syms
}

// Terminals returns terminal symbols ordered by ID, including the EOF symbol.
func (g *Grammar) Terminals() []*Symbol {
	return g.symbolTable.reader().terminalSymbols()
}

// IsTerminal reports whether the symbol is a terminal. Unknown symbols are not terminals.
func (g *Grammar) IsTerminal(id SymbolID) bool {
	sym, ok := g.Symbol(id)
	return ok && sym.Terminal
}

// Name returns the name of the symbol, or an empty string when the symbol is unknown.
func (g *Grammar) Name(id SymbolID) string {
	sym, ok := g.Symbol(id)
	if !ok {
		return ""
	}
	return sym.Name
}

func (g *Grammar) Rule(id RuleID) (*Rule, bool) {
	return g.ruleSet.findByID(id)
}

// Rules returns all rules in declaration order.
func (g *Grammar) Rules() []*Rule {
	return g.ruleSet.rules
}

// RulesOf returns the rules whose head is the symbol, in declaration order.
func (g *Grammar) RulesOf(head SymbolID) []*Rule {
	return g.ruleSet.findByHead(head)
}

// FormatRule returns a rule in the source format. When dot is between 0 and the body length, the result
// contains the dot marker `•` at that position.
func (g *Grammar) FormatRule(rule *Rule, dot int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v ->", g.Name(rule.Head))
	for i, id := range rule.Body {
		if i == dot {
			fmt.Fprintf(&b, " •")
		}
		fmt.Fprintf(&b, " %v", g.formatBodySymbol(id))
	}
	if dot == len(rule.Body) {
		fmt.Fprintf(&b, " •")
	}
	return b.String()
}

func (g *Grammar) formatBodySymbol(id SymbolID) string {
	sym, ok := g.Symbol(id)
	if !ok {
		return "?"
	}
	if sym.Terminal {
		return fmt.Sprintf("'%v'", sym.Name)
	}
	return sym.Name
}

// Write writes the start symbol, the symbol table, and the rules. The rule lines are in the source format,
// so the output can be read as a grammar again.
func (g *Grammar) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Start symbol: %v\n\n# Symbols\n\n", g.Name(g.start))
	if err != nil {
		return err
	}
	for _, sym := range g.Symbols() {
		kind := "non-terminal"
		if sym.Terminal {
			kind = "terminal"
		}
		_, err := fmt.Fprintf(w, "%4v %-12v %v\n", sym.ID, kind, sym.Name)
		if err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "\n# Rules\n\n")
	if err != nil {
		return err
	}
	for _, rule := range g.Rules() {
		_, err := fmt.Fprintf(w, "%v\n", g.FormatRule(rule, -1))
		if err != nil {
			return err
		}
	}
	return nil
}
