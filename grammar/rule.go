package grammar

import "fmt"

type RuleID int

func (id RuleID) Int() int {
	return int(id)
}

type Rule struct {
	ID   RuleID
	Head SymbolID
	Body []SymbolID
}

func newRule(id RuleID, head *Symbol, body []*Symbol) (*Rule, error) {
	if head.Terminal {
		return nil, fmt.Errorf("a rule head must be a non-terminal symbol; head: %v", head)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("a rule body must have at least one symbol; head: %v", head)
	}

	b := make([]SymbolID, len(body))
	for i, sym := range body {
		if sym.IsEOF() {
			return nil, fmt.Errorf("a rule body cannot contain the EOF symbol; head: %v", head)
		}
		b[i] = sym.ID
	}

	return &Rule{
		ID:   id,
		Head: head.ID,
		Body: b,
	}, nil
}

type ruleSet struct {
	rules      []*Rule
	head2Rules map[SymbolID][]*Rule
}

func newRuleSet() *ruleSet {
	return &ruleSet{
		head2Rules: map[SymbolID][]*Rule{},
	}
}

func (rs *ruleSet) append(rule *Rule) {
	rs.rules = append(rs.rules, rule)
	rs.head2Rules[rule.Head] = append(rs.head2Rules[rule.Head], rule)
}

func (rs *ruleSet) findByID(id RuleID) (*Rule, bool) {
	if id < 0 || id.Int() >= len(rs.rules) {
		return nil, false
	}
	return rs.rules[id], true
}

// findByHead returns rules having the head in declaration order.
func (rs *ruleSet) findByHead(head SymbolID) []*Rule {
	return rs.head2Rules[head]
}
