package driver

import (
	"github.com/nihei9/earley/grammar"
	"github.com/tliron/commonlog"
)

// Recognize builds the chart of the tokens. Rejection of an input isn't an error; it shows up as the
// shape of the chart, and Chart.Accepted tells it.
func Recognize(gram *grammar.Grammar, tokens []Token) *Chart {
	log := commonlog.GetLogger("earley.recognizer")

	sets := make([]*StateSet, len(tokens)+1)
	for i := range sets {
		sets[i] = newStateSet()
	}
	for _, rule := range gram.RulesOf(gram.Start()) {
		sets[0].Add(Item{
			Rule:   rule.ID,
			Dot:    0,
			Origin: 0,
		})
	}

	for i, set := range sets {
		// The set grows while we walk it; each item is visited exactly once.
		for j := 0; j < len(set.items); j++ {
			item := set.items[j]
			rule, _ := gram.Rule(item.Rule)

			if item.Dot == len(rule.Body) {
				complete(gram, sets, i, rule.Head, item.Origin)
				continue
			}

			next := rule.Body[item.Dot]
			if gram.IsTerminal(next) {
				if i < len(tokens) && tokens[i].Terminal == next {
					sets[i+1].Add(item.advance())
				}
				continue
			}

			for _, r := range gram.RulesOf(next) {
				set.Add(Item{
					Rule:   r.ID,
					Dot:    0,
					Origin: i,
				})
			}
		}
		log.Debugf("set %v: %v items", i, set.Len())
	}

	return &Chart{
		Sets:   sets,
		Tokens: tokens,
	}
}

// complete advances the items in the origin set that are waiting for the head.
func complete(gram *grammar.Grammar, sets []*StateSet, pos int, head grammar.SymbolID, origin int) {
	for _, parent := range sets[origin].Items() {
		rule, _ := gram.Rule(parent.Rule)
		if parent.Dot >= len(rule.Body) || rule.Body[parent.Dot] != head {
			continue
		}
		sets[pos].Add(parent.advance())
	}
}
