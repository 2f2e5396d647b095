package grammar

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/earley/error"
	"github.com/nihei9/earley/spec"
)

func buildGrammar(t *testing.T, src string) (*Grammar, *GrammarBuilder) {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := &GrammarBuilder{
		AST: ast,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return gram, b
}

func TestGrammarBuilder_Build(t *testing.T) {
	gram, b := buildGrammar(t, `
Sum -> Number
Sum -> Number '+' Sum
Number -> '1'
Number -> Number '1'
`)
	if len(b.Warnings) > 0 {
		t.Fatalf("unexpected warnings: %v", b.Warnings)
	}

	expectedSyms := []struct {
		name     string
		terminal bool
	}{
		{name: "<eof>", terminal: true},
		{name: "Sum"},
		{name: "Number"},
		{name: "+", terminal: true},
		{name: "1", terminal: true},
	}
	syms := gram.Symbols()
	if len(syms) != len(expectedSyms) {
		t.Fatalf("unexpected symbol count; want: %v, got: %v", len(expectedSyms), len(syms))
	}
	for i, e := range expectedSyms {
		sym := syms[i]
		if sym.ID != SymbolID(i) || sym.Name != e.name || sym.Terminal != e.terminal {
			t.Fatalf("unexpected symbol; want: %v %v (terminal: %v), got: %v", i, e.name, e.terminal, sym)
		}
		byName, ok := gram.SymbolByName(e.name)
		if !ok || byName != sym {
			t.Fatalf("symbol was not found by name: %v", e.name)
		}
	}

	sum, _ := gram.SymbolByName("Sum")
	if gram.Start() != sum.ID {
		t.Fatalf("unexpected start symbol; want: %v, got: %v", sum.ID, gram.Start())
	}
	if gram.EOF() != SymbolIDEOF {
		t.Fatalf("unexpected EOF symbol; want: %v, got: %v", SymbolIDEOF, gram.EOF())
	}

	rules := gram.RulesOf(sum.ID)
	if len(rules) != 2 || rules[0].ID != 0 || rules[1].ID != 1 {
		t.Fatalf("rules must be enumerated in declaration order: %+v", rules)
	}
	if len(gram.Rules()) != 4 {
		t.Fatalf("unexpected rule count; want: 4, got: %v", len(gram.Rules()))
	}
	r, ok := gram.Rule(3)
	if !ok {
		t.Fatalf("rule 3 was not found")
	}
	if s := gram.FormatRule(r, -1); s != "Number -> Number '1'" {
		t.Fatalf("unexpected rule text; want: %v, got: %v", "Number -> Number '1'", s)
	}
	if s := gram.FormatRule(r, 1); s != "Number -> Number • '1'" {
		t.Fatalf("unexpected item text; want: %v, got: %v", "Number -> Number • '1'", s)
	}
	if s := gram.FormatRule(r, 2); s != "Number -> Number '1' •" {
		t.Fatalf("unexpected item text; want: %v, got: %v", "Number -> Number '1' •", s)
	}
	if _, ok := gram.Rule(4); ok {
		t.Fatalf("rule 4 must not exist")
	}

	terms := gram.Terminals()
	if len(terms) != 3 || !terms[0].IsEOF() {
		t.Fatalf("unexpected terminals: %v", terms)
	}
}

func TestGrammarBuilder_Terminality(t *testing.T) {
	tests := []struct {
		caption      string
		src          string
		terminals    []string
		nonTerminals []string
	}{
		{
			caption:      "a quoted atom introduces a terminal",
			src:          `s -> 'a' b`,
			terminals:    []string{"a"},
			nonTerminals: []string{"s", "b"},
		},
		{
			caption:      "an unquoted atom refers to a terminal already seen",
			src:          "s -> 'a' t\nt -> a",
			terminals:    []string{"a"},
			nonTerminals: []string{"s", "t"},
		},
		{
			caption:      "the first appearance decides the kind",
			src:          "s -> a\nt -> 'a'",
			nonTerminals: []string{"s", "t", "a"},
		},
		{
			caption:      "a head is a non-terminal even if it appears quoted earlier",
			src:          "s -> 'a'\na -> 'b'",
			terminals:    []string{"b"},
			nonTerminals: []string{"s", "a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			gram, _ := buildGrammar(t, tt.src)
			for _, name := range tt.terminals {
				sym, ok := gram.SymbolByName(name)
				if !ok {
					t.Fatalf("symbol was not found: %v", name)
				}
				if !sym.Terminal || !gram.IsTerminal(sym.ID) {
					t.Fatalf("%v must be a terminal", name)
				}
			}
			for _, name := range tt.nonTerminals {
				sym, ok := gram.SymbolByName(name)
				if !ok {
					t.Fatalf("symbol was not found: %v", name)
				}
				if sym.Terminal || gram.IsTerminal(sym.ID) {
					t.Fatalf("%v must be a non-terminal", name)
				}
			}
		})
	}
}

func TestGrammarBuilder_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		errs    []error
	}{
		{
			caption: "a head cannot have the reserved name",
			src:     `<eof> -> 'a'`,
			errs:    []error{semErrReservedName},
		},
		{
			caption: "a body cannot contain the reserved name",
			src:     "s -> 'a' <eof>\nt -> '<eof>'",
			errs:    []error{semErrReservedName, semErrReservedName},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := spec.Parse(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			b := &GrammarBuilder{
				AST: ast,
			}
			gram, err := b.Build()
			if gram != nil {
				t.Fatalf("grammar must be nil")
			}
			var specErrs verr.SpecErrors
			if !errors.As(err, &specErrs) {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(specErrs) != len(tt.errs) {
				t.Fatalf("unexpected error count; want: %v, got: %v", len(tt.errs), len(specErrs))
			}
			for i, e := range tt.errs {
				if specErrs[i].Cause != e {
					t.Fatalf("unexpected error; want: %v, got: %v", e, specErrs[i].Cause)
				}
			}
		})
	}
}

func TestGrammarBuilder_NoRule(t *testing.T) {
	tests := []struct {
		caption string
		ast     *spec.RootNode
	}{
		{
			caption: "a nil AST",
		},
		{
			caption: "an AST without rules",
			ast:     &spec.RootNode{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			b := &GrammarBuilder{
				AST: tt.ast,
			}
			gram, err := b.Build()
			if gram != nil {
				t.Fatalf("grammar must be nil")
			}
			var specErr *verr.SpecError
			if !errors.As(err, &specErr) {
				t.Fatalf("unexpected error: %v", err)
			}
			if specErr.Cause != semErrNoRule {
				t.Fatalf("unexpected error; want: %v, got: %v", semErrNoRule, specErr.Cause)
			}
			if !errors.Is(err, semErrNoRule) {
				t.Fatalf("the error must wrap %v", semErrNoRule)
			}
		})
	}
}

func TestGrammarBuilder_Warnings(t *testing.T) {
	_, b := buildGrammar(t, `
s -> a 'x'
s -> u
t -> 'y'
`)
	expected := []struct {
		cause  error
		detail string
	}{
		{cause: semErrUndefinedSym, detail: "a"},
		{cause: semErrUndefinedSym, detail: "u"},
		{cause: semErrUnreachableRule, detail: "t -> 'y'"},
	}
	if len(b.Warnings) != len(expected) {
		t.Fatalf("unexpected warning count; want: %v, got: %v (%v)", len(expected), len(b.Warnings), b.Warnings)
	}
	for i, e := range expected {
		w := b.Warnings[i]
		if w.Cause != e.cause || w.Detail != e.detail {
			t.Fatalf("unexpected warning; want: %v: %v, got: %v: %v", e.cause, e.detail, w.Cause, w.Detail)
		}
	}
}

func TestGrammar_Write(t *testing.T) {
	src := `Sum -> Number
Sum -> Number '+' Sum
Number -> '1'
Number -> Number '1'
`
	gram, _ := buildGrammar(t, src)

	var b bytes.Buffer
	err := gram.Write(&b)
	if err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.HasPrefix(out, "Start symbol: Sum\n") {
		t.Fatalf("output must start with the start symbol:\n%v", out)
	}
	if !strings.HasSuffix(out, "# Rules\n\n"+src) {
		t.Fatalf("output must end with the rules:\n%v", out)
	}
	if !strings.Contains(out, "   3 terminal     +\n") {
		t.Fatalf("output must contain the symbol table:\n%v", out)
	}
}
