package spec

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/earley/error"
)

func TestParse(t *testing.T) {
	rule := func(head string, body ...*ElementNode) *RuleNode {
		return &RuleNode{
			Head: head,
			Body: body,
		}
	}
	sym := func(name string) *ElementNode {
		return &ElementNode{
			Name: name,
		}
	}
	term := func(name string) *ElementNode {
		return &ElementNode{
			Name:   name,
			Quoted: true,
		}
	}

	tests := []struct {
		caption string
		src     string
		ast     *RootNode
		synErrs []*SyntaxError
	}{
		{
			caption: "a grammar can contain left-recursive and right-recursive rules",
			src: `
Sum -> Number
Sum -> Number '+' Sum
Number -> '1'
Number -> Number '1'
`,
			ast: &RootNode{
				Rules: []*RuleNode{
					rule("Sum", sym("Number")),
					rule("Sum", sym("Number"), term("+"), sym("Sum")),
					rule("Number", term("1")),
					rule("Number", sym("Number"), term("1")),
				},
			},
		},
		{
			caption: "the last line doesn't need a newline",
			src:     `s -> 'a' s 'b'`,
			ast: &RootNode{
				Rules: []*RuleNode{
					rule("s", term("a"), sym("s"), term("b")),
				},
			},
		},
		{
			caption: "blank lines and comments are ignored",
			src: `
// balanced parentheses

p -> '(' ')'   // leaf

p -> '(' p ')'
`,
			ast: &RootNode{
				Rules: []*RuleNode{
					rule("p", term("("), term(")")),
					rule("p", term("("), sym("p"), term(")")),
				},
			},
		},
		{
			caption: "a grammar must have at least one rule",
			src:     "\n// nothing\n",
			synErrs: []*SyntaxError{synErrNoRule},
		},
		{
			caption: "a rule must start with its head",
			src:     `-> 'a'`,
			synErrs: []*SyntaxError{synErrNoHead},
		},
		{
			caption: "a rule head cannot be quoted",
			src:     `'a' -> 'a'`,
			synErrs: []*SyntaxError{synErrQuotedHead},
		},
		{
			caption: "the arrow must be in the second position",
			src:     `a b -> 'a'`,
			synErrs: []*SyntaxError{synErrNoArrow},
		},
		{
			caption: "a line that has only a head lacks the arrow",
			src:     "a\nb -> 'b'",
			synErrs: []*SyntaxError{synErrNoArrow},
		},
		{
			caption: "empty rules are not supported",
			src:     `a ->`,
			synErrs: []*SyntaxError{synErrEmptyBody},
		},
		{
			caption: "a rule body cannot contain an arrow",
			src:     `a -> b -> c`,
			synErrs: []*SyntaxError{synErrArrowInBody},
		},
		{
			caption: "the parser reports errors of all malformed lines",
			src: `s -> a
a 'x'
s -> 'y
b ->
s -> b`,
			synErrs: []*SyntaxError{
				synErrNoArrow,
				synErrUnclosedTerminal,
				synErrEmptyBody,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := Parse(strings.NewReader(tt.src))
			if len(tt.synErrs) > 0 {
				var specErrs verr.SpecErrors
				if !errors.As(err, &specErrs) {
					t.Fatalf("unexpected error; want: %T, got: %v", specErrs, err)
				}
				if len(specErrs) != len(tt.synErrs) {
					t.Fatalf("unexpected error count; want: %v, got: %v (%v)", len(tt.synErrs), len(specErrs), specErrs)
				}
				for i, synErr := range tt.synErrs {
					if specErrs[i].Cause != synErr {
						t.Fatalf("unexpected error; want: %v, got: %v", synErr, specErrs[i].Cause)
					}
				}
				if ast != nil {
					t.Fatalf("AST must be nil")
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if ast == nil {
					t.Fatalf("AST must be non-nil")
				}
				testRootNode(t, ast, tt.ast)
			}
		})
	}
}

func TestParse_Position(t *testing.T) {
	src := `
s -> a
a  ->   'x' b`
	ast, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	r := ast.Rules[1]
	if r.Pos != newPosition(3, 1) {
		t.Fatalf("unexpected position of a rule; want: %+v, got: %+v", newPosition(3, 1), r.Pos)
	}
	if r.Body[0].Pos != newPosition(3, 9) {
		t.Fatalf("unexpected position of an element; want: %+v, got: %+v", newPosition(3, 9), r.Body[0].Pos)
	}
	if r.Body[1].Pos != newPosition(3, 13) {
		t.Fatalf("unexpected position of an element; want: %+v, got: %+v", newPosition(3, 13), r.Body[1].Pos)
	}

	errTests := []struct {
		caption string
		src     string
		row     int
		col     int
	}{
		{
			caption: "an error in the middle of a line",
			src:     "s -> a\nb 'c'",
			row:     2,
			col:     3,
		},
		{
			caption: "an error at the end of input points just past the last character",
			src:     "Sum -> Number\nSum",
			row:     2,
			col:     4,
		},
		{
			caption: "an error at the end of input follows trailing blanks and comments",
			src:     "s -> 'a'\nt  // no arrow",
			row:     2,
			col:     15,
		},
	}
	for _, tt := range errTests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			var specErrs verr.SpecErrors
			if !errors.As(err, &specErrs) {
				t.Fatalf("unexpected error: %v", err)
			}
			if specErrs[0].Row != tt.row || specErrs[0].Col != tt.col {
				t.Fatalf("unexpected error position; want: %v:%v, got: %v:%v", tt.row, tt.col, specErrs[0].Row, specErrs[0].Col)
			}
		})
	}
}

func testRootNode(t *testing.T, root, expected *RootNode) {
	t.Helper()
	if len(root.Rules) != len(expected.Rules) {
		t.Fatalf("unexpected length of rules; want: %v, got: %v", len(expected.Rules), len(root.Rules))
	}
	for i, rule := range root.Rules {
		testRuleNode(t, rule, expected.Rules[i])
	}
}

func testRuleNode(t *testing.T, rule, expected *RuleNode) {
	t.Helper()
	if rule.Head != expected.Head {
		t.Fatalf("unexpected head; want: %v, got: %v", expected.Head, rule.Head)
	}
	if len(rule.Body) != len(expected.Body) {
		t.Fatalf("unexpected length of a body; want: %v, got: %v", len(expected.Body), len(rule.Body))
	}
	for i, elem := range rule.Body {
		testElementNode(t, elem, expected.Body[i])
	}
}

func testElementNode(t *testing.T, elem, expected *ElementNode) {
	t.Helper()
	if elem.Name != expected.Name || elem.Quoted != expected.Quoted {
		t.Fatalf("unexpected element; want: %v (quoted: %v), got: %v (quoted: %v)", expected.Name, expected.Quoted, elem.Name, elem.Quoted)
	}
}
