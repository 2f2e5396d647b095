package test

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/nihei9/earley/driver"
	"github.com/nihei9/earley/grammar"
	"github.com/nihei9/earley/spec"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

type TreeDiff struct {
	ExpectedPath string
	ActualPath   string
	Message      string
}

func newTreeDiff(expected, actual *Tree, message string) *TreeDiff {
	return &TreeDiff{
		ExpectedPath: expected.path(),
		ActualPath:   actual.path(),
		Message:      message,
	}
}

// Tree is an expected derivation tree. A leaf having Text represents a terminal node.
type Tree struct {
	Parent   *Tree
	Offset   int
	Kind     string
	Text     string
	Terminal bool
	Children []*Tree
}

func NewNonTerminalTree(kind string, children ...*Tree) *Tree {
	return &Tree{
		Kind:     kind,
		Children: children,
	}
}

func NewTerminalNode(kind string, text string) *Tree {
	return &Tree{
		Kind:     kind,
		Text:     text,
		Terminal: true,
	}
}

func (t *Tree) Fill() *Tree {
	for i, c := range t.Children {
		c.Parent = t
		c.Offset = i
		c.Fill()
	}
	return t
}

func (t *Tree) path() string {
	if t.Parent == nil {
		return t.Kind
	}
	return fmt.Sprintf("%v.[%v]%v", t.Parent.path(), t.Offset, t.Kind)
}

// Format returns the tree in the test case format.
func (t *Tree) Format() []byte {
	var b bytes.Buffer
	t.format(&b, 0)
	return b.Bytes()
}

func (t *Tree) format(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("    ")
	}
	buf.WriteString("(")
	buf.WriteString(formatName(t.Kind))
	if t.Terminal {
		fmt.Fprintf(buf, " '%v')", t.Text)
		return
	}
	if len(t.Children) > 0 {
		buf.WriteString("\n")
		for i, c := range t.Children {
			c.format(buf, depth+1)
			if i < len(t.Children)-1 {
				buf.WriteString("\n")
			}
		}
	}
	buf.WriteString(")")
}

func formatName(name string) string {
	if reName.MatchString(name) {
		return name
	}
	return fmt.Sprintf("'%v'", name)
}

var reName = regexp.MustCompile(`^[^\t\n\r ()']+$`)

// DiffTree compares two trees. `_` in the expected tree matches any kind or any text.
func DiffTree(expected, actual *Tree) []*TreeDiff {
	if expected == nil && actual == nil {
		return nil
	}
	if expected.Kind != "_" && actual.Kind != expected.Kind {
		msg := fmt.Sprintf("unexpected kind: expected '%v' but got '%v'", expected.Kind, actual.Kind)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if expected.Terminal != actual.Terminal {
		msg := fmt.Sprintf("unexpected node type: expected a terminal: %v but got a terminal: %v", expected.Terminal, actual.Terminal)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if expected.Text != "_" && expected.Text != actual.Text {
		msg := fmt.Sprintf("unexpected text: expected '%v' but got '%v'", expected.Text, actual.Text)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if len(actual.Children) != len(expected.Children) {
		msg := fmt.Sprintf("unexpected node count: expected %v but got %v", len(expected.Children), len(actual.Children))
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	var diffs []*TreeDiff
	for i, exp := range expected.Children {
		if ds := DiffTree(exp, actual.Children[i]); len(ds) > 0 {
			diffs = append(diffs, ds...)
		}
	}
	return diffs
}

// TestCase consists of a description, a source, and the tree expected from the source. When Rejected
// is true, the source must be rejected and the case has no tree.
type TestCase struct {
	Description string
	Source      []byte
	Output      *Tree
	Rejected    bool
}

const outputRejected = "<rejected>"

func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just three parts: %v parts found", len(parts))
	}

	c := &TestCase{
		Description: string(parts[0].buf),
		Source:      parts[1].buf,
	}
	if strings.TrimSpace(string(parts[2].buf)) == outputRejected {
		c.Rejected = true
		return c, nil
	}

	tp := &treeParser{
		lineOffset: parts[0].lineCount + parts[1].lineCount + 2,
	}
	c.Output, err = tp.parseTree(bytes.NewReader(parts[2].buf))
	if err != nil {
		return nil, err
	}
	return c, nil
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var bufs []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		bufs = append(bufs, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return bufs, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	buf := &bytes.Buffer{}
	line := s.Bytes()
	if reDelim.Match(line) {
		// Return an empty slice because (*bytes.Buffer).Bytes() returns nil if we have never written data.
		return []byte{}, 0, nil
	}
	buf.Write(line)
	lineCount := 1
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), lineCount, nil
		}
		buf.WriteByte('\n')
		buf.Write(line)
		lineCount++
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), lineCount, nil
}

// The tree format is parsed by the chart parser itself.
const treeGrammarSrc = `
tree -> '(' name ')'
tree -> '(' name trees ')'
tree -> '(' name 'string' ')'
trees -> tree
trees -> trees tree
name -> 'id'
name -> 'string'
`

var treeLexEntries = []*mlspec.LexEntry{
	{Kind: "white_space", Pattern: `[\u{0009}\u{000A}\u{000D}\u{0020}]+`},
	{Kind: "l_paren", Pattern: `\(`},
	{Kind: "r_paren", Pattern: `\)`},
	{Kind: "string", Pattern: `'[^']*'`},
	{Kind: "id", Pattern: `[^\u{0009}\u{000A}\u{000D}\u{0020}()']+`},
}

var kindToTerminal = map[string]string{
	"l_paren": "(",
	"r_paren": ")",
	"string":  "string",
	"id":      "id",
}

type treeSpec struct {
	gram   *grammar.Grammar
	clspec *mlspec.CompiledLexSpec
}

var (
	treeSpecVal  *treeSpec
	treeSpecErr  error
	treeSpecOnce sync.Once
)

func loadTreeSpec() (*treeSpec, error) {
	treeSpecOnce.Do(func() {
		ast, err := spec.Parse(strings.NewReader(treeGrammarSrc))
		if err != nil {
			treeSpecErr = err
			return
		}
		b := grammar.GrammarBuilder{
			AST: ast,
		}
		gram, err := b.Build()
		if err != nil {
			treeSpecErr = err
			return
		}
		clspec, err := spec.CompileLexSpec("tree", treeLexEntries)
		if err != nil {
			treeSpecErr = err
			return
		}
		treeSpecVal = &treeSpec{
			gram:   gram,
			clspec: clspec,
		}
	})
	return treeSpecVal, treeSpecErr
}

type treeParser struct {
	lineOffset int
}

func (tp *treeParser) parseTree(src io.Reader) (*Tree, error) {
	ts, err := loadTreeSpec()
	if err != nil {
		return nil, err
	}
	toks, err := tp.tokenize(ts, src)
	if err != nil {
		return nil, err
	}
	chart := driver.Recognize(ts.gram, toks)
	if synErr := chart.SyntaxError(ts.gram); synErr != nil {
		return nil, fmt.Errorf("%v:%v: %v: %v: expected: %v", tp.lineOffset+synErr.Row, synErr.Col, synErr.Message, synErr.Token.Text, strings.Join(synErr.ExpectedTerminals, ", "))
	}
	node, err := driver.Extract(chart, ts.gram)
	if err != nil {
		return nil, err
	}
	return tp.genTree(node).Fill(), nil
}

func (tp *treeParser) tokenize(ts *treeSpec, src io.Reader) ([]driver.Token, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(ts.clspec), src)
	if err != nil {
		return nil, err
	}
	var toks []driver.Token
	var cur spec.Cursor
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			row, col := cur.Pos()
			toks = append(toks, driver.Token{
				Terminal: ts.gram.EOF(),
				Text:     "<eof>",
				Row:      row,
				Col:      col,
			})
			return toks, nil
		}
		row := tok.Row + 1
		col := tok.Col + 1
		cur.Advance(tok.Row, tok.Col, tok.Lexeme)
		if tok.Invalid {
			return nil, fmt.Errorf("%v:%v: invalid token: %v", tp.lineOffset+row, col, string(tok.Lexeme))
		}
		kind := spec.KindName(ts.clspec, int(tok.KindID))
		if kind == "white_space" {
			continue
		}
		sym, ok := ts.gram.SymbolByName(kindToTerminal[kind])
		if !ok {
			return nil, fmt.Errorf("%v:%v: unknown token kind: %v", tp.lineOffset+row, col, kind)
		}
		toks = append(toks, driver.Token{
			Terminal: sym.ID,
			Text:     string(tok.Lexeme),
			Row:      row,
			Col:      col,
		})
	}
}

// genTree converts a derivation tree of the tree grammar into an expected tree.
func (tp *treeParser) genTree(node *driver.Node) *Tree {
	// tree -> '(' name ... ')'
	kind := nameText(node.Children[1])
	switch len(node.Children) {
	case 3:
		return NewNonTerminalTree(kind)
	case 4:
		c := node.Children[2]
		if c.Type == driver.NodeTypeTerminal {
			return NewTerminalNode(kind, unquote(c.Text))
		}
		return NewNonTerminalTree(kind, tp.genTrees(c)...)
	}
	return nil
}

func (tp *treeParser) genTrees(node *driver.Node) []*Tree {
	// trees -> tree | trees tree
	if len(node.Children) == 1 {
		return []*Tree{tp.genTree(node.Children[0])}
	}
	return append(tp.genTrees(node.Children[0]), tp.genTree(node.Children[1]))
}

func nameText(node *driver.Node) string {
	leaf := node.Children[0]
	if leaf.KindName == "string" {
		return unquote(leaf.Text)
	}
	return leaf.Text
}

func unquote(s string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, "'"), "'")
}
