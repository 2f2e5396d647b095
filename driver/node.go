package driver

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nihei9/earley/grammar"
)

type NodeType int

const (
	NodeTypeNonTerminal NodeType = iota
	NodeTypeTerminal
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeNonTerminal:
		return "non-terminal"
	case NodeTypeTerminal:
		return "terminal"
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// Node is a node of a derivation tree. A terminal node has the text of its token and no children.
// A non-terminal node takes its position from its first child.
type Node struct {
	Type     NodeType
	Symbol   grammar.SymbolID
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Type {
	case NodeTypeTerminal:
		return json.Marshal(struct {
			Type     string `json:"type"`
			KindName string `json:"kind_name"`
			Text     string `json:"text"`
			Row      int    `json:"row"`
			Col      int    `json:"col"`
		}{
			Type:     n.Type.String(),
			KindName: n.KindName,
			Text:     n.Text,
			Row:      n.Row,
			Col:      n.Col,
		})
	default:
		return json.Marshal(struct {
			Type     string  `json:"type"`
			KindName string  `json:"kind_name"`
			Row      int     `json:"row"`
			Col      int     `json:"col"`
			Children []*Node `json:"children"`
		}{
			Type:     n.Type.String(),
			KindName: n.KindName,
			Row:      n.Row,
			Col:      n.Col,
			Children: n.Children,
		})
	}
}

// Leaves returns the terminal nodes of a tree from left to right.
func (n *Node) Leaves() []*Node {
	if n == nil {
		return nil
	}
	if n.Type == NodeTypeTerminal {
		return []*Node{n}
	}
	var leaves []*Node
	for _, c := range n.Children {
		leaves = append(leaves, c.Leaves()...)
	}
	return leaves
}

// Depth returns the number of nodes on the longest path from the node to a leaf.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	d := 0
	for _, c := range n.Children {
		if cd := c.Depth(); cd > d {
			d = cd
		}
	}
	return d + 1
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Type == NodeTypeTerminal {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}
