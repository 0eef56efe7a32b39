package models

// AST is a parsed syntax tree together with the identity of the plugin
// format that produced it.
type AST struct {
	Type    string `json:"type"`
	Version string `json:"version"`
	Root    *Node  `json:"root"`
}

// ASTGenerator identifies which plugin format can regenerate content from
// a stored tree.
type ASTGenerator struct {
	Type    string `json:"type"`
	Version string `json:"version"`
}

// Node is one syntax tree node. Leaves carry their source text and the
// whitespace that preceded them so a tree can be printed back losslessly.
type Node struct {
	Kind     string   `json:"kind"`
	Text     string   `json:"text,omitempty"`
	Leading  string   `json:"leading,omitempty"`
	Start    Position `json:"start"`
	Children []*Node  `json:"children,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}
