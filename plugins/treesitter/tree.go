package treesitter

import (
	"strings"

	"github.com/meysamhadeli/assetcore/asset/models"
	sitter "github.com/smacker/go-tree-sitter"
)

// converter copies a tree-sitter tree into a serializable node tree. Every
// byte of the source ends up in exactly one leaf, either as its text or as
// the whitespace and comments leading up to it.
type converter struct {
	source []byte
	cursor uint32
}

func convertTree(root *sitter.Node, source []byte) *models.Node {
	c := &converter{source: source}
	document := &models.Node{Kind: "document", Children: []*models.Node{c.convert(root)}}
	if int(c.cursor) < len(source) {
		document.Children = append(document.Children, &models.Node{
			Kind:    "eof",
			Leading: string(source[c.cursor:]),
			Start:   endPosition(source),
		})
	}
	return document
}

func (c *converter) convert(n *sitter.Node) *models.Node {
	node := &models.Node{Kind: n.Type(), Start: position(n.StartPoint())}

	count := int(n.ChildCount())
	if count == 0 {
		start, end := n.StartByte(), n.EndByte()
		if start < c.cursor {
			start = c.cursor
		}
		if end < start {
			end = start
		}
		node.Leading = string(c.source[c.cursor:start])
		node.Text = string(c.source[start:end])
		c.cursor = end
		return node
	}

	node.Children = make([]*models.Node, 0, count)
	for i := 0; i < count; i++ {
		node.Children = append(node.Children, c.convert(n.Child(i)))
	}
	return node
}

func position(point sitter.Point) models.Position {
	return models.Position{Line: int(point.Row), Column: int(point.Column)}
}

func endPosition(source []byte) models.Position {
	text := string(source)
	line := strings.Count(text, "\n")
	column := len(text) - strings.LastIndex(text, "\n") - 1
	return models.Position{Line: line, Column: column}
}

// Print writes the tree back to source and maps every non-empty leaf to
// the position it was parsed from.
func Print(tree *models.AST, sourcePath string) *models.GenerateResult {
	var (
		builder  strings.Builder
		mappings []models.Mapping
		current  models.Position
	)

	advance := func(text string) {
		builder.WriteString(text)
		if lines := strings.Count(text, "\n"); lines > 0 {
			current.Line += lines
			current.Column = len(text) - strings.LastIndex(text, "\n") - 1
			return
		}
		current.Column += len(text)
	}

	if tree != nil {
		tree.Root.Walk(func(node *models.Node) bool {
			if !node.IsLeaf() {
				return true
			}
			advance(node.Leading)
			if node.Text != "" {
				mappings = append(mappings, models.Mapping{Generated: current, Original: node.Start})
			}
			advance(node.Text)
			return true
		})
	}

	return &models.GenerateResult{
		Code: []byte(builder.String()),
		Map:  &models.SourceMap{Sources: []string{sourcePath}, Mappings: mappings},
	}
}
