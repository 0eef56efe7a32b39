package codec

import (
	"testing"

	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_DeterministicMapOrder(t *testing.T) {
	a := map[string]int{"b": 2, "a": 1, "c": 3}
	b := map[string]int{"c": 3, "a": 1, "b": 2}

	encodedA, err := Marshal(a)
	require.NoError(t, err)
	encodedB, err := Marshal(b)
	require.NoError(t, err)

	assert.Equal(t, encodedA, encodedB)
}

func TestUnmarshal_AST(t *testing.T) {
	tree := &models.AST{
		Type:    "tree-sitter-javascript",
		Version: "1",
		Root: &models.Node{
			Kind: "program",
			Children: []*models.Node{
				{Kind: "identifier", Text: "x", Leading: "  "},
			},
		},
	}

	data, err := Marshal(tree)
	require.NoError(t, err)

	var decoded models.AST
	require.NoError(t, Unmarshal(data, &decoded))
	assert.Equal(t, tree.Type, decoded.Type)
	require.Len(t, decoded.Root.Children, 1)
	assert.Equal(t, "x", decoded.Root.Children[0].Text)
	assert.Equal(t, "  ", decoded.Root.Children[0].Leading)
}

func TestUnmarshal_AnyMapsUseStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"nested": map[string]any{"k": "v"}})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, Unmarshal(data, &decoded))
	nested, ok := decoded["nested"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v", nested["k"])
}
