package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveAssetID_Deterministic(t *testing.T) {
	a := DeriveAssetID("src/index.js", "js", "env", "")
	b := DeriveAssetID("src/index.js", "js", "env", "")
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestDeriveAssetID_EveryInputMatters(t *testing.T) {
	base := DeriveAssetID("src/index.js", "js", "env", "")

	assert.NotEqual(t, base, DeriveAssetID("src/other.js", "js", "env", ""))
	assert.NotEqual(t, base, DeriveAssetID("src/index.js", "css", "env", ""))
	assert.NotEqual(t, base, DeriveAssetID("src/index.js", "js", "env2", ""))
	assert.NotEqual(t, base, DeriveAssetID("src/index.js", "js", "env", "inline-1"))
}

func TestDeriveAssetID_FieldBoundaries(t *testing.T) {
	assert.NotEqual(t, DeriveAssetID("ab", "c", "", ""), DeriveAssetID("a", "bc", "", ""))
}

func TestDeriveCacheKey_Namespacing(t *testing.T) {
	key := DeriveCacheKey("1.0.0", "contentmain", "id", "hash")

	assert.Equal(t, key, DeriveCacheKey("1.0.0", "contentmain", "id", "hash"))
	assert.NotEqual(t, key, DeriveCacheKey("1.0.1", "contentmain", "id", "hash"), "tool version")
	assert.NotEqual(t, key, DeriveCacheKey("1.0.0", "mapmain", "id", "hash"), "logical key")
	assert.NotEqual(t, key, DeriveCacheKey("1.0.0", "contentmain", "id2", "hash"), "asset id")
	assert.NotEqual(t, key, DeriveCacheKey("1.0.0", "contentmain", "id", "hash2"), "content hash")
}

func TestDeriveCacheKey_DiffersFromContentDigest(t *testing.T) {
	assert.NotEqual(t, HashContent([]byte("x")), DeriveCacheKey("", "", "", "x"))
}
