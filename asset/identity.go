package asset

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
)

// cacheKeyDomain keys the BLAKE3 hasher used for cache keys so that cache
// keys never collide with content digests computed over the same bytes.
var cacheKeyDomain = [32]byte{
	'a', 's', 's', 'e', 't', 'c', 'o', 'r', 'e', '.', 'c', 'a', 'c', 'h', 'e', '.',
	'k', 'e', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// DeriveAssetID returns the stable identity of an asset. Inputs are joined
// with a NUL separator so that shifting characters between fields cannot
// produce the same digest.
func DeriveAssetID(idBase, assetType, envFingerprint, uniqueKey string) string {
	sum := xxh3.HashString128(strings.Join([]string{idBase, assetType, envFingerprint, uniqueKey}, "\x00")).Bytes()
	return hex.EncodeToString(sum[:])
}

// DeriveCacheKey maps a logical key ("content", "map", "ast" plus a pipeline
// discriminator) for one asset to an opaque cache key. The tool version is
// part of the digest, so upgrading the tool starts from a cold cache.
func DeriveCacheKey(toolVersion, logicalKey, assetID, assetHash string) string {
	hasher, err := blake3.NewKeyed(cacheKeyDomain[:])
	if err != nil {
		// The key length is fixed at compile time.
		panic("asset: blake3 keyed hasher: " + err.Error())
	}
	for _, part := range [...]string{toolVersion, logicalKey, assetID, assetHash} {
		_, _ = hasher.Write([]byte(part))
		_, _ = hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashContent returns the hex BLAKE3 digest of data.
func HashContent(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
