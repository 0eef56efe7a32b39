package asset

import (
	"errors"

	"github.com/meysamhadeli/assetcore/asset/contracts"
)

var (
	ErrStreamAlreadyConsumed = errors.New("content stream has already been read")
	ErrGenerationInProgress  = errors.New("generation from syntax tree already in progress")
	ErrMissingAST            = errors.New("asset has no syntax tree")
	ErrUnresolvablePlugin    = errors.New("plugin cannot be resolved")
	ErrUnsupportedGenerate   = errors.New("plugin cannot generate from a syntax tree")
)

type readOutcome int

const (
	readHit readOutcome = iota
	readMiss
	readFailed
)

// classifyRead separates a cache miss, which callers may recover from,
// from every other read failure.
func classifyRead(err error) readOutcome {
	switch {
	case err == nil:
		return readHit
	case errors.Is(err, contracts.ErrCacheMiss):
		return readMiss
	default:
		return readFailed
	}
}
