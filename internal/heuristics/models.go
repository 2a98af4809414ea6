package heuristics

import "github.com/quantmind-br/binstall/internal/core"

// Signals holds the file name tokens for each platform signal category.
// A category counts once no matter how many of its tokens match.
type Signals struct {
	OS   []string
	Arch []string
	Libc []string
}

// DefaultSignals returns the Linux / x86_64 / GNU-or-musl signal set
func DefaultSignals() Signals {
	return Signals{
		OS:   []string{"linux"},
		Arch: []string{"x86_64"},
		Libc: []string{"gnu", "musl"},
	}
}

// Scorer defines the interface for scoring and selecting release assets
type Scorer interface {
	// Score counts the platform signal categories matched by the asset name
	Score(asset core.Asset) int

	// Select returns the best eligible asset, or core.ErrNoEligibleAsset
	Select(assets []core.Asset) (core.ScoredAsset, error)
}
