package heuristics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quantmind-br/binstall/internal/core"
	"github.com/rs/zerolog"
)

// DefaultScorer implements the Scorer interface over a fixed signal set
type DefaultScorer struct {
	Signals Signals
	Logger  *zerolog.Logger
}

// NewScorer creates a new DefaultScorer
func NewScorer(signals Signals, logger *zerolog.Logger) *DefaultScorer {
	return &DefaultScorer{
		Signals: signals,
		Logger:  logger,
	}
}

// Score returns how many signal categories the asset name matches (0..3).
// Matching is case-sensitive.
func (s *DefaultScorer) Score(asset core.Asset) int {
	score := 0
	for _, tokens := range [][]string{s.Signals.OS, s.Signals.Arch, s.Signals.Libc} {
		if containsAny(asset.Name, tokens) {
			score++
		}
	}
	return score
}

// Rank scores every asset, drops the ones scoring zero and orders the rest
// by score, highest first. Equal scores keep their input order.
func (s *DefaultScorer) Rank(assets []core.Asset) []core.ScoredAsset {
	ranked := make([]core.ScoredAsset, 0, len(assets))

	for _, asset := range assets {
		score := s.Score(asset)

		if s.Logger != nil {
			s.Logger.Debug().
				Str("asset", asset.Name).
				Int("score", score).
				Msg("scored release asset")
		}

		if score == 0 {
			continue
		}
		ranked = append(ranked, core.ScoredAsset{Asset: asset, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// Select returns the highest scoring asset. Among equal scores the one
// listed first wins.
func (s *DefaultScorer) Select(assets []core.Asset) (core.ScoredAsset, error) {
	ranked := s.Rank(assets)
	if len(ranked) == 0 {
		return core.ScoredAsset{}, fmt.Errorf("%w (%d candidates considered)", core.ErrNoEligibleAsset, len(assets))
	}

	return ranked[0], nil
}

func containsAny(name string, tokens []string) bool {
	for _, token := range tokens {
		if token != "" && strings.Contains(name, token) {
			return true
		}
	}
	return false
}
