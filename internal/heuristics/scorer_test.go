package heuristics

import (
	"io"
	"testing"

	"github.com/quantmind-br/binstall/internal/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer() *DefaultScorer {
	logger := zerolog.New(io.Discard)
	return NewScorer(DefaultSignals(), &logger)
}

func asset(name string) core.Asset {
	return core.Asset{
		Name:        name,
		DownloadURL: "https://example.com/" + name,
		ContentType: "application/gzip",
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	scorer := newTestScorer()

	tests := []struct {
		name string
		file string
		want int
	}{
		{"all three signals", "tool-x86_64-unknown-linux-gnu.tar.gz", 3},
		{"musl counts as libc", "tool-x86_64-unknown-linux-musl.tar.gz", 3},
		{"both libc tokens count once", "tool-linux-x86_64-gnu-musl.tar.gz", 3},
		{"only libc tokens", "tool-gnu-musl.zip", 1},
		{"os and arch", "tool_linux_x86_64.zip", 2},
		{"os only", "tool-linux-arm64.tar.gz", 1},
		{"no signals", "tool-darwin-arm64", 0},
		{"case sensitive", "tool-Linux-X86_64-GNU.zip", 0},
		{"empty name", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.Score(asset(tt.file)))
		})
	}
}

func TestScoreIgnoresURLAndContentType(t *testing.T) {
	t.Parallel()

	scorer := newTestScorer()
	a := core.Asset{
		Name:        "checksums.txt",
		DownloadURL: "https://example.com/linux/x86_64/gnu/checksums.txt",
		ContentType: "linux-x86_64-gnu",
	}
	assert.Equal(t, 0, scorer.Score(a))
}

func TestScoreCustomSignals(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(Signals{
		OS:   []string{"darwin", "macos"},
		Arch: []string{"aarch64", "arm64"},
	}, nil)

	assert.Equal(t, 2, scorer.Score(asset("tool-darwin-arm64.zip")))
	assert.Equal(t, 2, scorer.Score(asset("tool-macos-aarch64-arm64.zip")))
	assert.Equal(t, 0, scorer.Score(asset("tool-linux-x86_64-gnu.tar.gz")))
}

func TestSelect(t *testing.T) {
	t.Parallel()

	scorer := newTestScorer()

	t.Run("picks highest score", func(t *testing.T) {
		assets := []core.Asset{
			asset("tool-darwin-arm64.zip"),        // 0
			asset("tool-linux-arm64.tar.gz"),      // 1
			asset("tool-x86_64-linux-gnu.tar.gz"), // 3
			asset("tool-linux-x86_64.tar.gz"),     // 2
		}

		best, err := scorer.Select(assets)
		require.NoError(t, err)
		assert.Equal(t, "tool-x86_64-linux-gnu.tar.gz", best.Name)
		assert.Equal(t, 3, best.Score)
	})

	t.Run("all zero", func(t *testing.T) {
		_, err := scorer.Select([]core.Asset{
			asset("tool-darwin-arm64.zip"),
			asset("tool-windows-amd64.zip"),
		})
		assert.ErrorIs(t, err, core.ErrNoEligibleAsset)
	})

	t.Run("empty list", func(t *testing.T) {
		_, err := scorer.Select(nil)
		assert.ErrorIs(t, err, core.ErrNoEligibleAsset)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		assets := []core.Asset{
			asset("tool-linux-arm64.tar.gz"),
			asset("tool-x86_64-linux-musl.tar.gz"),
			asset("tool-x86_64-linux-gnu.tar.gz"),
		}

		for i := 0; i < 20; i++ {
			best, err := scorer.Select(assets)
			require.NoError(t, err)
			assert.Equal(t, "tool-x86_64-linux-musl.tar.gz", best.Name)
		}

		assets[1], assets[2] = assets[2], assets[1]
		best, err := scorer.Select(assets)
		require.NoError(t, err)
		assert.Equal(t, "tool-x86_64-linux-gnu.tar.gz", best.Name)
	})
}

func TestRank(t *testing.T) {
	t.Parallel()

	scorer := newTestScorer()
	ranked := scorer.Rank([]core.Asset{
		asset("a-linux"),
		asset("b-darwin"),
		asset("c-linux-x86_64"),
		asset("d-x86_64"),
		asset("e-linux-x86_64-gnu"),
	})

	names := make([]string, 0, len(ranked))
	scores := make([]int, 0, len(ranked))
	for _, r := range ranked {
		names = append(names, r.Name)
		scores = append(scores, r.Score)
	}

	assert.Equal(t, []string{"e-linux-x86_64-gnu", "c-linux-x86_64", "a-linux", "d-x86_64"}, names)
	assert.Equal(t, []int{3, 2, 1, 1}, scores)
}
