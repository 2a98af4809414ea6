package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstallOptions_InstallName(t *testing.T) {
	tests := []struct {
		name string
		opts InstallOptions
		want string
	}{
		{name: "defaults to query", opts: InstallOptions{Query: "ripgrep"}, want: "ripgrep"},
		{name: "explicit name wins", opts: InstallOptions{Query: "ripgrep", Name: "rg"}, want: "rg"},
		{name: "empty", opts: InstallOptions{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.InstallName())
		})
	}
}

func TestWrapStage(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, WrapStage(StageInstall, nil))
	})

	t.Run("keeps sentinel reachable", func(t *testing.T) {
		err := WrapStage(StageInstall, fmt.Errorf("%w: bin/tool", ErrMissingExpectedMember))
		assert.ErrorIs(t, err, ErrMissingExpectedMember)
		assert.Equal(t, StageInstall, StageOf(err))
		assert.Contains(t, err.Error(), "install stage failed")
	})

	t.Run("first stage wins", func(t *testing.T) {
		inner := WrapStage(StageDownload, ErrDownloadFailed)
		outer := WrapStage(StageInstall, fmt.Errorf("run: %w", inner))
		assert.Equal(t, StageDownload, StageOf(outer))
	})

	t.Run("no stage", func(t *testing.T) {
		assert.Equal(t, Stage(""), StageOf(errors.New("plain")))
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"no search result", ErrNoSearchResult, ExitNetwork},
		{"download", WrapStage(StageDownload, ErrDownloadFailed), ExitNetwork},
		{"write", fmt.Errorf("rename: %w", ErrInstallWriteFailed), ExitPermission},
		{"no asset", ErrNoEligibleAsset, ExitInstallFailed},
		{"content type", ErrUnsupportedContentType, ExitInstallFailed},
		{"invalid input", fmt.Errorf("%w: empty name", ErrInvalidInput), ExitInvalidArgs},
		{"interrupted download", WrapStage(StageDownload, fmt.Errorf("%w: %w", ErrDownloadFailed, context.Canceled)), ExitInterrupted},
		{"unknown", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
