// Package pipeline wires asset selection, download and installation into
// a single run.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/binstall/internal/core"
	"github.com/quantmind-br/binstall/internal/fetch"
	"github.com/quantmind-br/binstall/internal/fsops"
	"github.com/quantmind-br/binstall/internal/heuristics"
)

// Installer places a downloaded asset at its destination
type Installer interface {
	Install(ctx context.Context, data []byte, contentType, memberName, destPath string) error
}

// Pipeline selects, fetches and installs one asset per Run
type Pipeline struct {
	scorer    heuristics.Scorer
	installer Installer
	fs        afero.Fs
	logger    *zerolog.Logger

	// OnSelect, when set, is called with the chosen asset before download
	OnSelect func(core.ScoredAsset)

	// Confirm, when set, is asked before an existing file at the
	// destination is replaced. A false answer ends the run with
	// core.ErrOverwriteDeclined before anything is downloaded.
	Confirm func(dest string) (bool, error)
}

// New creates a pipeline. fs is only read, to report whether a file was
// replaced.
func New(scorer heuristics.Scorer, installer Installer, fs afero.Fs, logger *zerolog.Logger) *Pipeline {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Pipeline{
		scorer:    scorer,
		installer: installer,
		fs:        fs,
		logger:    logger,
	}
}

// Run installs the best asset for this platform as destDir/installName.
// Every error is a *core.StageError wrapping one of the core sentinels.
func (p *Pipeline) Run(ctx context.Context, assets []core.Asset, fetcher fetch.Fetcher, destDir, installName string) (*core.InstallResult, error) {
	selected, err := p.scorer.Select(assets)
	if err != nil {
		return nil, core.WrapStage(core.StageSelect, err)
	}

	p.logger.Info().
		Str("asset", selected.Name).
		Int("score", selected.Score).
		Msg("selected release asset")
	if p.OnSelect != nil {
		p.OnSelect(selected)
	}

	dest := filepath.Join(destDir, installName)
	replaced := p.fs != nil && fsops.Exists(p.fs, dest)
	if replaced && p.Confirm != nil {
		ok, err := p.Confirm(dest)
		if err != nil {
			return nil, core.WrapStage(core.StageInstall, err)
		}
		if !ok {
			return nil, core.WrapStage(core.StageInstall, fmt.Errorf("%w: %s", core.ErrOverwriteDeclined, dest))
		}
	}

	data, err := fetcher.Fetch(ctx, selected.DownloadURL)
	if err != nil {
		return nil, core.WrapStage(core.StageDownload,
			fmt.Errorf("%w: %s: %w", core.ErrDownloadFailed, selected.DownloadURL, err))
	}

	p.logger.Debug().
		Str("dest", dest).
		Str("content_type", selected.ContentType).
		Msg("installing")

	if err := p.installer.Install(ctx, data, selected.ContentType, installName, dest); err != nil {
		return nil, core.WrapStage(core.StageInstall, err)
	}

	return &core.InstallResult{
		Asset:    selected,
		Path:     dest,
		Replaced: replaced,
	}, nil
}
