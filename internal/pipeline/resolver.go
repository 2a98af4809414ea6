package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quantmind-br/binstall/internal/core"
	"github.com/quantmind-br/binstall/internal/fetch"
)

// ReleaseSource finds a repository and its newest release
type ReleaseSource interface {
	SearchFirst(ctx context.Context, query string) (*core.Repository, error)
	LatestRelease(ctx context.Context, releasesURL string) (*core.Release, error)
}

// Resolved is the repository and release a search term resolved to
type Resolved struct {
	Repository *core.Repository
	Release    *core.Release
}

// Resolver turns a search term into release assets
type Resolver struct {
	source ReleaseSource
	logger *zerolog.Logger

	// OnResolved, when set, is called once the release is known
	OnResolved func(*Resolved)
}

// NewResolver creates a resolver over source
func NewResolver(source ReleaseSource, logger *zerolog.Logger) *Resolver {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Resolver{source: source, logger: logger}
}

// Resolve searches for query and fetches the first result's latest release
func (r *Resolver) Resolve(ctx context.Context, query string) (*Resolved, error) {
	repo, err := r.source.SearchFirst(ctx, query)
	if err != nil {
		return nil, core.WrapStage(core.StageSearch, err)
	}
	r.logger.Info().Str("repo", repo.FullName).Msg("found repository")

	release, err := r.source.LatestRelease(ctx, repo.ReleasesURL)
	if err != nil {
		return nil, core.WrapStage(core.StageRelease, err)
	}
	r.logger.Info().
		Str("tag", release.TagName).
		Int("assets", len(release.Assets)).
		Msg("found release")

	resolved := &Resolved{Repository: repo, Release: release}
	if r.OnResolved != nil {
		r.OnResolved(resolved)
	}
	return resolved, nil
}

// Install resolves opts.Query and runs p against the release assets
func (r *Resolver) Install(ctx context.Context, p *Pipeline, fetcher fetch.Fetcher, opts core.InstallOptions) (*Resolved, *core.InstallResult, error) {
	resolved, err := r.Resolve(ctx, opts.Query)
	if err != nil {
		return nil, nil, err
	}

	result, err := p.Run(ctx, resolved.Release.Assets, fetcher, opts.DestDir, opts.InstallName())
	if err != nil {
		return resolved, nil, err
	}
	return resolved, result, nil
}
