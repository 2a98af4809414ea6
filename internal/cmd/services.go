package cmd

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/binstall/internal/apicache"
	"github.com/quantmind-br/binstall/internal/config"
	"github.com/quantmind-br/binstall/internal/db"
	"github.com/quantmind-br/binstall/internal/fetch"
	"github.com/quantmind-br/binstall/internal/github"
	"github.com/quantmind-br/binstall/internal/heuristics"
	"github.com/quantmind-br/binstall/internal/installer"
	"github.com/quantmind-br/binstall/internal/logging"
	"github.com/quantmind-br/binstall/internal/paths"
	"github.com/quantmind-br/binstall/internal/pipeline"
	"github.com/quantmind-br/binstall/internal/ui"
)

// services holds the collaborators one command invocation needs
type services struct {
	resolver   *pipeline.Resolver
	scorer     *heuristics.DefaultScorer
	downloader *fetch.Downloader
	paths      *paths.Resolver
	fs         afero.Fs
	cache      *db.DB
}

func (s *services) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// newServices builds the GitHub client (behind the metadata cache unless
// disabled), the downloader and the scorer from cfg
func newServices(ctx context.Context, cfg *config.Config, log *zerolog.Logger, version string, noCache bool) (*services, error) {
	s := &services{
		paths: paths.NewResolver(cfg),
		fs:    afero.NewOsFs(),
	}

	httpClient := &http.Client{}
	if cfg.Cache.Enabled && !noCache {
		cacheFile := cfg.Paths.CacheFile
		if cacheFile == "" {
			cacheFile = filepath.Join(s.paths.CacheDir(), "metadata.db")
		}
		store, err := db.New(ctx, cacheFile)
		if err != nil {
			// The cache only saves API quota; run without it
			log.Warn().Err(err).Str("path", cacheFile).Msg("metadata cache unavailable")
		} else {
			s.cache = store
			httpClient.Transport = apicache.NewTransport(nil, store, log)
		}
	}

	client, err := github.NewClient(github.Options{
		APIURL:     cfg.GitHub.APIURL,
		UserAgent:  userAgent(cfg, version),
		Token:      cfg.GitHub.Token,
		HTTPClient: httpClient,
	}, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.resolver = pipeline.NewResolver(client, log)

	progress := logging.Stderr()
	if !cfg.Install.Progress || !ui.IsTerminal(os.Stderr) {
		progress = nil
	}
	s.downloader = fetch.NewDownloader(fetch.Options{
		UserAgent: userAgent(cfg, version),
		MaxBytes:  cfg.Install.MaxDownloadBytes,
		Progress:  progress,
	}, log)

	s.scorer = heuristics.NewScorer(signals(cfg), log)
	return s, nil
}

// pipeline returns an install pipeline writing through s.fs
func (s *services) pipeline(cfg *config.Config, log *zerolog.Logger) *pipeline.Pipeline {
	inst := installer.New(s.fs, installer.Options{
		WorkspaceRoot:     cfg.Paths.TempDir,
		MaxExtractedBytes: cfg.Install.MaxExtractBytes,
	}, log)
	return pipeline.New(s.scorer, inst, s.fs, log)
}

func userAgent(cfg *config.Config, version string) string {
	if cfg.GitHub.UserAgent != "" {
		return cfg.GitHub.UserAgent
	}
	return "binstall/" + version
}

// signals returns the configured platform tokens, or the defaults when
// none are configured
func signals(cfg *config.Config) heuristics.Signals {
	p := cfg.Platform
	if len(p.OS) == 0 && len(p.Arch) == 0 && len(p.Libc) == 0 {
		return heuristics.DefaultSignals()
	}
	return heuristics.Signals{OS: p.OS, Arch: p.Arch, Libc: p.Libc}
}
