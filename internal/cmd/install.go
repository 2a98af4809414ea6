package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/binstall/internal/config"
	"github.com/quantmind-br/binstall/internal/core"
	"github.com/quantmind-br/binstall/internal/pipeline"
	"github.com/quantmind-br/binstall/internal/security"
	"github.com/quantmind-br/binstall/internal/ui"
)

type installFlags struct {
	query   string
	dir     string
	name    string
	yes     bool
	noCache bool
	timeout int
}

// confirmOverwrite is replaced in tests
var confirmOverwrite = func(assumeYes bool, path string) (bool, error) {
	return ui.NewConfirmer(assumeYes).ConfirmOverwrite(path)
}

func runInstall(cmd *cobra.Command, cfg *config.Config, log *zerolog.Logger, version string, flags installFlags) error {
	opts := core.InstallOptions{
		Query:     flags.query,
		Name:      flags.name,
		DestDir:   flags.dir,
		AssumeYes: flags.yes,
		NoCache:   flags.noCache,
	}

	if err := security.ValidateSearchQuery(opts.Query); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidInput, err)
	}
	if err := security.ValidateInstallName(opts.InstallName()); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidInput, err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout(cfg, flags.timeout))
	defer cancel()

	svc, err := newServices(ctx, cfg, log, version, opts.NoCache)
	if err != nil {
		return err
	}
	defer svc.Close()

	if opts.DestDir == "" {
		opts.DestDir = svc.paths.ExecutableDir()
	}
	destDir, err := filepath.Abs(opts.DestDir)
	if err != nil {
		return fmt.Errorf("%w: destination %q: %w", core.ErrInvalidInput, opts.DestDir, err)
	}
	opts.DestDir = destDir

	out := cmd.OutOrStdout()
	log.Info().
		Str("query", opts.Query).
		Str("name", opts.InstallName()).
		Str("dest", opts.DestDir).
		Msg("starting installation")

	svc.resolver.OnResolved = func(r *pipeline.Resolved) {
		ui.PrintInfo(out, "Latest release of %s: %s", r.Repository.FullName, r.Release.TagName)
	}

	p := svc.pipeline(cfg, log)
	p.OnSelect = func(a core.ScoredAsset) {
		ui.PrintInfo(out, "Downloading %s (score %d)", a.Name, a.Score)
	}
	if cfg.Install.ConfirmOverwrite {
		p.Confirm = func(dest string) (bool, error) {
			return confirmOverwrite(opts.AssumeYes, dest)
		}
	}

	ui.PrintInfo(out, "Searching GitHub for %q...", opts.Query)
	resolved, result, err := svc.resolver.Install(ctx, p, svc.downloader, opts)
	if errors.Is(err, core.ErrOverwriteDeclined) {
		ui.PrintWarning(cmd.ErrOrStderr(), "Not replacing %s", filepath.Join(opts.DestDir, opts.InstallName()))
		return nil
	}
	if err != nil {
		return err
	}

	if result.Replaced {
		ui.PrintSuccess(out, "Replaced %s", result.Path)
	} else {
		ui.PrintSuccess(out, "Installed %s", result.Path)
	}
	if !svc.paths.OnPath(opts.DestDir) {
		ui.PrintWarning(cmd.ErrOrStderr(), "%s is not in your PATH", opts.DestDir)
	}

	log.Info().
		Str("repo", resolved.Repository.FullName).
		Str("tag", resolved.Release.TagName).
		Str("asset", result.Asset.Name).
		Str("path", result.Path).
		Msg("installation completed successfully")

	return nil
}

func timeout(cfg *config.Config, seconds int) time.Duration {
	if seconds <= 0 {
		seconds = cfg.Install.TimeoutSeconds
	}
	if seconds <= 0 {
		seconds = 600
	}
	return time.Duration(seconds) * time.Second
}
