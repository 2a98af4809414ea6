package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/binstall/internal/config"
	"github.com/quantmind-br/binstall/internal/db"
	"github.com/quantmind-br/binstall/internal/fsops"
	"github.com/quantmind-br/binstall/internal/paths"
	"github.com/quantmind-br/binstall/internal/ui"
)

// cacheMaxAge is how old a cached response must be for --prune-cache
const cacheMaxAge = 30 * 24 * time.Hour

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	var (
		fix        bool
		pruneCache bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the install directory, cache and configuration",
		Long:  `Check that the bin directory exists, is writable and is on PATH, that the metadata cache opens, and show the platform tokens used to pick assets.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			resolver := paths.NewResolver(cfg)
			fs := afero.NewOsFs()

			var issues, warnings []string

			ui.PrintKeyValue(out, "binstall", version)
			fmt.Fprintln(out)

			// 1. Platform tokens
			sig := signals(cfg)
			ui.PrintKeyValue(out, "OS tokens", strings.Join(sig.OS, ", "))
			ui.PrintKeyValue(out, "Arch tokens", strings.Join(sig.Arch, ", "))
			ui.PrintKeyValue(out, "Libc tokens", strings.Join(sig.Libc, ", "))
			fmt.Fprintln(out)

			// 2. Directories
			binDir := resolver.ExecutableDir()
			if checkDirectory(fs, binDir, fix) {
				ui.PrintSuccess(out, "Bin directory: %s", binDir)
			} else {
				ui.PrintError(out, "Bin directory not writable: %s", binDir)
				issues = append(issues, fmt.Sprintf("bin directory not writable: %s (run with --fix to create it)", binDir))
			}
			if resolver.OnPath(binDir) {
				ui.PrintSuccess(out, "Bin directory is on PATH")
			} else {
				ui.PrintWarning(out, "%s is not on PATH", binDir)
				warnings = append(warnings, "bin directory is not on PATH")
			}
			if cfg.Paths.TempDir != "" {
				if checkDirectory(fs, cfg.Paths.TempDir, fix) {
					ui.PrintSuccess(out, "Workspace directory: %s", cfg.Paths.TempDir)
				} else {
					ui.PrintError(out, "Workspace directory not writable: %s", cfg.Paths.TempDir)
					issues = append(issues, fmt.Sprintf("workspace directory not writable: %s", cfg.Paths.TempDir))
				}
			}
			fmt.Fprintln(out)

			// 3. Metadata cache
			if !cfg.Cache.Enabled {
				ui.PrintInfo(out, "Metadata cache: disabled")
			} else if msg, err := checkCache(cmd.Context(), cfg, resolver, pruneCache); err != nil {
				ui.PrintWarning(out, "Metadata cache: %v", err)
				warnings = append(warnings, "metadata cache unavailable")
			} else {
				ui.PrintSuccess(out, "Metadata cache: %s", msg)
			}

			// 4. GitHub
			ui.PrintKeyValue(out, "GitHub API", cfg.GitHub.APIURL)
			if cfg.GitHub.Token != "" {
				ui.PrintSuccess(out, "GitHub token: set")
			} else {
				ui.PrintInfo(out, "GitHub token: not set (anonymous rate limits apply)")
			}
			fmt.Fprintln(out)

			// 5. Environment
			printEnvironment(out)
			fmt.Fprintln(out)

			for _, w := range warnings {
				log.Warn().Str("check", w).Msg("doctor warning")
			}

			if len(issues) > 0 {
				for _, issue := range issues {
					ui.PrintError(out, "%s", issue)
				}
				return fmt.Errorf("system check failed with %d issue(s)", len(issues))
			}

			ui.PrintSuccess(out, "All critical checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "create missing directories")
	cmd.Flags().BoolVar(&pruneCache, "prune-cache", false, "drop cached responses older than 30 days")

	return cmd
}

// checkDirectory reports whether path is a writable directory, creating
// it first when fix is set
func checkDirectory(fs afero.Fs, path string, fix bool) bool {
	info, err := fs.Stat(path)
	if os.IsNotExist(err) && fix {
		if err := fsops.EnsureDir(fs, path, 0755); err != nil {
			return false
		}
		info, err = fs.Stat(path)
	}
	if err != nil || !info.IsDir() {
		return false
	}
	return fsops.CheckWritable(fs, path) == nil
}

func checkCache(ctx context.Context, cfg *config.Config, resolver *paths.Resolver, prune bool) (string, error) {
	cacheFile := cfg.Paths.CacheFile
	if cacheFile == "" {
		cacheFile = filepath.Join(resolver.CacheDir(), "metadata.db")
	}

	store, err := db.New(ctx, cacheFile)
	if err != nil {
		return "", err
	}
	defer store.Close()

	if !prune {
		return store.Path(), nil
	}

	n, err := store.Prune(ctx, time.Now().Add(-cacheMaxAge))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (pruned %d entries)", store.Path(), n), nil
}

func printEnvironment(w io.Writer) {
	for _, name := range []string{"XDG_BIN_HOME", "XDG_DATA_HOME", "XDG_CACHE_HOME", "BINSTALL_CONFIG"} {
		if value := os.Getenv(name); value != "" {
			ui.PrintKeyValue(w, name, value)
		} else {
			ui.PrintKeyValue(w, name, "not set")
		}
	}
}
