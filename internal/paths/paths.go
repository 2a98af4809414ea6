package paths

import (
	"os"
	"path/filepath"

	"github.com/quantmind-br/binstall/internal/config"
)

// Resolver works out the default locations binstall reads and writes,
// following the XDG base directory layout
type Resolver struct {
	homeDir string
	getenv  func(string) string
	cfg     *config.Config
}

// NewResolver creates a Resolver for the current user and environment
func NewResolver(cfg *config.Config) *Resolver {
	homeDir, _ := os.UserHomeDir()
	return &Resolver{
		homeDir: homeDir,
		getenv:  os.Getenv,
		cfg:     cfg,
	}
}

// NewResolverWithEnv creates a Resolver with an explicit home directory and
// environment lookup (useful for tests)
func NewResolverWithEnv(cfg *config.Config, homeDir string, getenv func(string) string) *Resolver {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &Resolver{
		homeDir: homeDir,
		getenv:  getenv,
		cfg:     cfg,
	}
}

// HomeDir returns the resolved home directory
func (r *Resolver) HomeDir() string {
	return r.homeDir
}

// ExecutableDir returns the directory executables are installed into.
// Order: paths.bin_dir, $XDG_BIN_HOME, $XDG_DATA_HOME/../bin, ~/.local/bin.
func (r *Resolver) ExecutableDir() string {
	if r.cfg != nil && r.cfg.Paths.BinDir != "" {
		return r.cfg.Paths.BinDir
	}

	if dir := r.getenv("XDG_BIN_HOME"); filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}

	if dir := r.getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
		return filepath.Join(dir, "..", "bin")
	}

	return filepath.Join(r.homeDir, ".local", "bin")
}

// CacheDir returns ~/.cache/binstall or $XDG_CACHE_HOME/binstall
func (r *Resolver) CacheDir() string {
	if dir := r.getenv("XDG_CACHE_HOME"); filepath.IsAbs(dir) {
		return filepath.Join(dir, "binstall")
	}
	return filepath.Join(r.homeDir, ".cache", "binstall")
}

// OnPath reports whether dir is listed in $PATH
func (r *Resolver) OnPath(dir string) bool {
	want := filepath.Clean(dir)
	for _, entry := range filepath.SplitList(r.getenv("PATH")) {
		if entry != "" && filepath.Clean(entry) == want {
			return true
		}
	}
	return false
}
