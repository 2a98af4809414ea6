// Package installer unpacks a downloaded release asset and places the
// wanted executable into the destination directory.
package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/binstall/internal/core"
	"github.com/quantmind-br/binstall/internal/fsops"
	"github.com/quantmind-br/binstall/internal/transaction"
)

// WorkspacePrefix names the scoped temporary directories created per install
const WorkspacePrefix = ".binstall-"

// ExecutableMode is applied to every installed file
const ExecutableMode os.FileMode = 0755

// Options configures an ArchiveInstaller
type Options struct {
	// WorkspaceRoot holds the temporary workspace. Empty means the
	// destination directory, which keeps the final rename on one filesystem.
	WorkspaceRoot string
	// MaxExtractedBytes caps the total bytes written while extracting
	MaxExtractedBytes int64
}

// ArchiveInstaller extracts archives into a scoped workspace and moves one
// member to its final path
type ArchiveInstaller struct {
	fs     afero.Fs
	opts   Options
	logger *zerolog.Logger
}

// New creates an installer on fs
func New(fs afero.Fs, opts Options, logger *zerolog.Logger) *ArchiveInstaller {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ArchiveInstaller{
		fs:     fs,
		opts:   opts,
		logger: logger,
	}
}

// Install extracts data and installs memberName at destPath with mode 0755.
// The workspace is removed before Install returns, on success or failure.
func (i *ArchiveInstaller) Install(ctx context.Context, data []byte, contentType, memberName, destPath string) error {
	kind := kindOf(contentType)
	if kind == kindUnsupported {
		return fmt.Errorf("%w: %q", core.ErrUnsupportedContentType, contentType)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Missing destination directories are only created once the member
	// is found, so the writability check runs on the closest existing one.
	destDir := filepath.Dir(destPath)
	existing, err := fsops.ExistingAncestor(i.fs, destDir)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrInstallWriteFailed, err)
	}
	if err := fsops.CheckWritable(i.fs, existing); err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrInstallWriteFailed, existing, err)
	}

	root := i.opts.WorkspaceRoot
	if root == "" {
		root = existing
	}
	workspace, err := fsops.CreateTempDir(i.fs, root, WorkspacePrefix)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrInstallWriteFailed, err)
	}
	defer func() {
		if err := i.fs.RemoveAll(workspace); err != nil {
			i.logger.Warn().Err(err).Str("workspace", workspace).Msg("failed to remove workspace")
		}
	}()

	i.logger.Debug().
		Str("kind", kind.String()).
		Str("workspace", workspace).
		Int("bytes", len(data)).
		Msg("extracting asset")

	contentDir := filepath.Join(workspace, "content")
	if err := i.extract(kind, data, memberName, contentDir); err != nil {
		return fmt.Errorf("%w: %w", core.ErrArchiveExtractionFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	member, err := i.findMember(contentDir, memberName)
	if err != nil {
		return err
	}

	return i.place(member, destPath, existing, filepath.Join(workspace, "backup"))
}

func (i *ArchiveInstaller) extract(kind archiveKind, data []byte, memberName, dir string) error {
	if err := i.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create extraction directory: %w", err)
	}

	e := &extractor{
		fs:      i.fs,
		dir:     dir,
		limiter: newExtractionLimiter(i.opts.MaxExtractedBytes),
	}

	var err error
	switch kind {
	case kindZip:
		err = e.zip(data)
	case kindGzip:
		err = e.gzip(data, memberName)
	}
	if err != nil {
		return err
	}

	if len(e.skipped) > 0 {
		i.logger.Debug().Strs("entries", e.skipped).Msg("skipped non-regular archive entries")
	}
	return nil
}

// findMember looks memberName up at the top of the extracted tree, after
// a single wrapping directory has been stripped
func (i *ArchiveInstaller) findMember(contentDir, memberName string) (string, error) {
	top, err := stripLeadingComponent(i.fs, contentDir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrArchiveExtractionFailed, err)
	}

	member := filepath.Join(top, memberName)
	info, err := i.fs.Stat(member)
	if err == nil && info.Mode().IsRegular() {
		return member, nil
	}

	files, _ := fsops.ListFiles(i.fs, top)
	if hints := suggest(memberName, files); len(hints) > 0 {
		return "", fmt.Errorf("%w: %q (archive has %s)", core.ErrMissingExpectedMember, memberName, strings.Join(hints, ", "))
	}
	return "", fmt.Errorf("%w: %q", core.ErrMissingExpectedMember, memberName)
}

// place moves member to destPath and makes it executable. Directories
// between existing and destPath are created first. An existing file at
// destPath is kept in backupDir until the install commits.
func (i *ArchiveInstaller) place(member, destPath, existing, backupDir string) error {
	tx := transaction.NewManager(i.logger)

	fail := func(err error) error {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w: %w (%w)", core.ErrInstallWriteFailed, err, rbErr)
		}
		return fmt.Errorf("%w: %w", core.ErrInstallWriteFailed, err)
	}

	for _, dir := range dirsBetween(existing, filepath.Dir(destPath)) {
		if err := i.fs.Mkdir(dir, 0755); err != nil {
			return fail(fmt.Errorf("create destination directory: %w", err))
		}
		tx.Add("mkdir "+dir, func() error {
			return i.fs.Remove(dir)
		})
	}

	if info, err := i.fs.Stat(destPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", core.ErrInstallWriteFailed, destPath)
		}
		if err := i.fs.MkdirAll(backupDir, 0700); err != nil {
			return fail(fmt.Errorf("create backup directory: %w", err))
		}
		backup := filepath.Join(backupDir, filepath.Base(destPath))
		if err := i.fs.Rename(destPath, backup); err != nil {
			return fail(fmt.Errorf("back up existing file: %w", err))
		}
		tx.Add("backup "+destPath, func() error {
			return i.fs.Rename(backup, destPath)
		})
		i.logger.Debug().Str("dest", destPath).Msg("existing file moved aside")
	}

	if err := i.fs.Rename(member, destPath); err != nil {
		return fail(fmt.Errorf("move into place: %w", err))
	}
	tx.Add("install "+destPath, func() error {
		return i.fs.Remove(destPath)
	})

	if err := i.fs.Chmod(destPath, ExecutableMode); err != nil {
		return fail(fmt.Errorf("set permissions: %w", err))
	}

	tx.Commit()
	i.logger.Debug().Str("dest", destPath).Msg("installed")
	return nil
}

// dirsBetween lists the directories below base leading to dir, outermost
// first. It is empty when dir is base.
func dirsBetween(base, dir string) []string {
	rel, err := filepath.Rel(base, dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}

	var dirs []string
	current := base
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		dirs = append(dirs, current)
	}
	return dirs
}

// suggest ranks extracted files by how closely they match name
func suggest(name string, files []string) []string {
	if len(files) == 0 {
		return nil
	}

	bases := make([]string, len(files))
	for idx, f := range files {
		bases[idx] = filepath.Base(f)
	}

	ranks := fuzzy.RankFindNormalizedFold(name, bases)
	sort.Sort(ranks)

	var hints []string
	for _, r := range ranks {
		hints = append(hints, files[r.OriginalIndex])
		if len(hints) == 3 {
			break
		}
	}
	if len(hints) == 0 && len(files) <= 3 {
		hints = append(hints, files...)
	}
	return hints
}
