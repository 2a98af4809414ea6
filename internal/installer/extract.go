package installer

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/quantmind-br/binstall/internal/security"
)

const (
	// DefaultMaxExtractedBytes caps the total size written during extraction
	DefaultMaxExtractedBytes = 1 << 30
	// MaxFileCount caps the number of entries written during extraction
	MaxFileCount = 10000
)

type archiveKind int

const (
	kindUnsupported archiveKind = iota
	kindZip
	kindGzip
)

func (k archiveKind) String() string {
	switch k {
	case kindZip:
		return "zip"
	case kindGzip:
		return "gzip"
	default:
		return "unsupported"
	}
}

// kindOf maps a declared MIME type to an archive kind. Parameters such as
// charset are ignored.
func kindOf(contentType string) archiveKind {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch mediaType {
	case "application/zip", "application/x-zip-compressed":
		return kindZip
	case "application/gzip", "application/x-gzip":
		return kindGzip
	default:
		return kindUnsupported
	}
}

type extractionLimiter struct {
	maxBytes  int64
	written   int64
	fileCount int
}

func newExtractionLimiter(maxBytes int64) *extractionLimiter {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxExtractedBytes
	}
	return &extractionLimiter{maxBytes: maxBytes}
}

func (l *extractionLimiter) addFile() error {
	l.fileCount++
	if l.fileCount > MaxFileCount {
		return fmt.Errorf("file count limit exceeded: more than %d entries", MaxFileCount)
	}
	return nil
}

func (l *extractionLimiter) add(n int64) error {
	l.written += n
	if l.written > l.maxBytes {
		return fmt.Errorf("extraction size limit exceeded: more than %d bytes", l.maxBytes)
	}
	return nil
}

// Write lets the limiter sit in an io.MultiWriter next to the output file
func (l *extractionLimiter) Write(p []byte) (int, error) {
	if err := l.add(int64(len(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

type extractor struct {
	fs      afero.Fs
	dir     string
	limiter *extractionLimiter
	skipped []string
}

func (e *extractor) zip(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	for _, f := range r.File {
		target, err := e.target(f.Name)
		if err != nil {
			return err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := e.fs.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}
		case mode.IsRegular():
			if err := e.zipFile(f, target); err != nil {
				return fmt.Errorf("extract %s: %w", f.Name, err)
			}
		default:
			e.skipped = append(e.skipped, f.Name)
		}
	}

	return nil
}

func (e *extractor) zipFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open zip entry: %w", err)
	}
	defer rc.Close()

	return e.writeFile(target, rc, f.Mode())
}

// gzip extracts a gzip payload. A tarball is unpacked; any other stream is
// written as a single file named after the gzip header, or fallbackName.
func (e *extractor) gzip(data []byte, fallbackName string) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	br := bufio.NewReaderSize(gz, 4096)
	block, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read gzip: %w", err)
	}

	if looksLikeTar(block) {
		return e.tar(br)
	}

	name := path.Base(filepath.ToSlash(gz.Name))
	if gz.Name == "" || name == "." || name == "/" {
		name = fallbackName
	}
	target, err := e.target(name)
	if err != nil {
		return err
	}
	return e.writeFile(target, br, 0644)
}

func (e *extractor) tar(r io.Reader) error {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("tar read error: %w", err)
		}

		target, err := e.target(header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := e.fs.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}
		case tar.TypeReg:
			if err := e.writeFile(target, tr, os.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("extract %s: %w", header.Name, err)
			}
		default:
			// Links, devices and fifos are not needed to install one executable
			e.skipped = append(e.skipped, header.Name)
		}
	}
}

// target validates an entry name and returns its path in the workspace
func (e *extractor) target(name string) (string, error) {
	if err := security.ValidateExtractPath(e.dir, name); err != nil {
		return "", fmt.Errorf("invalid path in archive: %w", err)
	}
	return filepath.Join(e.dir, filepath.Clean(filepath.FromSlash(name))), nil
}

func (e *extractor) writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := e.limiter.addFile(); err != nil {
		return err
	}

	if err := e.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	// Owner must be able to read and move the file whatever the archive says
	perm := mode.Perm() | 0600
	f, err := e.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(io.MultiWriter(e.limiter, f), r); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return f.Close()
}

// looksLikeTar reports whether block is a plausible tar header: either the
// all-zero end-of-archive block or a header with a valid checksum
func looksLikeTar(block []byte) bool {
	if len(block) < 512 {
		return false
	}
	block = block[:512]

	if bytes.Equal(block, make([]byte, 512)) {
		return true
	}

	field := strings.Trim(string(block[148:156]), " \x00")
	want, err := strconv.ParseInt(field, 8, 64)
	if err != nil {
		return false
	}

	var unsigned, signed int64
	for i, b := range block {
		if i >= 148 && i < 156 {
			b = ' '
		}
		unsigned += int64(b)
		signed += int64(int8(b))
	}
	return want == unsigned || want == signed
}

// stripLeadingComponent returns the directory archive contents should be
// read from: the single top-level directory when everything is wrapped in
// one, otherwise dir itself
func stripLeadingComponent(fs afero.Fs, dir string) (string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return "", fmt.Errorf("read extracted files: %w", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}
