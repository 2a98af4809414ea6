package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar wraps progressbar/v3 with binstall styling
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewDownloadBar creates a byte-counting bar drawn on w. A max of -1
// renders a spinner for downloads of unknown length.
func NewDownloadBar(w io.Writer, max int64, description string) *ProgressBar {
	bar := progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSpinnerType(14),
	)

	return &ProgressBar{bar: bar}
}

// Add64 increments the progress bar by n
func (p *ProgressBar) Add64(n int64) error {
	return p.bar.Add64(n)
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() error {
	return p.bar.Finish()
}

// Clear clears the progress bar
func (p *ProgressBar) Clear() error {
	return p.bar.Clear()
}

// Current returns the number of bytes counted so far. CurrentNum wraps
// around on spinners, CurrentBytes does not.
func (p *ProgressBar) Current() int64 {
	return int64(p.bar.State().CurrentBytes)
}

// ProgressReader wraps an io.Reader with a progress bar
type ProgressReader struct {
	reader io.Reader
	bar    *ProgressBar
}

// NewProgressReader creates a reader that advances a download bar on w
func NewProgressReader(reader io.Reader, w io.Writer, max int64, description string) *ProgressReader {
	return &ProgressReader{
		reader: reader,
		bar:    NewDownloadBar(w, max, description),
	}
}

// Read implements io.Reader with progress tracking
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.bar.Add64(int64(n))
	}
	return n, err
}

// Close finishes the progress bar
func (pr *ProgressReader) Close() error {
	return pr.bar.Finish()
}
