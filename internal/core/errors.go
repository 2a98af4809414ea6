package core

import (
	"context"
	"errors"
	"fmt"
)

// Failure kinds. Every one of them is terminal for the current run.
var (
	ErrNoSearchResult          = errors.New("no repository matched the search")
	ErrNoRelease               = errors.New("repository has no published release")
	ErrNoEligibleAsset         = errors.New("no release asset matches this platform")
	ErrDownloadFailed          = errors.New("download failed")
	ErrArchiveExtractionFailed = errors.New("archive extraction failed")
	ErrMissingExpectedMember   = errors.New("expected file not found in archive")
	ErrUnsupportedContentType  = errors.New("unsupported content type")
	ErrInstallWriteFailed      = errors.New("install write failed")

	// ErrInvalidInput marks a bad search term, name or flag value
	ErrInvalidInput = errors.New("invalid input")
	// ErrOverwriteDeclined means the user kept an existing executable
	ErrOverwriteDeclined = errors.New("overwrite declined")
)

// Stage names the step of an installation that failed
type Stage string

const (
	StageSearch   Stage = "search"
	StageRelease  Stage = "release"
	StageSelect   Stage = "select"
	StageDownload Stage = "download"
	StageInstall  Stage = "install"
)

// StageError records which stage failed and why
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// WrapStage attaches a stage to err. A nil err stays nil.
func WrapStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded in err, or "" if there is none
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// ExitCode maps an error to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, ErrInvalidInput):
		return ExitInvalidArgs
	case errors.Is(err, ErrNoSearchResult),
		errors.Is(err, ErrNoRelease),
		errors.Is(err, ErrDownloadFailed):
		return ExitNetwork
	case errors.Is(err, ErrInstallWriteFailed):
		return ExitPermission
	case errors.Is(err, ErrNoEligibleAsset),
		errors.Is(err, ErrArchiveExtractionFailed),
		errors.Is(err, ErrMissingExpectedMember),
		errors.Is(err, ErrUnsupportedContentType):
		return ExitInstallFailed
	default:
		return ExitGeneral
	}
}
