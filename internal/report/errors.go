package report

import (
	"fmt"
	"time"
)

// Stage identifies which pipeline stage a report failure originated from.
type Stage string

const (
	StageRender       Stage = "render"
	StagePersist      Stage = "persist"
	StageBuild        Stage = "build"
	StageBuildTimeout Stage = "build-timeout"
)

// RenderError reports a template-fill failure. Rendering is atomic: when a
// RenderError is returned, neither document was produced and nothing was
// written or built.
type RenderError struct {
	Field string // Offending field name
	Err   error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render: field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("render: field %q is invalid", e.Field)
}

func (e *RenderError) Unwrap() error { return e.Err }

// PersistError reports a filesystem write failure for the markup document.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist: failed to write %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// BuildError reports a failure of the external typesetting toolchain: a
// non-zero exit status, or a missing artifact after a clean exit. Output
// holds the toolchain's full combined stdout and stderr, unparsed, so the
// caller can surface its diagnostics verbatim.
type BuildError struct {
	ExitCode int
	Output   string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build: typesetting command failed with exit status %d", e.ExitCode)
}

// BuildTimeoutError reports that the external build exceeded its time
// budget and was forcibly terminated. Output holds whatever combined output
// had been captured before termination.
type BuildTimeoutError struct {
	Timeout time.Duration
	Output  string
}

func (e *BuildTimeoutError) Error() string {
	return fmt.Sprintf("build: typesetting command exceeded %s timeout", e.Timeout)
}

// Error is the single failure type returned by the report service. It tags
// the inner stage failure with its origin so the request layer can classify
// without inspecting payloads.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("report %s stage: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Diagnostic returns the stage's diagnostic payload for user-facing
// display. Build failures expose the toolchain's captured output verbatim;
// other stages expose the error message.
func (e *Error) Diagnostic() string {
	switch inner := e.Err.(type) {
	case *BuildError:
		return inner.Output
	case *BuildTimeoutError:
		return inner.Output
	default:
		return e.Err.Error()
	}
}
