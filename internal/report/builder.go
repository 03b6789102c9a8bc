package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Fixed per-document filenames inside a mineral's folder. Each run
// overwrites the previous one; there is no artifact versioning.
const (
	TypesetFileName  = "report.tex"
	MarkupFileName   = "report.html"
	ArtifactFileName = "report.pdf"
)

// Builder drives the external typesetting toolchain for one mineral folder.
type Builder struct {
	command string
	args    []string
	timeout time.Duration
}

// NewBuilder creates a build orchestrator. The command is invoked as
// `command args... report.tex` with the mineral folder as its working
// directory, under the given timeout.
func NewBuilder(command string, args []string, timeout time.Duration) *Builder {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Builder{command: command, args: args, timeout: timeout}
}

// Build writes typesetDoc to the folder's typeset file, invokes the build
// command, and locates the produced artifact.
//
// Failure classification:
//   - non-zero exit, or a clean exit without the expected artifact, returns
//     *BuildError carrying the exit status and the full combined output;
//   - exceeding the configured timeout kills the process and returns
//     *BuildTimeoutError with whatever output was captured;
//   - caller context cancellation kills the process and returns ctx.Err().
//
// A single invocation per call; retrying is the caller's decision. On
// failure the written typeset file stays in place for operator inspection.
func (b *Builder) Build(ctx context.Context, folder, typesetDoc string) (string, error) {
	texPath := filepath.Join(folder, TypesetFileName)
	if err := writeFile(texPath, typesetDoc); err != nil {
		return "", fmt.Errorf("build: failed to write %s: %w", texPath, err)
	}

	buildCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	args := append(append([]string{}, b.args...), TypesetFileName)
	cmd := exec.CommandContext(buildCtx, b.command, args...)
	cmd.Dir = folder
	// Without a wait delay, output collection can block past the deadline
	// when a killed toolchain leaves grandchildren holding the pipe.
	cmd.WaitDelay = time.Second

	started := time.Now()
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(started)

	log.Debug().
		Str("command", b.command).
		Str("folder", folder).
		Dur("elapsed", elapsed).
		Bool("success", err == nil).
		Msg("typesetting command finished")

	if buildCtx.Err() == context.DeadlineExceeded {
		return "", &BuildTimeoutError{Timeout: b.timeout, Output: string(output)}
	}
	if ctx.Err() != nil {
		// The caller abandoned the request; the process was killed.
		return "", ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &BuildError{ExitCode: exitErr.ExitCode(), Output: string(output)}
		}
		return "", fmt.Errorf("build: failed to run %q: %w", b.command, err)
	}

	artifactPath := filepath.Join(folder, ArtifactFileName)
	if _, statErr := os.Stat(artifactPath); statErr != nil {
		return "", &BuildError{
			ExitCode: 0,
			Output:   fmt.Sprintf("%s\n%s was not produced", output, ArtifactFileName),
		}
	}

	return artifactPath, nil
}

// writeFile writes content to path, overwriting any prior version. The file
// handle is released on every exit path; a close failure after a clean
// write is still reported.
func writeFile(path, content string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	_, writeErr := f.WriteString(content)
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}
