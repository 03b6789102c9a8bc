package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shBuilder returns a Builder that runs the given shell script in place of
// the typesetting toolchain. The script runs with the mineral folder as its
// working directory, exactly like the real command.
func shBuilder(script string, timeout time.Duration) *Builder {
	return NewBuilder("sh", []string{"-c", script}, timeout)
}

func TestBuildSuccess(t *testing.T) {
	folder := t.TempDir()
	b := shBuilder("cp report.tex report.pdf", 10*time.Second)

	artifact, err := b.Build(context.Background(), folder, `\documentclass{article}`)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(folder, ArtifactFileName), artifact)
	content, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, `\documentclass{article}`, string(content))
}

func TestBuildWritesTypesetFile(t *testing.T) {
	folder := t.TempDir()
	b := shBuilder("cp report.tex report.pdf", 10*time.Second)

	_, err := b.Build(context.Background(), folder, "typeset source")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(folder, TypesetFileName))
	require.NoError(t, err)
	assert.Equal(t, "typeset source", string(content))
}

func TestBuildOverwritesPriorRun(t *testing.T) {
	folder := t.TempDir()
	b := shBuilder("cp report.tex report.pdf", 10*time.Second)

	_, err := b.Build(context.Background(), folder, "first run")
	require.NoError(t, err)
	_, err = b.Build(context.Background(), folder, "second run")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(folder, TypesetFileName))
	require.NoError(t, err)
	assert.Equal(t, "second run", string(content))
}

func TestBuildFailureCarriesToolchainOutput(t *testing.T) {
	folder := t.TempDir()
	b := shBuilder(`echo '! Undefined control sequence' >&2; exit 1`, 10*time.Second)

	_, err := b.Build(context.Background(), folder, "broken source")

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, 1, buildErr.ExitCode)
	assert.Contains(t, buildErr.Output, "! Undefined control sequence")
}

func TestBuildFailureLeavesFilesInPlace(t *testing.T) {
	folder := t.TempDir()
	b := shBuilder("exit 2", 10*time.Second)

	_, err := b.Build(context.Background(), folder, "kept for inspection")
	require.Error(t, err)

	// Stated policy: a failed build leaves the typeset source on disk.
	content, readErr := os.ReadFile(filepath.Join(folder, TypesetFileName))
	require.NoError(t, readErr)
	assert.Equal(t, "kept for inspection", string(content))
}

func TestBuildMissingArtifactIsBuildError(t *testing.T) {
	folder := t.TempDir()
	b := shBuilder("echo done", 10*time.Second)

	_, err := b.Build(context.Background(), folder, "source")

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, 0, buildErr.ExitCode)
	assert.Contains(t, buildErr.Output, "report.pdf was not produced")
	assert.Contains(t, buildErr.Output, "done")
}

func TestBuildTimeoutIsDistinctFromBuildError(t *testing.T) {
	folder := t.TempDir()
	b := shBuilder("echo partial; sleep 10", 200*time.Millisecond)

	start := time.Now()
	_, err := b.Build(context.Background(), folder, "source")
	elapsed := time.Since(start)

	var timeoutErr *BuildTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	var buildErr *BuildError
	assert.False(t, errors.As(err, &buildErr), "timeout must not classify as BuildError")
	assert.Equal(t, 200*time.Millisecond, timeoutErr.Timeout)
	assert.Less(t, elapsed, 5*time.Second, "the process is terminated, not awaited")
}

func TestBuildCancelledContextKillsProcess(t *testing.T) {
	folder := t.TempDir()
	b := shBuilder("sleep 10", 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := b.Build(ctx, folder, "source")

	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestBuildUnknownCommand(t *testing.T) {
	folder := t.TempDir()
	b := NewBuilder("definitely-not-a-real-toolchain", nil, time.Second)

	_, err := b.Build(context.Background(), folder, "source")

	require.Error(t, err)
	var buildErr *BuildError
	assert.False(t, errors.As(err, &buildErr), "a start failure has no exit status to report")
}
