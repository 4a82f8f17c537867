package operations

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestRunTest(t *testing.T) {
	bin := writeScript(t, `if [ -z "$TOKEN" ]; then echo "TOKEN not found" >&2; exit 1; fi; echo "has $TOKEN $1"`)
	t.Setenv("TOKEN", "abc")

	t.Run("unset variable", func(t *testing.T) {
		report, err := RunTest(context.Background(), bin, types.TestStep{
			Unset:    []string{"TOKEN"},
			ExitCode: 1,
			Contains: "TOKEN not found",
		}, time.Second*5)
		require.NoError(t, err)
		assert.Equal(t, 1, report.ExitCode)
	})

	t.Run("args and zero exit", func(t *testing.T) {
		report, err := RunTest(context.Background(), bin, types.TestStep{
			Args:     []string{"--help"},
			Contains: "has abc --help",
		}, time.Second*5)
		require.NoError(t, err)
		assert.Equal(t, 0, report.ExitCode)
	})

	t.Run("unexpected exit code", func(t *testing.T) {
		report, err := RunTest(context.Background(), bin, types.TestStep{
			ExitCode: 1,
			Contains: "has abc",
		}, time.Second*5)
		require.Error(t, err)
		assert.ErrorContains(t, err, types.ErrTestExitCode.Error())
		assert.Equal(t, 0, report.ExitCode)
	})

	t.Run("missing text", func(t *testing.T) {
		_, err := RunTest(context.Background(), bin, types.TestStep{
			Unset:    []string{"TOKEN"},
			ExitCode: 1,
			Contains: "LINEAR_API_KEY not found",
		}, time.Second*5)
		assert.ErrorContains(t, err, types.ErrTestOutput.Error())
	})
}

func TestRunTest_Timeout(t *testing.T) {
	bin := writeScript(t, "sleep 5\n")

	_, err := RunTest(context.Background(), bin, types.TestStep{Timeout: "100ms"}, time.Minute)
	require.Error(t, err)
	assert.ErrorContains(t, err, types.ErrTestRun.Error())
}

func TestRunTest_BadTimeout(t *testing.T) {
	_, err := RunTest(context.Background(), "/nonexistent", types.TestStep{Timeout: "soon"}, time.Minute)
	assert.ErrorContains(t, err, types.ErrFormulaInvalid.Error())
}

func TestRunTest_MissingBinary(t *testing.T) {
	_, err := RunTest(context.Background(), filepath.Join(t.TempDir(), "missing"), types.TestStep{}, time.Second)
	assert.ErrorContains(t, err, types.ErrTestRun.Error())
}

func TestScrubEnv(t *testing.T) {
	env := []string{"A=1", "LINEAR_API_KEY=secret", "B=x=y"}
	assert.Equal(t, []string{"A=1", "B=x=y"}, scrubEnv(env, []string{"LINEAR_API_KEY"}))
	assert.Equal(t, env, scrubEnv(env, nil))
}
