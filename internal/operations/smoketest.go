package operations

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/alexandre1a/goblin-brew/internal/utils/logger"
	"github.com/spf13/cast"
	"go.trai.ch/zerr"
)

// TestReport is what the smoke test observed.
type TestReport struct {
	ExitCode int
	Output   string // Combined stdout and stderr
}

// RunTest runs the installed executable at bin as the test step describes
// and checks its exit status and output. Variables listed in Unset are
// removed from the environment so a credential in the caller's shell does
// not change the outcome.
func RunTest(ctx context.Context, bin string, step types.TestStep, defaultTimeout time.Duration) (*TestReport, error) {
	log := logger.Logger()

	timeout := defaultTimeout
	if step.Timeout != "" {
		d, err := cast.ToDurationE(step.Timeout)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, types.ErrFormulaInvalid.Error()), "timeout", step.Timeout)
		}
		timeout = d
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, step.Args...)
	cmd.Env = scrubEnv(os.Environ(), step.Unset)
	cmd.Stdout = &out
	cmd.Stderr = &out
	// Children that outlive a killed test would otherwise hold the pipes open.
	cmd.WaitDelay = time.Second

	log.Debugf("Exec: [%s %s]", bin, strings.Join(step.Args, " "))
	err := cmd.Run()

	report := &TestReport{Output: out.String()}
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		return report, zerr.With(zerr.Wrap(ctx.Err(), types.ErrTestRun.Error()), "binary", bin)
	case errors.As(err, &exitErr):
		report.ExitCode = exitErr.ExitCode()
	case err != nil:
		return report, zerr.With(zerr.Wrap(err, types.ErrTestRun.Error()), "binary", bin)
	}

	if report.ExitCode != step.ExitCode {
		return report, zerr.With(zerr.With(types.ErrTestExitCode, "expected", step.ExitCode), "actual", report.ExitCode)
	}
	if !strings.Contains(report.Output, step.Contains) {
		return report, zerr.With(zerr.With(types.ErrTestOutput, "expected", step.Contains), "output", report.Output)
	}
	return report, nil
}

func scrubEnv(environ, unset []string) []string {
	if len(unset) == 0 {
		return environ
	}
	drop := make(map[string]struct{}, len(unset))
	for _, name := range unset {
		drop[name] = struct{}{}
	}
	out := make([]string, 0, len(environ))
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if _, ok := drop[name]; ok {
			continue
		}
		out = append(out, kv)
	}
	return out
}
