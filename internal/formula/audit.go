package formula

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/sourcegraph/conc/pool"
	"go.trai.ch/zerr"
	"go.uber.org/multierr"
)

// ErrAudit is returned when a formula has authoring problems.
var ErrAudit = zerr.New("formula audit failed")

// Finding is the audit outcome for one formula.
type Finding struct {
	Name string
	Err  error // nil when the formula is clean
}

// Audit checks a formula for authoring gaps. Every problem is reported, not
// just the first. An empty sha256 is always a problem.
func Audit(f types.Formula) error {
	var err error

	if f.Name == "" {
		err = multierr.Append(err, fmt.Errorf("name is empty"))
	}
	if f.Desc == "" {
		err = multierr.Append(err, fmt.Errorf("desc is empty"))
	}
	if f.Homepage == "" {
		err = multierr.Append(err, fmt.Errorf("homepage is empty"))
	}
	if f.License == "" {
		err = multierr.Append(err, fmt.Errorf("license is empty"))
	}

	u, perr := url.Parse(f.URL)
	switch {
	case f.URL == "" || perr != nil:
		err = multierr.Append(err, fmt.Errorf("url %q is not valid", f.URL))
	case u.Scheme != "https":
		err = multierr.Append(err, fmt.Errorf("url %q is not https", f.URL))
	}

	if f.SHA256 == "" {
		err = multierr.Append(err, types.ErrChecksumMissing)
	} else if !sha256Re.MatchString(f.SHA256) {
		err = multierr.Append(err, fmt.Errorf("sha256 %q is not a hex digest", f.SHA256))
	}

	if Version(f) == "" {
		err = multierr.Append(err, fmt.Errorf("no version declared and none found in url"))
	}

	if len(f.Install) == 0 {
		err = multierr.Append(err, fmt.Errorf("install has no steps"))
	}
	for i, step := range f.Install {
		if step.Kind != types.StepInreplace {
			continue
		}
		if _, rerr := regexp.Compile("(?m)" + step.Pattern); rerr != nil {
			err = multierr.Append(err, fmt.Errorf("install step %d: %w", i, rerr))
		}
	}

	if f.Test.Contains == "" {
		err = multierr.Append(err, fmt.Errorf("test asserts no output"))
	}

	if err != nil {
		return zerr.With(zerr.Wrap(err, ErrAudit.Error()), "formula", f.Name)
	}
	return nil
}

// AuditAll audits the formulae concurrently and returns one finding per
// formula, in input order.
func AuditAll(ctx context.Context, formulae []types.Formula) []Finding {
	findings := make([]Finding, len(formulae))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(4)
	for i, f := range formulae {
		p.Go(func(ctx context.Context) error {
			findings[i] = Finding{Name: f.Name}
			if err := ctx.Err(); err != nil {
				findings[i].Err = err
				return nil
			}
			findings[i].Err = Audit(f)
			return nil
		})
	}
	_ = p.Wait()
	return findings
}

var sha256Re = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
