package checks

import (
	"context"
	"net/http"
	"net/url"
	"os/exec"
	"path/filepath"

	"github.com/alexandre1a/goblin-brew/internal/models/consts"
	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
)

// CheckConnectivity checks that the host serving rawURL answers before a
// download is started. Any HTTP status counts as reachable.
func CheckConnectivity(ctx context.Context, client *http.Client, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return zerr.With(types.ErrUnreachable, "url", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, consts.ProbeTimeout)
	defer cancel()

	probe := u.Scheme + "://" + u.Host
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probe, nil)
	if err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrUnreachable.Error()), "host", u.Host)
	}
	resp, err := client.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrUnreachable.Error()), "host", u.Host)
	}
	resp.Body.Close()
	return nil
}

// CheckDependencies returns an error naming the first dependency found neither
// in binDir nor on PATH.
func CheckDependencies(fs afero.Fs, binDir string, deps []string) error {
	for _, dep := range deps {
		if ok, _ := afero.Exists(fs, filepath.Join(binDir, dep)); ok {
			continue
		}
		if _, err := exec.LookPath(dep); err == nil {
			continue
		}
		return zerr.With(types.ErrDependencyMissing, "dependency", dep)
	}
	return nil
}
