package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexandre1a/goblin-brew/internal/models/consts"
	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
)

// DownloadFile streams url into dest and returns the hex SHA-256 of the body.
// The file only appears at dest once the body has been fully written.
// Progress is drawn on progress; pass io.Discard to stay quiet.
func DownloadFile(ctx context.Context, fs afero.Fs, client *http.Client, url, dest string, progress io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, types.ErrDownloadFailed.Error()), "url", url)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, types.ErrDownloadFailed.Error()), "url", url)
	}
	defer resp.Body.Close()

	// Check if the response is successful
	if resp.StatusCode != http.StatusOK {
		return "", zerr.With(zerr.With(types.ErrDownloadFailed, "url", url), "status", resp.StatusCode)
	}

	if err := fs.MkdirAll(filepath.Dir(dest), consts.DirPerm); err != nil {
		return "", zerr.Wrap(err, types.ErrDownloadFailed.Error())
	}
	out, err := afero.TempFile(fs, filepath.Dir(dest), ".download-*")
	if err != nil {
		return "", zerr.Wrap(err, types.ErrDownloadFailed.Error())
	}
	tmp := out.Name()

	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription(fmt.Sprintf("downloading %s", path.Base(url))),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hash, bar), resp.Body); err != nil {
		out.Close()
		_ = fs.Remove(tmp)
		return "", zerr.With(zerr.Wrap(err, types.ErrDownloadFailed.Error()), "url", url)
	}
	_ = bar.Finish()
	if err := out.Close(); err != nil {
		_ = fs.Remove(tmp)
		return "", zerr.Wrap(err, types.ErrDownloadFailed.Error())
	}

	if err := fs.Rename(tmp, dest); err != nil {
		_ = fs.Remove(tmp)
		return "", zerr.Wrap(err, types.ErrDownloadFailed.Error())
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// FileSHA256 returns the hex SHA-256 of the file at path.
func FileSHA256(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// VerifyChecksum compares a computed digest with the declared one. An empty
// declared digest never passes: it returns ErrChecksumMissing.
func VerifyChecksum(declared, actual string) error {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return types.ErrChecksumMissing
	}
	if !strings.EqualFold(declared, actual) {
		return zerr.With(zerr.With(types.ErrIntegrity, "expected", declared), "actual", actual)
	}
	return nil
}
