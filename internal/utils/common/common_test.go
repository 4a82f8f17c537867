package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

func TestDownloadFile(t *testing.T) {
	body := []byte("archive bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	dest := filepath.Join("/goblin", "cache", "pkg-1.0.0.tar.gz")
	got, err := DownloadFile(context.Background(), fs, srv.Client(), srv.URL+"/pkg.tar.gz", dest, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, sum(body), got)

	data, err := afero.ReadFile(fs, dest)
	require.NoError(t, err)
	assert.Equal(t, body, data)

	entries, err := afero.ReadDir(fs, filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	fileSum, err := FileSHA256(fs, dest)
	require.NoError(t, err)
	assert.Equal(t, got, fileSum)
}

func TestDownloadFile_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	fs := afero.NewMemMapFs()
	dest := filepath.Join("/cache", "pkg.tar.gz")
	_, err := DownloadFile(context.Background(), fs, srv.Client(), srv.URL+"/pkg.tar.gz", dest, io.Discard)
	require.Error(t, err)
	assert.ErrorContains(t, err, types.ErrDownloadFailed.Error())

	exists, err := afero.Exists(fs, dest)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDownloadFile_TruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1024")
		_, _ = w.Write([]byte("short"))
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	dest := filepath.Join("/cache", "pkg.tar.gz")
	_, err := DownloadFile(context.Background(), fs, srv.Client(), srv.URL+"/pkg.tar.gz", dest, io.Discard)
	require.Error(t, err)
	assert.ErrorContains(t, err, types.ErrDownloadFailed.Error())

	entries, err := afero.ReadDir(fs, filepath.Dir(dest))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadFile_RenameFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("archive bytes"))
	}))
	defer srv.Close()

	fs := afero.NewOsFs()
	dest := filepath.Join(t.TempDir(), "cache", "pkg.tar.gz")
	// A non-empty directory in the way makes the final rename fail.
	require.NoError(t, fs.MkdirAll(dest, 0o755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dest, "occupied"), []byte("x"), 0o644))

	_, err := DownloadFile(context.Background(), fs, srv.Client(), srv.URL+"/pkg.tar.gz", dest, io.Discard)
	require.Error(t, err)

	entries, err := afero.ReadDir(fs, filepath.Dir(dest))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pkg.tar.gz", entries[0].Name())
}

func TestVerifyChecksum(t *testing.T) {
	actual := sum([]byte("x"))

	t.Run("match", func(t *testing.T) {
		assert.NoError(t, VerifyChecksum(actual, actual))
	})

	t.Run("match ignores case", func(t *testing.T) {
		upper := []byte(actual)
		for i, c := range upper {
			if c >= 'a' && c <= 'f' {
				upper[i] = c - 'a' + 'A'
			}
		}
		assert.NoError(t, VerifyChecksum(string(upper), actual))
	})

	t.Run("mismatch", func(t *testing.T) {
		err := VerifyChecksum(sum([]byte("y")), actual)
		require.Error(t, err)
		assert.ErrorContains(t, err, types.ErrIntegrity.Error())
	})

	t.Run("empty declared digest never passes", func(t *testing.T) {
		err := VerifyChecksum("", actual)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrChecksumMissing)

		err = VerifyChecksum("   ", "")
		assert.ErrorIs(t, err, types.ErrChecksumMissing)
	})
}
