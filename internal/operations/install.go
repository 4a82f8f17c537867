// Package operations implements the goblin package lifecycle: fetch, verify,
// unpack, install steps, smoke test and the lock file bookkeeping around them.
package operations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexandre1a/goblin-brew/internal/config"
	"github.com/alexandre1a/goblin-brew/internal/formula"
	"github.com/alexandre1a/goblin-brew/internal/models/consts"
	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/alexandre1a/goblin-brew/internal/utils/archive"
	"github.com/alexandre1a/goblin-brew/internal/utils/checks"
	"github.com/alexandre1a/goblin-brew/internal/utils/common"
	"github.com/alexandre1a/goblin-brew/internal/utils/logger"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
)

// InstallOptions tune a single install.
type InstallOptions struct {
	AllowUnverified bool // Proceed when the formula has no checksum
	SkipTest        bool // Do not run the smoke test after installing
}

// Fetched describes a downloaded archive.
type Fetched struct {
	Path     string
	SHA256   string
	Verified bool
}

// Manager runs package operations against one goblin prefix.
type Manager struct {
	fs       afero.Fs
	client   *http.Client
	cfg      *config.Config
	registry *formula.Registry
	progress io.Writer
	now      func() time.Time
}

// NewManager creates a Manager. progress receives download progress bars.
func NewManager(fs afero.Fs, client *http.Client, cfg *config.Config, registry *formula.Registry, progress io.Writer) *Manager {
	if progress == nil {
		progress = io.Discard
	}
	return &Manager{
		fs:       fs,
		client:   client,
		cfg:      cfg,
		registry: registry,
		progress: progress,
		now:      time.Now,
	}
}

// Fetch downloads the formula archive into the cache and verifies it. A
// missing checksum fails with ErrChecksumMissing unless opts allow it, in
// which case the archive is returned with Verified set to false.
func (m *Manager) Fetch(ctx context.Context, f types.Formula, opts InstallOptions) (*Fetched, error) {
	log := logger.Logger()

	if !m.cfg.SkipProbe {
		if err := checks.CheckConnectivity(ctx, m.client, f.URL); err != nil {
			return nil, err
		}
	}

	dest := filepath.Join(m.cfg.CacheDir, cacheName(f))
	log.Infof("downloading %s from %s", f.Name, f.URL)
	sum, err := common.DownloadFile(ctx, m.fs, m.client, f.URL, dest, m.progress)
	if err != nil {
		return nil, err
	}

	fetched := &Fetched{Path: dest, SHA256: sum}
	err = common.VerifyChecksum(f.SHA256, sum)
	switch {
	case err == nil:
		fetched.Verified = true
	case errors.Is(err, types.ErrChecksumMissing) && (opts.AllowUnverified || m.cfg.AllowUnverified):
		log.Warnf("%s declares no sha256, installing unverified archive (sha256 %s)", f.Name, sum)
	default:
		_ = m.fs.Remove(dest)
		return nil, zerr.With(err, "formula", f.Name)
	}
	return fetched, nil
}

// Install runs the whole pipeline for f: dependency check, fetch, verify,
// unpack, install steps, smoke test, lock file. Any failure aborts and is
// returned; files written by the failed attempt are removed and a previous
// install of the same package is put back.
func (m *Manager) Install(ctx context.Context, f types.Formula, opts InstallOptions) (*types.InstalledPackage, error) {
	log := logger.Logger()
	layout := m.cfg.Layout(f.Name)

	if err := checks.CheckDependencies(m.fs, layout.Bin, f.DependsOn); err != nil {
		return nil, zerr.With(err, "formula", f.Name)
	}

	fetched, err := m.Fetch(ctx, f, opts)
	if err != nil {
		return nil, err
	}

	if err := m.fs.MkdirAll(m.cfg.CacheDir, consts.DirPerm); err != nil {
		return nil, zerr.Wrap(err, types.ErrArchiveInvalid.Error())
	}
	stage, err := afero.TempDir(m.fs, m.cfg.CacheDir, "stage-"+f.Name+"-")
	if err != nil {
		return nil, zerr.Wrap(err, types.ErrArchiveInvalid.Error())
	}
	defer m.fs.RemoveAll(stage)

	archiveFile, err := m.fs.Open(fetched.Path)
	if err != nil {
		return nil, zerr.Wrap(err, types.ErrArchiveInvalid.Error())
	}
	err = archive.ExtractTarGz(m.fs, archiveFile, stage)
	archiveFile.Close()
	if err != nil {
		return nil, zerr.With(err, "formula", f.Name)
	}
	root, err := archive.SourceRoot(m.fs, stage)
	if err != nil {
		return nil, err
	}

	lockFile, err := LoadLockFile(m.fs, m.cfg.LockPath())
	if err != nil {
		return nil, err
	}
	prev, _ := Find(lockFile, f.Name)

	// The previous install is set aside until this one has passed its test.
	snap, err := takeSnapshot(m.fs, m.cfg.Prefix, prev)
	if err != nil {
		return nil, err
	}
	fail := func(files []string, err error) (*types.InstalledPackage, error) {
		m.rollback(files, layout)
		snap.restore()
		return nil, zerr.With(err, "formula", f.Name)
	}

	// A fresh libexec keeps a reinstall from inheriting stale helpers.
	if err := m.fs.RemoveAll(layout.Libexec); err != nil {
		return fail(nil, zerr.Wrap(err, types.ErrRemoveFailed.Error()))
	}

	runner := newStepRunner(m.fs, root, layout)
	if err := runner.run(f.Install); err != nil {
		return fail(runner.files, err)
	}

	binPath := m.binPath(f, layout)
	if !opts.SkipTest {
		log.Infof("testing %s", f.Name)
		if _, err := RunTest(ctx, binPath, f.Test, m.cfg.TestTimeout); err != nil {
			return fail(runner.files, err)
		}
	}

	pkg := types.InstalledPackage{
		ID:           uuid.NewString(),
		Name:         f.Name,
		Version:      formula.Version(f),
		ResolvedFrom: f.URL,
		SHA256:       fetched.SHA256,
		Verified:     fetched.Verified,
		InstallDate:  m.now(),
		OS:           consts.CurrentOS,
		Arch:         consts.CurrentArch,
		Path:         binPath,
		Libexec:      layout.Libexec,
		Files:        runner.files,
	}

	Upsert(lockFile, pkg)
	if err := SaveLockFile(m.fs, m.cfg.LockPath(), lockFile); err != nil {
		return fail(runner.files, err)
	}
	snap.discard()

	log.Infof("installed %s %s into %s", pkg.Name, pkg.Version, layout.Bin)
	return &pkg, nil
}

// InstallByName resolves name in the registry and installs it.
func (m *Manager) InstallByName(ctx context.Context, name string, opts InstallOptions) (*types.InstalledPackage, error) {
	f, err := m.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return m.Install(ctx, f, opts)
}

// Test reruns the smoke test of an installed package.
func (m *Manager) Test(ctx context.Context, name string) (*TestReport, error) {
	f, err := m.registry.Get(name)
	if err != nil {
		return nil, err
	}
	lockFile, err := LoadLockFile(m.fs, m.cfg.LockPath())
	if err != nil {
		return nil, err
	}
	pkg, ok := Find(lockFile, name)
	if !ok {
		return nil, zerr.With(types.ErrNotInstalled, "package", name)
	}
	return RunTest(ctx, pkg.Path, f.Test, m.cfg.TestTimeout)
}

func (m *Manager) binPath(f types.Formula, layout types.Layout) string {
	if f.Test.Binary != "" {
		return filepath.Join(layout.Bin, f.Test.Binary)
	}
	return filepath.Join(layout.Bin, f.Name)
}

func (m *Manager) rollback(files []string, layout types.Layout) {
	log := logger.Logger()
	for _, file := range files {
		if err := m.fs.Remove(file); err != nil {
			log.Debugf("rollback: %v", err)
		}
	}
	if err := m.fs.RemoveAll(layout.Libexec); err != nil {
		log.Debugf("rollback: %v", err)
	}
}

func cacheName(f types.Formula) string {
	ext := ".tar.gz"
	base := path.Base(f.URL)
	if strings.HasSuffix(base, ".tgz") {
		ext = ".tgz"
	}
	version := formula.Version(f)
	if version == "" {
		return fmt.Sprintf("%s%s", f.Name, ext)
	}
	return fmt.Sprintf("%s-%s%s", f.Name, version, ext)
}
