package operations

import (
	"context"
	"os"

	"github.com/alexandre1a/goblin-brew/internal/formula"
	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/alexandre1a/goblin-brew/internal/utils/logger"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
)

// List returns the installed packages in lock file order.
func (m *Manager) List() ([]types.InstalledPackage, error) {
	lockFile, err := LoadLockFile(m.fs, m.cfg.LockPath())
	if err != nil {
		return nil, err
	}
	return lockFile.Packages, nil
}

// Remove deletes every file recorded for the package and its lock entry.
func (m *Manager) Remove(name string) error {
	log := logger.Logger()

	lockFile, err := LoadLockFile(m.fs, m.cfg.LockPath())
	if err != nil {
		return err
	}
	pkg, ok := Find(lockFile, name)
	if !ok {
		return zerr.With(types.ErrNotInstalled, "package", name)
	}

	for _, file := range append([]string{pkg.Path}, pkg.Files...) {
		if err := m.fs.Remove(file); err != nil && !os.IsNotExist(err) {
			return zerr.With(zerr.Wrap(err, types.ErrRemoveFailed.Error()), "file", file)
		}
	}
	if pkg.Libexec != "" {
		if err := m.fs.RemoveAll(pkg.Libexec); err != nil {
			return zerr.With(zerr.Wrap(err, types.ErrRemoveFailed.Error()), "dir", pkg.Libexec)
		}
	}

	Delete(lockFile, name)
	if err := SaveLockFile(m.fs, m.cfg.LockPath(), lockFile); err != nil {
		return err
	}
	log.Infof("removed %s", name)
	return nil
}

// Sync reinstalls every locked package whose executable has gone missing.
func (m *Manager) Sync(ctx context.Context, opts InstallOptions) ([]*types.UpdateResult, error) {
	log := logger.Logger()

	lockFile, err := LoadLockFile(m.fs, m.cfg.LockPath())
	if err != nil {
		return nil, err
	}

	var results []*types.UpdateResult
	for _, installed := range lockFile.Packages {
		if ok, _ := afero.Exists(m.fs, installed.Path); ok {
			continue
		}
		log.Infof("executable missing for %s, reinstalling", installed.Name)

		pkg, err := m.InstallByName(ctx, installed.Name, opts)
		if err != nil {
			results = append(results, &types.UpdateResult{
				Name:            installed.Name,
				PreviousVersion: installed.Version,
				Status:          types.StatusError,
				Message:         err.Error(),
			})
			continue
		}
		results = append(results, &types.UpdateResult{
			Name:            installed.Name,
			PreviousVersion: installed.Version,
			NewVersion:      pkg.Version,
			Status:          types.StatusSuccess,
			Message:         "reinstalled",
		})
	}
	return results, nil
}

// Upgrade reinstalls name when its formula carries a newer version than the
// locked one, or unconditionally with force. A package that is not yet
// installed is installed.
func (m *Manager) Upgrade(ctx context.Context, name string, force bool, opts InstallOptions) (*types.UpdateResult, error) {
	f, err := m.registry.Get(name)
	if err != nil {
		return &types.UpdateResult{Name: name, Status: types.StatusError, Message: err.Error()}, err
	}

	lockFile, err := LoadLockFile(m.fs, m.cfg.LockPath())
	if err != nil {
		return &types.UpdateResult{Name: name, Status: types.StatusError, Message: err.Error()}, err
	}

	result := &types.UpdateResult{Name: f.Name}
	if installed, ok := Find(lockFile, name); ok {
		result.PreviousVersion = installed.Version
		if !force && formula.CompareVersions(installed.Version, formula.Version(f)) >= 0 {
			result.NewVersion = installed.Version
			result.Status = types.StatusSkipped
			result.Message = "already up to date"
			return result, nil
		}
	}

	pkg, err := m.Install(ctx, f, opts)
	if err != nil {
		result.Status = types.StatusError
		result.Message = err.Error()
		return result, err
	}
	result.NewVersion = pkg.Version
	result.Status = types.StatusSuccess
	result.Message = "upgraded"
	return result, nil
}

// UpgradeAll runs Upgrade for every locked package. Failures are reported
// in the results and do not stop the remaining upgrades.
func (m *Manager) UpgradeAll(ctx context.Context, force bool, opts InstallOptions) ([]*types.UpdateResult, error) {
	lockFile, err := LoadLockFile(m.fs, m.cfg.LockPath())
	if err != nil {
		return nil, err
	}

	results := make([]*types.UpdateResult, 0, len(lockFile.Packages))
	for _, installed := range lockFile.Packages {
		result, _ := m.Upgrade(ctx, installed.Name, force, opts)
		results = append(results, result)
	}
	return results, nil
}
