package operations

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexandre1a/goblin-brew/internal/models/consts"
	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
)

// LoadLockFile reads the lock file at path. A missing file is an empty lock.
func LoadLockFile(fs afero.Fs, path string) (*types.LockFile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.LockFile{Packages: []types.InstalledPackage{}}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, types.ErrLockReadFailed.Error()), "file", path)
	}

	var lockFile types.LockFile
	if err := json.Unmarshal(data, &lockFile); err != nil {
		return nil, zerr.With(zerr.Wrap(err, types.ErrLockReadFailed.Error()), "file", path)
	}
	if lockFile.Packages == nil {
		lockFile.Packages = []types.InstalledPackage{}
	}
	return &lockFile, nil
}

// SaveLockFile writes lockFile to path, replacing the previous content.
func SaveLockFile(fs afero.Fs, path string, lockFile *types.LockFile) error {
	data, err := json.MarshalIndent(lockFile, "", "  ")
	if err != nil {
		return zerr.Wrap(err, types.ErrLockWriteFailed.Error())
	}
	if err := fs.MkdirAll(filepath.Dir(path), consts.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrLockWriteFailed.Error()), "file", path)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, consts.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrLockWriteFailed.Error()), "file", path)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrLockWriteFailed.Error()), "file", path)
	}
	return nil
}

// Find returns the entry for name, case-insensitively.
func Find(lockFile *types.LockFile, name string) (*types.InstalledPackage, bool) {
	for i := range lockFile.Packages {
		if strings.EqualFold(lockFile.Packages[i].Name, name) {
			return &lockFile.Packages[i], true
		}
	}
	return nil, false
}

// Upsert replaces the entry with the same name or appends pkg.
func Upsert(lockFile *types.LockFile, pkg types.InstalledPackage) {
	if existing, ok := Find(lockFile, pkg.Name); ok {
		*existing = pkg
		return
	}
	lockFile.Packages = append(lockFile.Packages, pkg)
}

// Delete removes the entry for name and reports whether it existed.
func Delete(lockFile *types.LockFile, name string) bool {
	for i, p := range lockFile.Packages {
		if strings.EqualFold(p.Name, name) {
			lockFile.Packages = append(lockFile.Packages[:i], lockFile.Packages[i+1:]...)
			return true
		}
	}
	return false
}
