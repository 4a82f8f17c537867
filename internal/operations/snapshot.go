package operations

import (
	"path/filepath"
	"strconv"

	"github.com/alexandre1a/goblin-brew/internal/models/consts"
	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/alexandre1a/goblin-brew/internal/utils/logger"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
)

// snapshot holds the files of a previous install, moved aside while a
// reinstall runs so a failed attempt can put them back.
type snapshot struct {
	fs    afero.Fs
	dir   string
	moved []movedPath
}

type movedPath struct {
	original string
	saved    string
}

// takeSnapshot moves the executable, recorded files and libexec of prev
// into a hidden directory under prefix. A nil prev yields an empty snapshot.
func takeSnapshot(fs afero.Fs, prefix string, prev *types.InstalledPackage) (*snapshot, error) {
	s := &snapshot{fs: fs}
	if prev == nil {
		return s, nil
	}

	if err := fs.MkdirAll(prefix, consts.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, types.ErrPreviousInstall.Error()), "package", prev.Name)
	}
	dir, err := afero.TempDir(fs, prefix, ".previous-"+prev.Name+"-")
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, types.ErrPreviousInstall.Error()), "package", prev.Name)
	}
	s.dir = dir

	// Files inside libexec go first so the directory move takes what is left.
	paths := append([]string{prev.Path}, prev.Files...)
	if prev.Libexec != "" {
		paths = append(paths, prev.Libexec)
	}

	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		if ok, _ := afero.Exists(fs, path); !ok {
			continue
		}
		saved := filepath.Join(dir, strconv.Itoa(len(s.moved)))
		if err := fs.Rename(path, saved); err != nil {
			s.restore()
			return nil, zerr.With(zerr.Wrap(err, types.ErrPreviousInstall.Error()), "file", path)
		}
		s.moved = append(s.moved, movedPath{original: path, saved: saved})
	}
	return s, nil
}

// restore puts every moved path back, in reverse order.
func (s *snapshot) restore() {
	log := logger.Logger()
	for i := len(s.moved) - 1; i >= 0; i-- {
		m := s.moved[i]
		if err := s.fs.RemoveAll(m.original); err != nil {
			log.Warnf("restore %s: %v", m.original, err)
			continue
		}
		if err := s.fs.MkdirAll(filepath.Dir(m.original), consts.DirPerm); err != nil {
			log.Warnf("restore %s: %v", m.original, err)
			continue
		}
		if err := s.fs.Rename(m.saved, m.original); err != nil {
			log.Warnf("restore %s: %v", m.original, err)
		}
	}
	s.moved = nil
	s.discard()
}

// discard drops the saved files.
func (s *snapshot) discard() {
	if s.dir == "" {
		return
	}
	if err := s.fs.RemoveAll(s.dir); err != nil {
		logger.Logger().Debugf("discard %s: %v", s.dir, err)
	}
	s.dir = ""
}
