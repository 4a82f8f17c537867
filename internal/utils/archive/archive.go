// Package archive unpacks gzip compressed tarballs into a staging directory.
package archive

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexandre1a/goblin-brew/internal/models/consts"
	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/alexandre1a/goblin-brew/internal/utils/logger"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
)

// ExtractTarGz unpacks a .tar.gz stream into dest. Entries with absolute
// paths or ".." components are rejected.
func ExtractTarGz(fs afero.Fs, r io.Reader, dest string) error {
	log := logger.Logger()

	gz, err := gzip.NewReader(r)
	if err != nil {
		return zerr.Wrap(err, types.ErrArchiveInvalid.Error())
	}
	defer gz.Close()

	if err := fs.MkdirAll(dest, consts.DirPerm); err != nil {
		return zerr.Wrap(err, types.ErrArchiveInvalid.Error())
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, types.ErrArchiveInvalid.Error())
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fs.MkdirAll(target, consts.DirPerm); err != nil {
				return zerr.Wrap(err, types.ErrArchiveInvalid.Error())
			}
		case tar.TypeReg:
			if err := writeFile(fs, target, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) {
				return zerr.With(types.ErrUnsafeArchivePath, "entry", hdr.Name)
			}
			if _, err := safeJoin(dest, filepath.Join(filepath.Dir(hdr.Name), hdr.Linkname)); err != nil {
				return err
			}
			linker, ok := fs.(afero.Linker)
			if !ok {
				log.Warnf("skipping symlink %s, filesystem has no symlink support", hdr.Name)
				continue
			}
			if err := fs.MkdirAll(filepath.Dir(target), consts.DirPerm); err != nil {
				return zerr.Wrap(err, types.ErrArchiveInvalid.Error())
			}
			if err := linker.SymlinkIfPossible(hdr.Linkname, target); err != nil {
				return zerr.Wrap(err, types.ErrArchiveInvalid.Error())
			}
		default:
			// pax headers and the like carry no file content
			log.Debugf("skipping archive entry %s of type %c", hdr.Name, hdr.Typeflag)
		}
	}
}

// SourceRoot returns the directory install steps resolve paths against.
// Release tarballs usually wrap everything in one "name-version/" directory,
// which becomes the root when it is the only entry.
func SourceRoot(fs afero.Fs, dir string) (string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return "", zerr.Wrap(err, types.ErrArchiveInvalid.Error())
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}

func writeFile(fs afero.Fs, target string, r io.Reader, perm os.FileMode) error {
	if err := fs.MkdirAll(filepath.Dir(target), consts.DirPerm); err != nil {
		return zerr.Wrap(err, types.ErrArchiveInvalid.Error())
	}
	if perm == 0 {
		perm = consts.FilePerm
	}
	out, err := fs.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return zerr.Wrap(err, types.ErrArchiveInvalid.Error())
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return zerr.Wrap(err, types.ErrArchiveInvalid.Error())
	}
	return out.Close()
}

func safeJoin(dest, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", zerr.With(types.ErrUnsafeArchivePath, "entry", name)
	}
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", zerr.With(types.ErrUnsafeArchivePath, "entry", name)
	}
	return target, nil
}
