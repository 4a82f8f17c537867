package operations

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/alexandre1a/goblin-brew/internal/models/consts"
	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/alexandre1a/goblin-brew/internal/utils/logger"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
)

// stepRunner applies the install steps of one formula. installed maps a
// path relative to the source root to the location it was copied to, so
// inreplace can find files placed by earlier steps.
type stepRunner struct {
	fs        afero.Fs
	root      string
	layout    types.Layout
	installed map[string]string
	files     []string
}

func newStepRunner(fs afero.Fs, root string, layout types.Layout) *stepRunner {
	return &stepRunner{
		fs:        fs,
		root:      root,
		layout:    layout,
		installed: make(map[string]string),
	}
}

func (r *stepRunner) run(steps []types.Step) error {
	for i, step := range steps {
		var err error
		switch step.Kind {
		case types.StepBin:
			err = r.bin(step)
		case types.StepLibexec:
			err = r.libexec(step)
		case types.StepInreplace:
			err = r.inreplace(step)
		default:
			err = zerr.With(types.ErrUnknownStep, "kind", string(step.Kind))
		}
		if err != nil {
			return zerr.With(err, "step", i)
		}
	}
	return nil
}

func (r *stepRunner) bin(step types.Step) error {
	src := filepath.Join(r.root, step.Source)
	info, err := r.fs.Stat(src)
	if err != nil || info.IsDir() {
		return zerr.With(types.ErrSourceNotFound, "source", step.Source)
	}

	dst := filepath.Join(r.layout.Bin, filepath.Base(step.Source))
	if err := r.copyFile(src, dst, consts.ExecPerm); err != nil {
		return err
	}
	r.record(step.Source, dst)
	logger.Logger().Debugf("installed %s -> %s", step.Source, dst)
	return nil
}

func (r *stepRunner) libexec(step types.Step) error {
	matches, err := afero.Glob(r.fs, filepath.Join(r.root, step.Source))
	if err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrFormulaInvalid.Error()), "source", step.Source)
	}
	if len(matches) == 0 {
		return zerr.With(types.ErrSourceNotFound, "source", step.Source)
	}
	sort.Strings(matches)

	destDir := filepath.Join(r.layout.Libexec, step.Dest)
	for _, match := range matches {
		err := afero.Walk(r.fs, match, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(filepath.Dir(match), path)
			if err != nil {
				return err
			}
			dst := filepath.Join(destDir, rel)
			if err := r.copyFile(path, dst, info.Mode().Perm()); err != nil {
				return err
			}
			srcRel, err := filepath.Rel(r.root, path)
			if err != nil {
				return err
			}
			r.record(filepath.ToSlash(srcRel), dst)
			return nil
		})
		if err != nil {
			return zerr.With(err, "source", match)
		}
	}
	logger.Logger().Debugf("installed %d entries of %s into %s", len(matches), step.Source, destDir)
	return nil
}

func (r *stepRunner) inreplace(step types.Step) error {
	target, ok := r.installed[filepath.ToSlash(filepath.Clean(step.Source))]
	if !ok {
		return zerr.With(types.ErrSourceNotFound, "source", step.Source)
	}
	replacement, err := expandReplacement(step.Replacement, r.layout)
	if err != nil {
		return err
	}
	return Inreplace(r.fs, target, step.Pattern, replacement)
}

func (r *stepRunner) record(source, dst string) {
	r.installed[filepath.ToSlash(filepath.Clean(source))] = dst
	r.files = append(r.files, dst)
}

func (r *stepRunner) copyFile(src, dst string, perm os.FileMode) error {
	if err := r.fs.MkdirAll(filepath.Dir(dst), consts.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrSourceNotFound.Error()), "dest", dst)
	}

	in, err := r.fs.Open(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrSourceNotFound.Error()), "source", src)
	}
	defer in.Close()

	out, err := r.fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrSourceNotFound.Error()), "dest", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return zerr.With(zerr.Wrap(err, types.ErrSourceNotFound.Error()), "dest", dst)
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile does not change the mode of an existing file.
	return r.fs.Chmod(dst, perm)
}
