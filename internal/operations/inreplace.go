package operations

import (
	"bytes"
	"regexp"
	"text/template"

	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
)

// Inreplace rewrites every line of the file at path matching pattern with
// replacement, taken literally. Applying the same substitution twice leaves
// the file byte-identical to applying it once. A pattern matching no line
// returns ErrPatternNotFound and leaves the file untouched.
func Inreplace(fs afero.Fs, path, pattern, replacement string) error {
	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrInvalidPattern.Error()), "pattern", pattern)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrSourceNotFound.Error()), "file", path)
	}
	if !re.Match(data) {
		return zerr.With(zerr.With(types.ErrPatternNotFound, "pattern", pattern), "file", path)
	}

	out := re.ReplaceAllLiteral(data, []byte(replacement))
	if bytes.Equal(out, data) {
		return nil
	}

	info, err := fs.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, types.ErrSourceNotFound.Error()), "file", path)
	}
	return afero.WriteFile(fs, path, out, info.Mode().Perm())
}

// expandReplacement fills the {{.Prefix}}, {{.Bin}} and {{.Libexec}}
// placeholders of a replacement with the manager-chosen directories.
func expandReplacement(replacement string, layout types.Layout) (string, error) {
	tmpl, err := template.New("replacement").Option("missingkey=error").Parse(replacement)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, types.ErrFormulaInvalid.Error()), "replacement", replacement)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, layout); err != nil {
		return "", zerr.With(zerr.Wrap(err, types.ErrFormulaInvalid.Error()), "replacement", replacement)
	}
	return buf.String(), nil
}
