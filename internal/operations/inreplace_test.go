package operations

import (
	"testing"

	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const script = "#!/usr/bin/env bash\nset -e\nLIB_DIR=\"$(dirname \"$0\")/../lib\"\nsource \"$LIB_DIR/linear.sh\"\n"

func TestInreplace(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bin/lbranch", []byte(script), 0o755))

	require.NoError(t, Inreplace(fs, "/bin/lbranch", `^LIB_DIR=.*$`, `LIB_DIR="/opt/goblin/libexec/lbranch/lib"`))

	data, err := afero.ReadFile(fs, "/bin/lbranch")
	require.NoError(t, err)
	want := "#!/usr/bin/env bash\nset -e\nLIB_DIR=\"/opt/goblin/libexec/lbranch/lib\"\nsource \"$LIB_DIR/linear.sh\"\n"
	assert.Equal(t, want, string(data))

	info, err := fs.Stat("/bin/lbranch")
	require.NoError(t, err)
	assert.Equal(t, 0o755, int(info.Mode().Perm()))
}

func TestInreplace_Idempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/once", []byte(script), 0o755))
	require.NoError(t, afero.WriteFile(fs, "/twice", []byte(script), 0o755))

	const repl = `LIB_DIR="/p/libexec/lib"`
	require.NoError(t, Inreplace(fs, "/once", `^LIB_DIR=.*$`, repl))
	require.NoError(t, Inreplace(fs, "/twice", `^LIB_DIR=.*$`, repl))
	require.NoError(t, Inreplace(fs, "/twice", `^LIB_DIR=.*$`, repl))

	once, err := afero.ReadFile(fs, "/once")
	require.NoError(t, err)
	twice, err := afero.ReadFile(fs, "/twice")
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestInreplace_LiteralReplacement(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/f", []byte("A=1\nB=2\n"), 0o644))

	require.NoError(t, Inreplace(fs, "/f", `^B=.*$`, `B="$HOME/${x}"`))

	data, err := afero.ReadFile(fs, "/f")
	require.NoError(t, err)
	assert.Equal(t, "A=1\nB=\"$HOME/${x}\"\n", string(data))
}

func TestInreplace_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/f", []byte("# LIB_DIR is set below\n  LIB_DIR=indented\n"), 0o644))

	t.Run("pattern not found", func(t *testing.T) {
		err := Inreplace(fs, "/f", `^LIB_DIR=.*$`, "LIB_DIR=x")
		require.Error(t, err)
		assert.ErrorContains(t, err, types.ErrPatternNotFound.Error())

		data, err := afero.ReadFile(fs, "/f")
		require.NoError(t, err)
		assert.Equal(t, "# LIB_DIR is set below\n  LIB_DIR=indented\n", string(data))
	})

	t.Run("invalid pattern", func(t *testing.T) {
		err := Inreplace(fs, "/f", `^LIB_DIR=(`, "x")
		assert.ErrorContains(t, err, types.ErrInvalidPattern.Error())
	})

	t.Run("missing file", func(t *testing.T) {
		err := Inreplace(fs, "/missing", `^x$`, "y")
		assert.ErrorContains(t, err, types.ErrSourceNotFound.Error())
	})
}

func TestExpandReplacement(t *testing.T) {
	layout := types.Layout{Prefix: "/p", Bin: "/p/bin", Libexec: "/p/libexec/lbranch"}

	got, err := expandReplacement(`LIB_DIR="{{.Libexec}}/lib"`, layout)
	require.NoError(t, err)
	assert.Equal(t, `LIB_DIR="/p/libexec/lbranch/lib"`, got)

	_, err = expandReplacement(`{{.Nope}}`, layout)
	assert.ErrorContains(t, err, types.ErrFormulaInvalid.Error())

	_, err = expandReplacement(`{{.Bin`, layout)
	assert.ErrorContains(t, err, types.ErrFormulaInvalid.Error())
}
