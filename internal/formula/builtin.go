package formula

import "github.com/alexandre1a/goblin-brew/internal/models/types"

// Lbranch links git branches to Linear issues.
//
// The archive keeps its helpers next to the script and finds them through a
// LIB_DIR line relative to itself, so the line is rewritten to the private
// libexec location once the files have been split apart.
var Lbranch = types.Formula{
	Name:      "lbranch",
	Desc:      "Link git branches to Linear issues",
	Homepage:  "https://github.com/fletchrichman/lbranch",
	URL:       "https://github.com/fletchrichman/lbranch/archive/refs/tags/v0.2.0.tar.gz",
	SHA256:    "",
	License:   "MIT",
	DependsOn: []string{"jq"},
	Install: []types.Step{
		{Kind: types.StepBin, Source: "bin/lbranch"},
		{Kind: types.StepLibexec, Source: "lib/*", Dest: "lib"},
		{
			Kind:        types.StepInreplace,
			Source:      "bin/lbranch",
			Pattern:     `^LIB_DIR=.*$`,
			Replacement: `LIB_DIR="{{.Libexec}}/lib"`,
		},
	},
	Test: types.TestStep{
		Unset:    []string{"LINEAR_API_KEY"},
		ExitCode: 1,
		Contains: "LINEAR_API_KEY not found",
	},
}

// Builtin lists the formulae compiled into goblin.
func Builtin() []types.Formula {
	return []types.Formula{Lbranch}
}
