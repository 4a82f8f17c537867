package commands

import (
	"fmt"

	"github.com/alexandre1a/goblin-brew/internal/formula"
	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

// ErrAuditProblems is returned when at least one audited formula has problems.
var ErrAuditProblems = zerr.New("audit found problems")

func (c *CLI) newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit [formula]...",
		Short: "Check formulae for authoring gaps such as a missing sha256",
		RunE: func(cmd *cobra.Command, args []string) error {
			var formulae []types.Formula
			if len(args) == 0 {
				formulae = c.registry.All()
			}
			for _, name := range args {
				f, err := c.registry.Get(name)
				if err != nil {
					return err
				}
				formulae = append(formulae, f)
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, finding := range formula.AuditAll(cmd.Context(), formulae) {
				if finding.Err == nil {
					_, _ = fmt.Fprintf(out, "✓ %s\n", finding.Name)
					continue
				}
				failed++
				_, _ = fmt.Fprintf(out, "✗ %s: %v\n", finding.Name, finding.Err)
			}
			if failed > 0 {
				return zerr.With(ErrAuditProblems, "formulae", failed)
			}
			return nil
		},
	}
}
