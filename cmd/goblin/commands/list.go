package commands

import (
	"fmt"
	"strings"

	"github.com/alexandre1a/goblin-brew/internal/formula"
	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			packages, err := c.manager.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(packages) == 0 {
				_, _ = fmt.Fprintln(out, "No packages installed.")
				return nil
			}
			for _, pkg := range packages {
				_, _ = fmt.Fprintf(out, "Name: %s\n", pkg.Name)
				_, _ = fmt.Fprintf(out, "  Version: %s (from %s)\n", pkg.Version, pkg.ResolvedFrom)
				_, _ = fmt.Fprintf(out, "  Installed: %s\n", pkg.InstallDate.Format("2006-01-02 15:04:05"))
				_, _ = fmt.Fprintf(out, "  Platform: %s/%s\n", pkg.OS, pkg.Arch)
				_, _ = fmt.Fprintf(out, "  Path: %s\n", pkg.Path)
				_, _ = fmt.Fprintf(out, "  Verified: %t\n", pkg.Verified)
			}
			return nil
		},
	}
}

func (c *CLI) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <formula>",
		Short: "Show a formula",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.registry.Get(args[0])
			if err != nil {
				return err
			}
			printFormula(cmd, f)
			return nil
		},
	}
}

func printFormula(cmd *cobra.Command, f types.Formula) {
	out := cmd.OutOrStdout()
	sha := f.SHA256
	if sha == "" {
		sha = "(none, archive cannot be verified)"
	}
	_, _ = fmt.Fprintf(out, "%s %s: %s\n", f.Name, formula.Version(f), f.Desc)
	_, _ = fmt.Fprintf(out, "Homepage: %s\n", f.Homepage)
	_, _ = fmt.Fprintf(out, "URL: %s\n", f.URL)
	_, _ = fmt.Fprintf(out, "SHA256: %s\n", sha)
	_, _ = fmt.Fprintf(out, "License: %s\n", f.License)
	if len(f.DependsOn) > 0 {
		_, _ = fmt.Fprintf(out, "Depends on: %s\n", strings.Join(f.DependsOn, ", "))
	}
}
