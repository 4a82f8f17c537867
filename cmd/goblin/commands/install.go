package commands

import (
	"fmt"

	"github.com/alexandre1a/goblin-brew/internal/operations"
	"github.com/spf13/cobra"
)

func installOptions(cmd *cobra.Command) operations.InstallOptions {
	allow, _ := cmd.Flags().GetBool("allow-unverified")
	skipTest, _ := cmd.Flags().GetBool("skip-test")
	return operations.InstallOptions{AllowUnverified: allow, SkipTest: skipTest}
}

func addInstallFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("allow-unverified", false, "Install even when the formula declares no sha256")
	cmd.Flags().Bool("skip-test", false, "Do not run the formula test after installing")
}

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <formula>...",
		Short: "Download, verify, install and test formulae",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := installOptions(cmd)
			for _, name := range args {
				pkg, err := c.manager.InstallByName(cmd.Context(), name, opts)
				if err != nil {
					return err
				}
				verified := "verified"
				if !pkg.Verified {
					verified = "UNVERIFIED"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s installed (%s, sha256 %s)\n", pkg.Name, pkg.Version, verified, pkg.SHA256)
			}
			return nil
		},
	}
	addInstallFlags(cmd)
	return cmd
}

func (c *CLI) newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <formula>",
		Short: "Run the test of an installed formula",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.manager.Test(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s test passed (exit %d)\n", args[0], report.ExitCode)
			return nil
		},
	}
}

func (c *CLI) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <formula>",
		Aliases: []string{"uninstall"},
		Short:   "Remove an installed formula",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.manager.Remove(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s removed\n", args[0])
			return nil
		},
	}
}
