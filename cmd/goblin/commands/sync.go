package commands

import (
	"fmt"
	"io"

	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

// ErrPackagesFailed is returned when sync or upgrade could not process every package.
var ErrPackagesFailed = zerr.New("some packages failed")

func (c *CLI) newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reinstall packages whose executable is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := c.manager.Sync(cmd.Context(), installOptions(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				_, _ = fmt.Fprintln(out, "Everything is in place.")
				return nil
			}
			return printResults(out, results)
		},
	}
	addInstallFlags(cmd)
	return cmd
}

func (c *CLI) newUpgradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade [formula]",
		Short: "Upgrade one or every installed package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			opts := installOptions(cmd)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				result, err := c.manager.Upgrade(cmd.Context(), args[0], force, opts)
				if err != nil {
					return err
				}
				return printResults(out, []*types.UpdateResult{result})
			}

			results, err := c.manager.UpgradeAll(cmd.Context(), force, opts)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(out, "No packages installed.")
				return nil
			}
			return printResults(out, results)
		},
	}
	cmd.Flags().Bool("force", false, "Reinstall even when the version is unchanged")
	addInstallFlags(cmd)
	return cmd
}

func printResults(out io.Writer, results []*types.UpdateResult) error {
	updated, skipped, failed := 0, 0, 0
	for _, result := range results {
		switch result.Status {
		case types.StatusSuccess:
			updated++
			if result.PreviousVersion != "" {
				_, _ = fmt.Fprintf(out, "✓ %s: %s -> %s\n", result.Name, result.PreviousVersion, result.NewVersion)
			} else {
				_, _ = fmt.Fprintf(out, "✓ %s: installed (%s)\n", result.Name, result.NewVersion)
			}
		case types.StatusSkipped:
			skipped++
			_, _ = fmt.Fprintf(out, "- %s: up to date (%s)\n", result.Name, result.NewVersion)
		default:
			failed++
			_, _ = fmt.Fprintf(out, "✗ %s: %s\n", result.Name, result.Message)
		}
	}
	_, _ = fmt.Fprintf(out, "Total: %d packages, %d updated, %d skipped, %d failed\n", len(results), updated, skipped, failed)
	if failed > 0 {
		return zerr.With(ErrPackagesFailed, "failed", failed)
	}
	return nil
}
