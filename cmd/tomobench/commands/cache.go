package commands

import (
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/tomobench/internal/ui/report"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the operator cache",
	}
	cmd.AddCommand(c.newCacheListCmd())
	return cmd
}

func (c *CLI) newCacheListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published operator sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			entries, err := c.app.ListCache(cmd.Context(), globalOptions(cmd))
			if err != nil {
				return err
			}

			if asJSON {
				return report.JSON(cmd.OutOrStdout(), report.Rows(entries))
			}
			return report.CacheList(cmd.OutOrStdout(), entries, time.Now())
		},
	}
	cmd.Flags().Bool("json", false, "Print entries as JSON")
	return cmd
}
