package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zuccha/dnd-portal-sub002/pkg/catalog"
)

var filterCmd = &cobra.Command{
	Use:   "filter <kind> [name]",
	Short: "Show or set the stored name filter of a kind",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withKind(cmd, args, func(s *session, k catalog.Kind) error {
			ctx := cmd.Context()
			if reset, _ := cmd.Flags().GetBool("reset"); reset {
				if err := k.ResetFilters(ctx); err != nil {
					return err
				}
			}
			if len(args) == 2 {
				if err := k.SetNameFilter(ctx, args[1]); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %q\n", k.Plural(), k.NameFilter(ctx))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().Bool("reset", false, "Restore the default filters of the kind first.")
}
