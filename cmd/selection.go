package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zuccha/dnd-portal-sub002/pkg/catalog"
)

// selectIDs applies the selection flags of cmd to k: --all selects the
// filtered list, ids are selected one by one. Selection only survives the
// invocation, so every command that acts on a selection builds it first.
func selectIDs(cmd *cobra.Command, s *session, k catalog.Kind, ids []string) ([]string, error) {
	if err := applyName(cmd, s, k); err != nil {
		return nil, err
	}
	campaign, _ := cmd.Flags().GetString("campaign")
	// Selection is scoped to the filtered list, which needs the list loaded.
	if err := k.Prefetch(cmd.Context(), campaign); err != nil {
		return nil, err
	}
	if all, _ := cmd.Flags().GetBool("all"); all {
		k.SelectAllResources(campaign)
	}
	for _, id := range ids {
		k.SelectResource(id)
	}
	return k.SelectedFilteredResourceIDs(campaign), nil
}

func selectionArgs(cmd *cobra.Command) {
	kindArgs(cmd)
	cmd.Flags().Bool("all", false, "Select every resource that passes the filters.")
}

var selectCmd = &cobra.Command{
	Use:   "select <kind> [ids...]",
	Short: "Preview a selection",
	Long: `select prints the resources a selection resolves to. Ids hidden by the
filters are never selected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withKind(cmd, args, func(s *session, k catalog.Kind) error {
			if _, err := selectIDs(cmd, s, k, args[1:]); err != nil {
				return err
			}
			campaign, _ := cmd.Flags().GetString("campaign")
			var selected []catalog.Row
			for _, r := range k.Rows(cmd.Context(), campaign) {
				if r.Selected {
					selected = append(selected, r)
				}
			}
			return printRows(cmd.OutOrStdout(), selected)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <kind> [ids...]",
	Short: "Delete the selected resources",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withKind(cmd, args, func(s *session, k catalog.Kind) error {
			ids, err := selectIDs(cmd, s, k, args[1:])
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing selected")
				return nil
			}
			if err := k.DeleteResources(cmd.Context(), ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d %s\n", len(ids), k.Plural())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
	selectionArgs(selectCmd)
	rootCmd.AddCommand(deleteCmd)
	selectionArgs(deleteCmd)
}
