package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zuccha/dnd-portal-sub002/pkg/catalog"
)

var listCmd = &cobra.Command{
	Use:   "list <kind>",
	Short: "List the resources of a campaign",
	Long: `list prints the resources of a kind that pass the stored filters, in the
display language. The kind may be singular or plural, e.g. weapon or weapons.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withKind(cmd, args, func(s *session, k catalog.Kind) error {
			if err := applyName(cmd, s, k); err != nil {
				return err
			}
			campaign, _ := cmd.Flags().GetString("campaign")
			if opts, _ := cmd.Flags().GetBool("options"); opts {
				for _, o := range k.ResourceOptions(cmd.Context(), campaign) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", o.ID, o.Label)
				}
				return nil
			}
			return printRows(cmd.OutOrStdout(), k.Rows(cmd.Context(), campaign))
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	kindArgs(listCmd)
	listCmd.Flags().Bool("options", false, "Print the name-only options instead of full rows.")
}
