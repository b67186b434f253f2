package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zuccha/dnd-portal-sub002/pkg/catalog"
)

// withKind opens a session and resolves the kind named by the first argument.
func withKind(cmd *cobra.Command, args []string, fn func(s *session, k catalog.Kind) error) (err error) {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	k, err := s.catalog.Kind(args[0])
	if err != nil {
		return err
	}
	return fn(s, k)
}

func kindArgs(cmd *cobra.Command) {
	cmd.Flags().StringP("campaign", "c", "", "Campaign the resources belong to.")
	_ = cmd.MarkFlagRequired("campaign")
	cmd.Flags().StringP("name", "n", "", "Only include resources whose name contains this text. Stored as the kind's name filter.")
}

// applyName stores the --name flag as the kind's name filter when it was given.
func applyName(cmd *cobra.Command, s *session, k catalog.Kind) error {
	if !cmd.Flags().Changed("name") {
		return nil
	}
	name, _ := cmd.Flags().GetString("name")
	return k.SetNameFilter(cmd.Context(), name)
}

func printRows(w io.Writer, rows []catalog.Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		mark := " "
		if r.Selected {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, r.ID, r.Name, r.Summary)
	}
	return tw.Flush()
}
