package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
)

var langCmd = &cobra.Command{
	Use:   "lang [code]",
	Short: "Show or set the stored display language",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); err == nil {
				err = cerr
			}
		}()
		if len(args) == 1 {
			if err := s.prefs.SetLang(cmd.Context(), args[0]); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (supported: %s)\n", s.prefs.Lang(), strings.Join(i18n.Codes(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(langCmd)
}
