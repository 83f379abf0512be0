package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/conjugador/pkg/db"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <verb>",
		Short: "Print every stored conjugation of a verb",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			verb, err := db.GetVerbByInfinitive(cmd.Context(), a.db, strings.ToLower(args[0]))
			if err != nil {
				return err
			}
			rows, err := db.ListConjugations(cmd.Context(), a.db, verb.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (scraped %s)\n", verb.Infinitive, verb.CreatedAt.Format("2006-01-02 15:04"))
			renderConjugations(out, rows)
			return nil
		},
	}
}
