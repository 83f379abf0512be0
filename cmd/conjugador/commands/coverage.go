package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/japaniel/conjugador/pkg/grammar"
	"github.com/japaniel/conjugador/pkg/verblist"
)

func coverageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coverage <verb>",
		Short: "List gold-standard mode/tense pairs a verb is missing persons for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			verb := strings.ToLower(strings.TrimSpace(args[0]))
			gaps, err := verblist.Coverage(cmd.Context(), a.db, verb)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(gaps) == 0 {
				fmt.Fprintf(out, "%s %s is complete\n", color.New(color.FgGreen).Sprint("✓"), verb)
				return nil
			}

			fmt.Fprintf(out, "%s %s: %d of %d combinations incomplete\n",
				color.New(color.FgYellow).Sprint("!"), verb, len(gaps), len(grammar.GoldStandard))
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.AppendHeader(table.Row{"Mode", "Tense", "Have", "Missing"})
			for _, g := range gaps {
				t.AppendRow(table.Row{g.Mode, g.Tense, g.Have, strings.Join(g.Missing, ", ")})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}
