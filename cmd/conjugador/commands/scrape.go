package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/japaniel/conjugador/pkg/db"
	"github.com/japaniel/conjugador/pkg/grammar"
)

func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <verb>",
		Short: "Scrape and store one mode/tense of a verb",
		Args:  cobra.ExactArgs(1),
		RunE:  runScrape,
	}
	cmd.Flags().String("mode", "Indicativo", "Grammatical mode")
	cmd.Flags().String("tense", "Presente", "Grammatical tense")
	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	tense, _ := cmd.Flags().GetString("tense")
	task := grammar.Task{Verb: args[0], Mode: mode, Tense: tense}
	task.Verb = task.Normalize().Verb
	if err := task.Validate(); err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.manager.Persist(cmd.Context(), task.Verb, task.Mode, task.Tense) {
		return fmt.Errorf("failed to scrape %s", task)
	}

	rows, err := db.ConjugationsFor(cmd.Context(), a.db, task.Verb, task.Mode, task.Tense)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", color.New(color.FgGreen).Sprint("OK"), task)
	renderConjugations(out, rows)
	return nil
}

func renderConjugations(w io.Writer, rows []db.ConjugationRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Mode", "Tense", "Person", "Value"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Mode, r.Tense, r.Person, r.Value})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
