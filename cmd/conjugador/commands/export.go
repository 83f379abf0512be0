package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/conjugador/pkg/db"
	"github.com/japaniel/conjugador/pkg/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <verb>",
		Short: "Export one mode/tense of a verb as an Anki CSV card",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	cmd.Flags().String("mode", "Indicativo", "Grammatical mode")
	cmd.Flags().String("tense", "Presente", "Grammatical tense")
	cmd.Flags().Bool("skip-tu-vos", false, "Leave out tu and vós")
	cmd.Flags().StringP("output", "o", "", "Write to this file (with a UTF-8 BOM); '.' picks the default name")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	tense, _ := cmd.Flags().GetString("tense")
	skip, _ := cmd.Flags().GetBool("skip-tu-vos")
	output, _ := cmd.Flags().GetString("output")
	verb := strings.ToLower(strings.TrimSpace(args[0]))

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := db.ConjugationsFor(cmd.Context(), a.db, verb, mode, tense)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data stored for %s %s/%s", verb, mode, tense)
	}
	body := export.VerbCSV(verb, mode, tense, rows, skip)

	if output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), body)
		return err
	}
	if output == "." {
		output = export.Filename("", verb, mode, tense)
	}
	if err := os.WriteFile(output, []byte(export.BOM+body), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
	return nil
}
