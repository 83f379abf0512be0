package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/japaniel/conjugador/pkg/db"
	"github.com/japaniel/conjugador/pkg/verblist"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [verbs...]",
		Short: "Scrape every gold-standard mode/tense for a list of verbs",
		Long: `Builds the task matrix of every verb against the nine gold-standard
mode/tense pairs and runs it over the worker pool, tracked as a job.

Verbs come from the arguments and/or --file (comma or newline separated, or JSON).`,
		RunE: runBatch,
	}
	cmd.Flags().StringP("file", "f", "", "Verb list file")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	verbs := append([]string(nil), args...)
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		fromFile, err := verblist.LoadVerbs(path)
		if err != nil {
			return fmt.Errorf("load verbs: %w", err)
		}
		verbs = append(verbs, fromFile...)
	}
	verbs, err := verblist.ParseVerbs([]byte(strings.Join(verbs, "\n")))
	if err != nil {
		return err
	}
	valid, invalid := verblist.Split(verbs)
	out := cmd.OutOrStdout()
	for _, v := range invalid {
		fmt.Fprintf(out, "%s skipping invalid verb %q\n", color.New(color.FgYellow).Sprint("!"), v)
	}
	if len(valid) == 0 {
		return errors.New("no valid verbs given")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks := verblist.TaskMatrix(valid)
	job, err := db.CreateBatchJob(cmd.Context(), a.db, len(tasks))
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	fmt.Fprintf(out, "job %s: %d verbs, %d tasks\n", job.ID, len(valid), len(tasks))

	errOut := cmd.ErrOrStderr()
	a.manager.OnProgress = func(done, total int) {
		fmt.Fprintf(errOut, "\r%d/%d", done, total)
	}
	sum := a.manager.RunBatch(cmd.Context(), tasks, job.ID)
	fmt.Fprintln(errOut)

	failed := fmt.Sprint(sum.Failed)
	if sum.Failed > 0 {
		failed = color.New(color.FgRed).Sprint(sum.Failed)
	}
	fmt.Fprintf(out, "total=%d success=%s failed=%s\n", sum.Total, color.New(color.FgGreen).Sprint(sum.Success), failed)
	return nil
}
