package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/japaniel/conjugador/pkg/db"
)

func jobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "job <id>",
		Short: "Print the status of a batch job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			job, err := db.GetBatchJob(cmd.Context(), a.db, args[0])
			if err != nil {
				return err
			}
			v := job.View()
			completed := "-"
			if v.CompletedAt != nil {
				completed = *v.CompletedAt
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendRows([]table.Row{
				{"Job", v.JobID},
				{"Status", statusColor(v.Status)},
				{"Progress", fmt.Sprintf("%d/%d ok, %d failed", v.Progress.Success, v.Progress.Total, v.Progress.Failed)},
				{"Created", v.CreatedAt},
				{"Completed", completed},
			})
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}

func statusColor(s db.JobStatus) string {
	switch s {
	case db.JobStatusCompleted:
		return color.New(color.FgGreen).Sprint(s)
	case db.JobStatusFailed:
		return color.New(color.FgRed).Sprint(s)
	case db.JobStatusProcessing:
		return color.New(color.FgBlue).Sprint(s)
	default:
		return color.New(color.FgYellow).Sprint(s)
	}
}
