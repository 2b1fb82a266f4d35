package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/jobclock/internal/domain"
)

var entriesCmd = &cobra.Command{
	Use:   "entries <job>",
	Short: "Show the audit log of a job's timer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		job, err := resolveJob(ctx, args[0])
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := appInstance.TimerService.Entries(ctx, appInstance.UserID(), job.ID, limit)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No entries found")
			return nil
		}

		fmt.Printf("%-17s %-7s %-11s %-11s %10s\n", "Recorded", "Kind", "Start", "End", "Duration")
		fmt.Println("--------------------------------------------------------------")

		for _, e := range entries {
			start, end := "", ""
			if e.StartTime != nil {
				start = e.StartTime.Local().Format("15:04:05")
			}
			if e.EndTime != nil {
				end = e.EndTime.Local().Format("15:04:05")
			}
			duration := domain.FormatDuration(e.DurationMs)
			if e.Kind == domain.EntryKindReset {
				duration = "-" + duration
			}
			fmt.Printf("%-17s %-7s %-11s %-11s %10s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04"),
				e.Kind,
				start,
				end,
				duration,
			)
		}
		return nil
	},
}

func init() {
	entriesCmd.Flags().IntP("limit", "n", 50, "Maximum number of entries")
}
