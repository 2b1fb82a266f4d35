package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local drafts or every job's total",
	Long: `Reset local state.

Examples:
  jobclock reset drafts    # Throw away every unsaved draft stopwatch
  jobclock reset all       # Zero every job's total and throw away drafts`,
}

var resetDraftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Delete every draft snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will discard ALL unsaved draft time. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		n, err := appInstance.DraftStore.Clear()
		if err != nil {
			return fmt.Errorf("failed to clear drafts: %w", err)
		}
		fmt.Printf("✓ %d draft(s) deleted\n", n)
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Zero every job's total and delete every draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will reset EVERY job to 0:00:00 and discard all drafts. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		ctx := context.Background()
		jobs, err := appInstance.JobService.List(ctx, appInstance.UserID(), nil)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}

		// Each reset is its own transition so the audit log keeps what was zeroed
		for _, job := range jobs {
			if _, err := appInstance.TimerService.Reset(ctx, appInstance.UserID(), job.ID); err != nil {
				return fmt.Errorf("failed to reset %s: %w", job.Name, err)
			}
		}

		if _, err := appInstance.DraftStore.Clear(); err != nil {
			return fmt.Errorf("failed to clear drafts: %w", err)
		}

		fmt.Printf("✓ %d job(s) reset\n", len(jobs))
		return nil
	},
}

func init() {
	resetCmd.AddCommand(resetDraftsCmd)
	resetCmd.AddCommand(resetAllCmd)
}
