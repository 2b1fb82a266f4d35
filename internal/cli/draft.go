package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/jobclock/internal/domain"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Buffer time locally and commit it to a job in one step",
	Long: `The draft stopwatch runs on this machine only. Its time is added to the job
once, when it is saved. Drafts survive restarts and are shared by every
terminal using the same draft directory.`,
}

func draftAction(use, short string, fn func(jobID string) (*domain.DraftSession, error), done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <job>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := resolveJob(context.Background(), args[0])
			if err != nil {
				return err
			}
			d, err := fn(job.ID)
			if err != nil {
				return err
			}
			if done != "" {
				fmt.Printf("✓ %s\n", done)
			}
			printDraft(job, d)
			return nil
		},
	}
}

var draftStartCmd = draftAction("start", "Start or resume the draft stopwatch", func(jobID string) (*domain.DraftSession, error) {
	d, err := appInstance.Drafts.Start(jobID)
	if errors.Is(err, domain.ErrDraftSaveUnresolved) {
		return d, fmt.Errorf("the last save of this draft did not finish; run 'draft save' first")
	}
	return d, err
}, "Draft started")

var draftPauseCmd = draftAction("pause", "Pause the draft stopwatch", func(jobID string) (*domain.DraftSession, error) {
	return appInstance.Drafts.Pause(jobID)
}, "Draft paused")

var draftDiscardCmd = draftAction("discard", "Throw away the draft without saving", func(jobID string) (*domain.DraftSession, error) {
	return appInstance.Drafts.Discard(jobID)
}, "Draft discarded")

var draftStatusCmd = draftAction("status", "Show the draft stopwatch", func(jobID string) (*domain.DraftSession, error) {
	return appInstance.Drafts.Status(jobID)
}, "")

var draftSaveCmd = &cobra.Command{
	Use:   "save <job>",
	Short: "Add the draft's time to the job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		job, err := resolveJob(ctx, args[0])
		if err != nil {
			return err
		}

		d, seconds, err := appInstance.Drafts.Save(ctx, job.ID)
		switch {
		case errors.Is(err, domain.ErrAlreadySaved):
			return fmt.Errorf("this draft was already saved; start a new one to track more time")
		case errors.Is(err, domain.ErrNothingToSave):
			return fmt.Errorf("the draft has no time to save")
		case err != nil:
			return fmt.Errorf("failed to save draft, its time is kept for a retry: %w", err)
		}

		fmt.Printf("✓ Saved %s to %s\n", domain.FormatDuration(seconds*1000), job.Name)
		printDraft(job, d)
		return nil
	},
}

func printDraft(job *domain.Job, d *domain.DraftSession) {
	fmt.Printf("  Job: %s\n", job.Name)
	fmt.Printf("  State: %s\n", d.State())
	fmt.Printf("  Buffered: %s\n", domain.FormatDuration(d.BufferedSeconds*1000))
}

func init() {
	draftCmd.AddCommand(draftStartCmd)
	draftCmd.AddCommand(draftPauseCmd)
	draftCmd.AddCommand(draftSaveCmd)
	draftCmd.AddCommand(draftStatusCmd)
	draftCmd.AddCommand(draftDiscardCmd)
}
