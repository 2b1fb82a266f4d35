package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/jobclock/internal/domain"
	"github.com/andy/jobclock/internal/service"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Control a job's timer",
	Long:  `Start, pause, stop, finish, adjust, or reset the timer of a job.`,
}

// transitionCmd builds a command that applies one transition to a job
func transitionCmd(use, short, done string, tr func() domain.Transition) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <job>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			job, err := resolveJob(ctx, args[0])
			if err != nil {
				return err
			}
			return applyAndPrint(ctx, job, tr(), done)
		},
	}
}

func applyAndPrint(ctx context.Context, job *domain.Job, tr domain.Transition, done string) error {
	req := service.TransitionRequest{JobID: job.ID, OwnerID: appInstance.UserID(), Transition: tr}
	if _, err := appInstance.TimerService.Apply(ctx, req); err != nil {
		return fmt.Errorf("failed to apply %s: %w", tr, err)
	}

	p, err := appInstance.TimerService.Snapshot(ctx, appInstance.UserID(), job.ID)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s\n", done)
	printProjection(p)
	return nil
}

var timerStartCmd = transitionCmd("start", "Start or resume the timer", "Timer started", domain.Start)

var timerPauseCmd = transitionCmd("pause", "Pause the timer, keeping the time so far", "Timer paused", domain.PauseOrStop)

var timerStopCmd = transitionCmd("stop", "Stop the timer, keeping the time so far", "Timer stopped", domain.PauseOrStop)

var timerDoneCmd = transitionCmd("done", "Stop the timer and mark the job done", "Job marked done", func() domain.Transition {
	return domain.SetStatus(domain.JobStatusDone)
})

var timerResetCmd = &cobra.Command{
	Use:   "reset <job>",
	Short: "Zero the job's total and stop its timer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		job, err := resolveJob(ctx, args[0])
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force && !confirmPrompt(fmt.Sprintf("Reset the total for '%s' to 0:00:00?", job.Name)) {
			fmt.Println("Cancelled.")
			return nil
		}
		return applyAndPrint(ctx, job, domain.ResetTotal(), "Timer reset")
	},
}

var timerAddCmd = &cobra.Command{
	Use:   "add <job> [H:MM:SS|MM:SS]",
	Short: "Add time to a job without running the timer",
	Long: `Add a positive amount of time to a job's total. The amount is given either
as a duration argument or with --minutes or --seconds.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var deltaMs int64
		switch {
		case len(args) == 2:
			ms, err := domain.ParseDuration(args[1])
			if err != nil {
				return err
			}
			deltaMs = ms
		case cmd.Flags().Changed("minutes"):
			minutes, _ := cmd.Flags().GetInt64("minutes")
			deltaMs = minutes * 60 * 1000
		case cmd.Flags().Changed("seconds"):
			seconds, _ := cmd.Flags().GetInt64("seconds")
			deltaMs = seconds * 1000
		default:
			return fmt.Errorf("give a duration, --minutes, or --seconds")
		}

		job, err := resolveJob(ctx, args[0])
		if err != nil {
			return err
		}
		return applyAndPrint(ctx, job, domain.ManualAdjust(deltaMs), fmt.Sprintf("Added %s", domain.FormatDuration(deltaMs)))
	},
}

var timerStatusCmd = &cobra.Command{
	Use:   "status <job>",
	Short: "Show the timer of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		job, err := resolveJob(ctx, args[0])
		if err != nil {
			return err
		}
		p, err := appInstance.TimerService.Snapshot(ctx, appInstance.UserID(), job.ID)
		if err != nil {
			return fmt.Errorf("failed to get timer state: %w", err)
		}

		printProjection(p)
		if since := p.Job.Timer.RunningSince; since != nil {
			fmt.Printf("  Running since: %s\n", since.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	timerAddCmd.Flags().Int64("minutes", 0, "Minutes to add")
	timerAddCmd.Flags().Int64("seconds", 0, "Seconds to add")
	timerResetCmd.Flags().BoolP("force", "f", false, "Do not ask for confirmation")

	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerPauseCmd)
	timerCmd.AddCommand(timerStopCmd)
	timerCmd.AddCommand(timerDoneCmd)
	timerCmd.AddCommand(timerStatusCmd)
	timerCmd.AddCommand(timerAddCmd)
	timerCmd.AddCommand(timerResetCmd)
}
