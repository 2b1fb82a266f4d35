package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andy/jobclock/internal/domain"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage jobs",
	Long:  `Create, list, show, and delete jobs.`,
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		notes, _ := cmd.Flags().GetString("notes")
		rawStatus, _ := cmd.Flags().GetString("status")
		status, err := domain.ParseJobStatus(rawStatus)
		if err != nil {
			return err
		}

		job, err := appInstance.JobService.Create(ctx, appInstance.UserID(), args[0], notes, status)
		if err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}

		fmt.Printf("✓ Job created: %s\n", job.Name)
		fmt.Printf("  ID: %s\n", job.ID)
		fmt.Printf("  Status: %s\n", job.Timer.Status)
		return nil
	},
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs with their current totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var status *domain.JobStatus
		if cmd.Flags().Changed("status") {
			raw, _ := cmd.Flags().GetString("status")
			parsed, err := domain.ParseJobStatus(raw)
			if err != nil {
				return err
			}
			status = &parsed
		}

		jobs, err := appInstance.JobService.List(ctx, appInstance.UserID(), status)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs found")
			return nil
		}

		fmt.Printf("%-36s  %-24s %-8s %-8s %10s\n", "ID", "Name", "Status", "Timer", "Total")
		fmt.Println("------------------------------------------------------------------------------------------")

		now := time.Now()
		for _, job := range jobs {
			timer := ""
			if job.Timer.IsRunning() {
				timer = "running"
			}
			fmt.Printf("%-36s  %-24s %-8s %-8s %10s\n",
				job.ID,
				truncate(job.Name, 24),
				job.Timer.Status,
				timer,
				domain.FormatDuration(job.Timer.Project(now)),
			)
		}
		return nil
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job>",
	Short: "Show a job and its running total",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		job, err := resolveJob(ctx, args[0])
		if err != nil {
			return err
		}
		p, err := appInstance.TimerService.Snapshot(ctx, appInstance.UserID(), job.ID)
		if err != nil {
			return err
		}

		printProjection(p)
		if job.Notes != "" {
			fmt.Printf("  Notes: %s\n", job.Notes)
		}
		fmt.Printf("  Created: %s\n", job.CreatedAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job>",
	Short: "Delete a job and its entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		job, err := resolveJob(ctx, args[0])
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force && !confirmPrompt(fmt.Sprintf("Delete job '%s' and all of its entries?", job.Name)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.JobService.Delete(ctx, appInstance.UserID(), job.ID); err != nil {
			return err
		}
		if _, err := appInstance.Drafts.Discard(job.ID); err != nil {
			return fmt.Errorf("job deleted but its draft could not be cleared: %w", err)
		}

		fmt.Printf("✓ Job deleted: %s\n", job.Name)
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func init() {
	jobsCreateCmd.Flags().String("notes", "", "Free-form notes")
	jobsCreateCmd.Flags().String("status", string(domain.JobStatusActive), "Initial status: active, paused, or done")

	jobsListCmd.Flags().String("status", "", "Only list jobs with this status")

	jobsDeleteCmd.Flags().BoolP("force", "f", false, "Do not ask for confirmation")

	jobsCmd.AddCommand(jobsCreateCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(jobsDeleteCmd)
}
