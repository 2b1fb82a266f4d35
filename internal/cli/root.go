package cli

import (
	"github.com/spf13/cobra"

	"github.com/andy/jobclock/internal/app"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "jobclock",
	Short: "Track time against jobs from the terminal",
	Long: `Jobclock keeps a running total of time for each job. Timers can be
started and paused from any number of terminals or API clients and always agree
on the total.

By default, running jobclock without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(timerCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
}
