package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Force a re-sync of every configured workspace",
	Long: `Clear every workspace's cache and fetch the last N sync months again.

Examples:
  toggl-worklog sync              # last 3 months
  toggl-worklog sync --months 12  # last 12 months`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		months, _ := cmd.Flags().GetInt("months")
		logger := newLogger()
		application, _, err := loadApp(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer application.Close()

		res, err := application.Sync(cmd.Context(), months)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Timesheet sync completed: %d accounts synced, %d failed\n", res.Synced, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d of %d accounts failed to sync", res.Failed, res.Synced+res.Failed)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().Int("months", 3, "Sync window in months (1-12)")
}
