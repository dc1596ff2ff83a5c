package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"toggl-worklog/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	nameStyle   = lipgloss.NewStyle().Width(34)
	valueStyle  = lipgloss.NewStyle().Bold(true).Width(10).Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Fetch once and print the six worked-time summaries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger()
		application, _, err := loadApp(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer application.Close()

		refreshErr := application.RunOnce(cmd.Context())
		for _, snap := range application.Snapshots() {
			printSnapshot(cmd.OutOrStdout(), snap)
		}
		return refreshErr
	},
}

func printSnapshot(w io.Writer, snap domain.Snapshot) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Toggl Worklog (%s)", snap.WorkspaceID)))
	for _, s := range domain.Sensors {
		sum := snap.Summaries[s]
		fmt.Fprintf(w, "%s%s %s\n",
			nameStyle.Render(s.Name()),
			valueStyle.Render(fmt.Sprintf("%.2f h", sum.StateHours())),
			mutedStyle.Render(fmt.Sprintf("%dh %02dm, %d entries", sum.DurationHours, sum.DurationMinutes, sum.EntriesCount)),
		)
	}
	fmt.Fprintln(w)
}
