package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	tg "toggl-worklog/internal/adapter/toggl"
	"toggl-worklog/internal/config"
	"toggl-worklog/internal/worklog"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every configured token can reach its workspace",
	Long: `Validate each configured account against the Toggl API.

An account fails with invalid_auth when Toggl rejects the token or the
token has no access to the workspace, and with cannot_connect when Toggl
could not be reached or answered with any other error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger()
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		var failed int
		for _, acc := range cfg.Accounts {
			client, err := worklog.New(acc.APIToken, acc.WorkspaceID, acc.SyncMonths, logger,
				worklog.WithBaseURL(cfg.Toggl.BaseURL))
			if err != nil {
				return err
			}
			ok, err := client.ValidateToken(cmd.Context())
			client.Close()
			label := fmt.Sprintf("workspace %s: ", acc.WorkspaceID)
			switch status := validationStatus(ok, err); status {
			case statusOK:
				fmt.Fprintln(out, label+okStyle.Render(status))
			case statusCannotConnect:
				failed++
				fmt.Fprintln(out, label+errorStyle.Render(status)+" "+mutedStyle.Render(err.Error()))
			default:
				failed++
				fmt.Fprintln(out, label+errorStyle.Render(status))
			}
		}
		if failed > 0 {
			return errors.New("validation failed")
		}
		return nil
	},
}

const (
	statusOK            = "ok"
	statusInvalidAuth   = "invalid_auth"
	statusCannotConnect = "cannot_connect"
)

// validationStatus classifies a ValidateToken result. Toggl rejecting the
// token (401/403) is invalid_auth like a token without the workspace; any
// other failure is cannot_connect.
func validationStatus(ok bool, err error) string {
	var apiErr *tg.Error
	switch {
	case err != nil && errors.As(err, &apiErr) && apiErr.IsAuth():
		return statusInvalidAuth
	case err != nil:
		return statusCannotConnect
	case !ok:
		return statusInvalidAuth
	}
	return statusOK
}
