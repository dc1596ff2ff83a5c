package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WORKLOG_CONFIG", "TOGGL_BASE_URL", "TOGGL_API_TOKEN", "TOGGL_WORKSPACE_ID",
		"TOGGL_SYNC_MONTHS", "TOGGL_FETCH_MODE", "SCAN_INTERVAL", "HTTP_ADDR", "MYSQL_DSN",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worklog.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOGGL_API_TOKEN", " secret ")
	t.Setenv("TOGGL_WORKSPACE_ID", "1234567")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Len(t, cfg.Accounts, 1)
	acc := cfg.Accounts[0]
	assert.Equal(t, "secret", acc.APIToken)
	assert.Equal(t, "1234567", acc.WorkspaceID)
	assert.Equal(t, DefaultSyncMonths, acc.SyncMonths)
	assert.Equal(t, FetchModeEntries, acc.FetchMode)
	assert.Equal(t, "https://api.track.toggl.com", cfg.Toggl.BaseURL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DefaultScanInterval, cfg.Server.ScanInterval)
	assert.Empty(t, cfg.MySQL.DSN)
}

func TestLoad_FromFileWithEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[toggl]
base_url = "http://toggl.local"

[[accounts]]
api_token = "a"
workspace_id = "1"
sync_months = 6

[[accounts]]
api_token = "b"
workspace_id = "2"
fetch_mode = "reports"

[server]
addr = ":9000"
scan_interval = "15m"
`)
	t.Setenv("WORKLOG_CONFIG", path)
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/worklog")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Len(t, cfg.Accounts, 2)
	assert.Equal(t, 6, cfg.Accounts[0].SyncMonths)
	assert.Equal(t, FetchModeEntries, cfg.Accounts[0].FetchMode)
	assert.Equal(t, FetchModeReports, cfg.Accounts[1].FetchMode)
	assert.Equal(t, "http://toggl.local", cfg.Toggl.BaseURL)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Server.ScanInterval)
	assert.Equal(t, "u:p@tcp(db:3306)/worklog", cfg.MySQL.DSN)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"no account", nil, "no Toggl account configured"},
		{"missing workspace", map[string]string{"TOGGL_API_TOKEN": "x"}, "workspace id is required"},
		{"non numeric workspace", map[string]string{"TOGGL_API_TOKEN": "x", "TOGGL_WORKSPACE_ID": "abc"}, "must be an integer"},
		{"sync months too large", map[string]string{"TOGGL_API_TOKEN": "x", "TOGGL_WORKSPACE_ID": "1", "TOGGL_SYNC_MONTHS": "13"}, "between 1 and 12"},
		{"sync months not a number", map[string]string{"TOGGL_API_TOKEN": "x", "TOGGL_WORKSPACE_ID": "1", "TOGGL_SYNC_MONTHS": "three"}, "TOGGL_SYNC_MONTHS"},
		{"unknown fetch mode", map[string]string{"TOGGL_API_TOKEN": "x", "TOGGL_WORKSPACE_ID": "1", "TOGGL_FETCH_MODE": "csv"}, "unknown fetch mode"},
		{"interval too short", map[string]string{"TOGGL_API_TOKEN": "x", "TOGGL_WORKSPACE_ID": "1", "SCAN_INTERVAL": "30s"}, "at least 1m0s"},
		{"interval unparsable", map[string]string{"TOGGL_API_TOKEN": "x", "TOGGL_WORKSPACE_ID": "1", "SCAN_INTERVAL": "soon"}, "SCAN_INTERVAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_DuplicateWorkspace(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[[accounts]]
api_token = "a"
workspace_id = "1"
`)
	t.Setenv("TOGGL_API_TOKEN", "b")
	t.Setenv("TOGGL_WORKSPACE_ID", "1")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configured twice")
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[[accounts]\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}
