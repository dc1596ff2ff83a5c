package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	FetchModeEntries = "entries"
	FetchModeReports = "reports"

	DefaultScanInterval = time.Hour
	MinScanInterval     = time.Minute
	DefaultSyncMonths   = 3
)

var ErrNoAccounts = errors.New("no Toggl account configured: set TOGGL_API_TOKEN or add [[accounts]] to the config file")

// Account is one Toggl token/workspace pair. Each account gets its own
// worklog client.
type Account struct {
	APIToken    string `toml:"api_token"`
	WorkspaceID string `toml:"workspace_id"`
	SyncMonths  int    `toml:"sync_months"` // 1-12, default 3
	FetchMode   string `toml:"fetch_mode"`  // entries (default) or reports
}

// Config holds file and environment driven configuration.
type Config struct {
	Toggl struct {
		BaseURL string `toml:"base_url"` // default: https://api.track.toggl.com
	} `toml:"toggl"`
	Accounts []Account `toml:"accounts"`
	Server   struct {
		Addr         string        `toml:"addr"`
		ScanInterval time.Duration `toml:"scan_interval"`
	} `toml:"server"`
	MySQL struct {
		DSN string `toml:"dsn"` // optional; enables the sensor state recorder
	} `toml:"mysql"`
}

// Load reads the optional TOML file at path (or $WORKLOG_CONFIG when path
// is empty), applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		path = os.Getenv("WORKLOG_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TOGGL_BASE_URL"); v != "" {
		cfg.Toggl.BaseURL = v
	}
	if token := os.Getenv("TOGGL_API_TOKEN"); token != "" {
		acc := Account{
			APIToken:    token,
			WorkspaceID: os.Getenv("TOGGL_WORKSPACE_ID"),
			FetchMode:   os.Getenv("TOGGL_FETCH_MODE"),
		}
		if v := os.Getenv("TOGGL_SYNC_MONTHS"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.New("TOGGL_SYNC_MONTHS must be an integer")
			}
			acc.SyncMonths = n
		}
		cfg.Accounts = append(cfg.Accounts, acc)
	}
	if v := os.Getenv("SCAN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SCAN_INTERVAL: %w", err)
		}
		cfg.Server.ScanInterval = d
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.MySQL.DSN = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Toggl.BaseURL == "" {
		c.Toggl.BaseURL = "https://api.track.toggl.com"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ScanInterval == 0 {
		c.Server.ScanInterval = DefaultScanInterval
	}
	for i := range c.Accounts {
		a := &c.Accounts[i]
		a.APIToken = strings.TrimSpace(a.APIToken)
		a.WorkspaceID = strings.TrimSpace(a.WorkspaceID)
		if a.SyncMonths == 0 {
			a.SyncMonths = DefaultSyncMonths
		}
		if a.FetchMode == "" {
			a.FetchMode = FetchModeEntries
		}
	}
}

// Validate checks the configuration for values the clients would reject.
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return ErrNoAccounts
	}
	seen := make(map[string]bool, len(c.Accounts))
	for i, a := range c.Accounts {
		if a.APIToken == "" {
			return fmt.Errorf("account %d: api token is required", i+1)
		}
		if a.WorkspaceID == "" {
			return fmt.Errorf("account %d: workspace id is required", i+1)
		}
		if _, err := strconv.ParseInt(a.WorkspaceID, 10, 64); err != nil {
			return fmt.Errorf("account %d: workspace id must be an integer", i+1)
		}
		if seen[a.WorkspaceID] {
			return fmt.Errorf("account %d: workspace %s is configured twice", i+1, a.WorkspaceID)
		}
		seen[a.WorkspaceID] = true
		if a.SyncMonths < 1 || a.SyncMonths > 12 {
			return fmt.Errorf("account %d: sync months must be between 1 and 12, got %d", i+1, a.SyncMonths)
		}
		if a.FetchMode != FetchModeEntries && a.FetchMode != FetchModeReports {
			return fmt.Errorf("account %d: unknown fetch mode %q", i+1, a.FetchMode)
		}
	}
	if c.Server.ScanInterval < MinScanInterval {
		return fmt.Errorf("scan interval must be at least %v, got %v", MinScanInterval, c.Server.ScanInterval)
	}
	return nil
}
