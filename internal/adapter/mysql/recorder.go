package mysql

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"toggl-worklog/internal/domain"
	"toggl-worklog/internal/migrate"
)

// Recorder implements ports.Recorder by upserting the latest state of every
// sensor into MySQL. Only one row per workspace and sensor is kept.
type Recorder struct {
	db  *sql.DB
	log *slog.Logger
}

// NewRecorder opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func NewRecorder(ctx context.Context, dsn string, log *slog.Logger) (*Recorder, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "mysql: open")
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "mysql: ping")
	}
	return &Recorder{db: db, log: log}, nil
}

// Migrate creates or upgrades the recorder tables.
func (r *Recorder) Migrate(ctx context.Context) error {
	n, err := migrate.Run(ctx, r.db, r.log)
	if err != nil {
		return errors.Wrap(err, "mysql: migrate")
	}
	r.log.Debug("mysql recorder schema ready", slog.Int("applied", n))
	return nil
}

// RecordSnapshot upserts the six sensor states of snap in one transaction.
func (r *Recorder) RecordSnapshot(ctx context.Context, snap domain.Snapshot) error {
	if len(snap.Summaries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "mysql: begin")
	}
	const q = `
INSERT INTO worklog_sensor_states
  (workspace_id, sensor, state_hours, total_duration_ms, duration_hours, duration_minutes, entries_count, refreshed_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  state_hours=VALUES(state_hours),
  total_duration_ms=VALUES(total_duration_ms),
  duration_hours=VALUES(duration_hours),
  duration_minutes=VALUES(duration_minutes),
  entries_count=VALUES(entries_count),
  refreshed_at=VALUES(refreshed_at);
`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "mysql: prepare upsert")
	}
	defer stmt.Close()

	for _, sensor := range domain.Sensors {
		s, ok := snap.Summaries[sensor]
		if !ok {
			continue
		}
		if _, err := stmt.ExecContext(
			ctx,
			snap.WorkspaceID,
			string(sensor),
			s.StateHours(),
			s.TotalDurationMillis,
			s.DurationHours,
			s.DurationMinutes,
			s.EntriesCount,
			snap.RefreshedAt.UTC(),
		); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "mysql: upsert sensor %s", sensor)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "mysql: commit")
	}
	r.log.Info("mysql recorder upserted sensor states",
		slog.String("workspace_id", snap.WorkspaceID),
		slog.Int("count", len(snap.Summaries)),
	)
	return nil
}

// Close closes the underlying DB.
func (r *Recorder) Close() error { return r.db.Close() }
