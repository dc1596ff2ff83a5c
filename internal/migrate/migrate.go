package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

type migration struct {
	version int
	file    string
}

// Run applies the pending migrations under internal/migrate/sql to db and
// returns how many were applied. Files are named 0001_description.sql and
// run in version order, each as one statement batch, so the DSN needs
// multiStatements=true.
func Run(ctx context.Context, db *sql.DB, log *slog.Logger) (int, error) {
	pending, err := load()
	if err != nil {
		return 0, err
	}
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return 0, err
	}
	applied, err := loadApplied(ctx, db)
	if err != nil {
		return 0, err
	}

	var n int
	for _, m := range pending {
		if applied[m.version] {
			log.Debug("migration already applied", slog.Int("version", m.version), slog.String("file", m.file))
			continue
		}
		b, err := fs.ReadFile(migrationsFS, path.Join("sql", m.file))
		if err != nil {
			return n, err
		}
		log.Info("applying migration", slog.Int("version", m.version), slog.String("file", m.file))
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return n, fmt.Errorf("applying %s: %w", m.file, err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO worklog_schema_migrations(version, applied_at) VALUES(?, ?)",
			m.version, time.Now().UTC()); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// load lists the embedded migrations sorted by version.
func load() ([]migration, error) {
	files, err := fs.Glob(migrationsFS, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	out := make([]migration, 0, len(files))
	seen := make(map[int]string, len(files))
	for _, f := range files {
		base := path.Base(f)
		v, err := parseVersion(base)
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", base, err)
		}
		if prev, ok := seen[v]; ok {
			return nil, fmt.Errorf("migrations %q and %q share version %d", prev, base, v)
		}
		seen[v] = base
		out = append(out, migration{version: v, file: base})
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	const ddl = `CREATE TABLE IF NOT EXISTS worklog_schema_migrations (
        version BIGINT PRIMARY KEY,
        applied_at DATETIME(6) NOT NULL
    ) ENGINE=InnoDB;`
	_, err := db.ExecContext(ctx, ddl)
	return err
}

func loadApplied(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM worklog_schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		m[v] = true
	}
	return m, rows.Err()
}

func parseVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok || prefix == "" {
		return 0, fmt.Errorf("missing version prefix")
	}
	return strconv.Atoi(prefix)
}
