package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Column types are chosen to be valid in both SQLite and PostgreSQL.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS sa_watchlist (
	id TEXT NOT NULL,
	stock_code TEXT PRIMARY KEY,
	stock_name TEXT NOT NULL DEFAULT '',
	market TEXT NOT NULL DEFAULT '',
	buy_price BIGINT,
	buy_quantity BIGINT,
	buy_date TEXT NOT NULL DEFAULT '',
	memo TEXT NOT NULL DEFAULT '',
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS sa_analysis_results (
	id TEXT PRIMARY KEY,
	stock_code TEXT NOT NULL,
	stock_name TEXT NOT NULL DEFAULT '',
	market TEXT NOT NULL DEFAULT '',
	current_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	price_change DOUBLE PRECISION NOT NULL DEFAULT 0,
	price_change_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
	technical_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	technical_signals TEXT NOT NULL DEFAULT '[]',
	fundamental_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	fundamental_metrics TEXT NOT NULL DEFAULT '{}',
	total_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	recommendation TEXT NOT NULL DEFAULT '',
	tech_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
	fund_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
	analyzed_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sa_watchlist_created ON sa_watchlist(created_at);
CREATE INDEX IF NOT EXISTS idx_sa_analysis_code_time ON sa_analysis_results(stock_code, analyzed_at);
CREATE INDEX IF NOT EXISTS idx_sa_analysis_time ON sa_analysis_results(analyzed_at);
`

type migration struct {
	version int
	name    string
	up      []string
}

var migrations = []migration{
	{version: 1, name: "initial_schema", up: splitStatements(schemaV1)},
}

// migrate runs database migrations
func (d *DB) migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at BIGINT NOT NULL
	)`
	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := d.runMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
	}
	return nil
}

func (d *DB) runMigration(ctx context.Context, m migration) error {
	var count int
	err := d.db.QueryRowContext(ctx,
		d.dialect.Rebind("SELECT COUNT(*) FROM schema_migrations WHERE version = ?"), m.version).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Already applied
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.up {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if err := recordMigration(ctx, tx, d.dialect, m); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	d.logger.Debug().
		Int("version", m.version).
		Str("name", m.name).
		Msg("Applied migration")
	return nil
}

func recordMigration(ctx context.Context, tx *sql.Tx, dialect Dialect, m migration) error {
	_, err := tx.ExecContext(ctx,
		dialect.Rebind("INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)"),
		m.version, m.name, time.Now().Unix())
	return err
}

func splitStatements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
