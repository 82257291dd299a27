// Package postgres backs the storage interfaces with PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/storage/sqldb"
)

const pingTimeout = 5 * time.Second

// NewManager connects to PostgreSQL and returns a storage manager over it
func NewManager(logger arbor.ILogger, config *common.PostgresConfig) (interfaces.StorageManager, error) {
	db, err := sql.Open("postgres", ConnString(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sdb, err := sqldb.Open(context.Background(), db, sqldb.Postgres, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().
		Str("host", config.Host).
		Str("dbname", config.DBName).
		Msg("PostgreSQL storage manager initialized")
	return sqldb.NewManager(sdb, logger), nil
}

// ConnString builds a libpq key/value connection string
func ConnString(config *common.PostgresConfig) string {
	parts := []string{
		"host=" + quote(config.Host),
		"port=" + strconv.Itoa(config.Port),
		"user=" + quote(config.User),
		"dbname=" + quote(config.DBName),
		"sslmode=" + quote(config.SSLMode),
	}
	if config.Password != "" {
		parts = append(parts, "password="+quote(config.Password))
	}
	return strings.Join(parts, " ")
}

// quote escapes a value per the libpq rules for key/value strings
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
