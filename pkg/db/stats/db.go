package stats

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stridehub/strideboard/pkg/db/clickhouse"
	leaderboardmodels "github.com/stridehub/strideboard/pkg/db/models/leaderboard"
	"github.com/stridehub/strideboard/pkg/utils"
)

// DB is the ClickHouse-backed participant-stats store. It implements Store.
type DB struct {
	clickhouse.Client
	Name string
}

// New creates the stats store, connecting with the shared ClickHouse client.
// The database name comes from LEADERBOARD_DB (default "strideboard").
func New(ctx context.Context, logger *zap.Logger) (*DB, error) {
	dbName := clickhouse.SanitizeName(utils.Env("LEADERBOARD_DB", "strideboard"))

	client, err := clickhouse.New(ctx, logger.With(zap.String("db", dbName)), dbName)
	if err != nil {
		return nil, err
	}

	return &DB{
		Client: client,
		Name:   dbName,
	}, nil
}

// NewWithSharedClient creates a stats store that reuses an existing ClickHouse
// connection pool. The database and tables must already exist.
func NewWithSharedClient(client clickhouse.Client) *DB {
	return &DB{
		Client: client,
		Name:   client.TargetDatabase,
	}
}

// DatabaseName returns the ClickHouse database backing this store.
func (db *DB) DatabaseName() string {
	return db.Name
}

// InitializeDB ensures the database and the participant_stats table exist.
//
// Schema design:
//   - ReplacingMergeTree(updated_at): deduplicates by user_id, keeping the
//     newest row - upsert-by-unique-key without an UPDATE statement
//   - ORDER BY (user_id): one logical row per user
func (db *DB) InitializeDB(ctx context.Context) error {
	if err := db.CreateDbIfNotExists(ctx, db.Name); err != nil {
		return fmt.Errorf("failed to create database %s: %w", db.Name, err)
	}

	schemaSQL := leaderboardmodels.ColumnsToSchemaSQL(leaderboardmodels.ParticipantStatsColumns)
	query := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (user_id)
	`, db.Name, leaderboardmodels.ParticipantStatsTableName, schemaSQL,
		clickhouse.Engine(clickhouse.ReplacingMergeTree, "updated_at"))

	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", leaderboardmodels.ParticipantStatsTableName, err)
	}

	return nil
}

// Close terminates the underlying ClickHouse connection.
func (db *DB) Close() error {
	return db.Db.Close()
}
