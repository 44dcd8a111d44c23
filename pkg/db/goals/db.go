package goals

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stridehub/strideboard/pkg/db/clickhouse"
	leaderboardmodels "github.com/stridehub/strideboard/pkg/db/models/leaderboard"
	"github.com/stridehub/strideboard/pkg/utils"
)

// DB is the ClickHouse-backed goal source. It implements Store.
type DB struct {
	clickhouse.Client
	Name string
}

// New creates the goal store. The database name comes from LEADERBOARD_DB
// (default "strideboard") - goals share the leaderboard database.
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

// NewWithSharedClient creates a goal store that reuses an existing ClickHouse
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

// InitializeDB ensures the database and the goals table exist.
//
// Schema design:
//   - ReplacingMergeTree(updated_at): deduplicates by (user_id, goal_id),
//     keeping the newest snapshot of each goal
//   - ORDER BY (user_id, goal_id): all completed-goal reads are per user
func (db *DB) InitializeDB(ctx context.Context) error {
	if err := db.CreateDbIfNotExists(ctx, db.Name); err != nil {
		return fmt.Errorf("failed to create database %s: %w", db.Name, err)
	}

	schemaSQL := leaderboardmodels.ColumnsToSchemaSQL(leaderboardmodels.GoalColumns)
	query := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS "%s"."%s" (
			%s
		) ENGINE = %s
		ORDER BY (user_id, goal_id)
	`, db.Name, leaderboardmodels.GoalsTableName, schemaSQL,
		clickhouse.Engine(clickhouse.ReplacingMergeTree, "updated_at"))

	if err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", leaderboardmodels.GoalsTableName, err)
	}

	return nil
}

// Close terminates the underlying ClickHouse connection.
func (db *DB) Close() error {
	return db.Db.Close()
}
