package migrate

import (
	"context"
	"database/sql"

	"globe-nav/internal/logger"
)

var stmts = []string{
	`CREATE TABLE IF NOT EXISTS _nav_stats_total (
            id INT PRIMARY KEY,
            total_searches BIGINT NOT NULL DEFAULT 0,
            total_sessions BIGINT NOT NULL DEFAULT 0,
            total_visitors BIGINT NOT NULL DEFAULT 0
        )`,
	`CREATE TABLE IF NOT EXISTS _nav_stats_daily (
            day DATE PRIMARY KEY,
            searches BIGINT NOT NULL DEFAULT 0,
            sessions BIGINT NOT NULL DEFAULT 0,
            visitors BIGINT NOT NULL DEFAULT 0
        )`,
	`CREATE TABLE IF NOT EXISTS _nav_stats_kind (
            kind TEXT PRIMARY KEY,
            searches BIGINT NOT NULL DEFAULT 0
        )`,
	`CREATE TABLE IF NOT EXISTS _nav_recent_queries (
            query TEXT PRIMARY KEY,
            last_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
            hits BIGINT NOT NULL DEFAULT 0
        )`,
	`CREATE INDEX IF NOT EXISTS idx_nav_recent_last_seen ON _nav_recent_queries(last_seen)`,
	`INSERT INTO _nav_stats_total(id, total_searches, total_sessions, total_visitors)
         VALUES(1, 0, 0, 0)
         ON CONFLICT (id) DO NOTHING`,
}

// 背景：首次运行自动创建统计表与索引
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
