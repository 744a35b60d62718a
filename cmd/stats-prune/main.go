package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"globe-nav/internal/logger"
	"globe-nav/internal/migrate"
	"globe-nav/internal/store"
	"globe-nav/internal/utils"
)

// 文档注释：最近查询词保留窗口清理
// 背景：按 last_seen 删除 STATS_KEEP_DAYS（默认 30）天之前的最近查询词，适合由 cron 周期执行。
// 约束：仅作用于 _nav_recent_queries；累计与按日计数保持不变。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	keepDays := 30
	if s := os.Getenv("STATS_KEEP_DAYS"); s != "" {
		var n int
		_, _ = fmt.Sscanf(s, "%d", &n)
		if n > 0 {
			keepDays = n
		}
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	n, err := store.AttachDB(db).PruneRecent(ctx, keepDays)
	if err != nil {
		l.Error("stats_prune_error", "err", err)
		os.Exit(1)
	}
	l.Info("stats_prune_done", "keep_days", keepDays, "rows", n)
}
