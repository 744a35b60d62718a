// 包 store: 提供与 PostgreSQL 的数据访问层，记录搜索统计
package store

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"globe-nav/internal/logger"
)

// Store: 数据库访问入口，持有连接池并提供统计读写接口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// 文档注释：记录一次搜索
// 背景：递增累计与当日计数、按结果类型计数，并去重累加最近查询词；统计失败不影响搜索本身。
// 约束：空查询词不写入最近查询表；返回遇到的全部错误（合并）。
func (s *Store) RecordSearch(ctx context.Context, kind, query string) error {
	var errs []error
	exec := func(q string, args ...any) {
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			errs = append(errs, err)
		}
	}
	exec("UPDATE _nav_stats_total SET total_searches=total_searches+1 WHERE id=1")
	exec("INSERT INTO _nav_stats_daily(day, searches) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET searches=_nav_stats_daily.searches+1")
	exec("INSERT INTO _nav_stats_kind(kind, searches) VALUES($1, 1) ON CONFLICT (kind) DO UPDATE SET searches=_nav_stats_kind.searches+1", kind)
	if query != "" {
		exec(`INSERT INTO _nav_recent_queries(query, last_seen, hits)
        VALUES($1, now(), 1)
        ON CONFLICT (query) DO UPDATE SET last_seen=now(), hits=_nav_recent_queries.hits+1`, query)
	}
	logger.L().Debug("stats_incr", "kind", kind)
	return errors.Join(errs...)
}

// IncrSessions: 新会话计数
func (s *Store) IncrSessions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE _nav_stats_total SET total_sessions=total_sessions+1 WHERE id=1"); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO _nav_stats_daily(day, sessions) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET sessions=_nav_stats_daily.sessions+1")
	return err
}

// 文档注释：独立访客计数
// 背景：调用方负责去重（按日布隆过滤），此处只做累计与当日递增。
func (s *Store) IncrVisitors(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE _nav_stats_total SET total_visitors=total_visitors+1 WHERE id=1"); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO _nav_stats_daily(day, visitors) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET visitors=_nav_stats_daily.visitors+1")
	return err
}

// Totals: 统计返回结构
type Totals struct {
	Total    int64            `json:"total"`
	Today    int64            `json:"today"`
	Sessions int64            `json:"sessions"`
	Visitors int64            `json:"visitors"`
	ByKind   map[string]int64 `json:"byKind"`
}

// GetTotals: 读取累计、当日与按类型的搜索次数；缺行视为 0
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	t := Totals{ByKind: map[string]int64{}}
	row := s.db.QueryRowContext(ctx, "SELECT total_searches, total_sessions, total_visitors FROM _nav_stats_total WHERE id=1")
	if err := row.Scan(&t.Total, &t.Sessions, &t.Visitors); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	row2 := s.db.QueryRowContext(ctx, "SELECT searches FROM _nav_stats_daily WHERE day=current_date")
	if err := row2.Scan(&t.Today); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT kind, searches FROM _nav_stats_kind")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var n int64
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		t.ByKind[k] = n
	}
	logger.L().Debug("stats_totals", "total", t.Total, "today", t.Today)
	return &t, rows.Err()
}

// QueryCount: 最近查询词及命中次数
type QueryCount struct {
	Query string `json:"query"`
	Hits  int64  `json:"hits"`
}

// 文档注释：最近窗口内的热门查询词
// 参数：hours 为最近窗口小时数（默认 24），limit 为最大返回数量（默认 20）。
func (s *Store) TopQueries(ctx context.Context, hours, limit int) ([]QueryCount, error) {
	if hours <= 0 {
		hours = 24
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT query, hits
        FROM _nav_recent_queries
        WHERE last_seen >= now() - make_interval(hours => $1)
        ORDER BY hits DESC, last_seen DESC
        LIMIT $2`, hours, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []QueryCount
	for rows.Next() {
		var q QueryCount
		if err := rows.Scan(&q.Query, &q.Hits); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// 文档注释：最近查询词保留窗口
// 背景：最近查询表按查询词去重，长期运行会持续增长；按 last_seen 删除窗口之外的行。
// 约束：只清理最近查询表，累计与按日计数不受影响；keepDays<=0 时按 30 天处理。
func (s *Store) PruneRecent(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		keepDays = 30
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM _nav_recent_queries WHERE last_seen < now() - make_interval(days => $1)", keepDays)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	logger.L().Debug("stats_prune", "days", keepDays, "rows", n)
	return n, nil
}
