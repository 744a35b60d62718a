// 包 api：集中注册 HTTP 与 WebSocket 路由以解耦主入口
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"globe-nav/internal/gazetteer"
	"globe-nav/internal/homeview"
	"globe-nav/internal/logger"
	"globe-nav/internal/metrics"
	"globe-nav/internal/routes"
	"globe-nav/internal/session"
	"globe-nav/internal/store"
)

// StatsStore：搜索统计读写（可选）
type StatsStore interface {
	IncrSessions(ctx context.Context) error
	IncrVisitors(ctx context.Context) error
	GetTotals(ctx context.Context) (*store.Totals, error)
	TopQueries(ctx context.Context, hours, limit int) ([]store.QueryCount, error)
}

// Deps：路由依赖；Stats、Redis、Home 可为空
type Deps struct {
	Registry  *session.Registry
	Catalog   *routes.Catalog
	Gazetteer *gazetteer.Gazetteer
	Home      *homeview.Resolver
	Stats     StatsStore
	Redis     *redis.Client
	Logger    *slog.Logger
}

type server struct {
	Deps
	log      *slog.Logger
	upgrader websocket.Upgrader
	now      func() time.Time
}

// 文档注释：构建并返回 API 路由
// 背景：独立 ServeMux，由主入口挂载到 API_BASE 前缀之下；路径使用方法 + 通配符模式。
func BuildRoutes(d Deps) *http.ServeMux {
	if d.Catalog == nil {
		d.Catalog = routes.Corridor()
	}
	if d.Gazetteer == nil {
		d.Gazetteer = gazetteer.New(nil)
	}
	s := &server{Deps: d, log: d.Logger, now: time.Now}
	if s.log == nil {
		s.log = logger.L()
	}
	s.upgrader = websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 8192}

	mux := http.NewServeMux()
	handle := func(pattern, route string, h http.HandlerFunc) {
		mux.Handle(pattern, count(route, h))
	}
	handle("POST /sessions", "session_create", s.createSession)
	handle("DELETE /sessions/{id}", "session_delete", s.deleteSession)
	handle("GET /sessions/{id}/state", "session_state", s.withSession(s.state))
	handle("GET /sessions/{id}/ws", "session_ws", s.withSession(s.serveWS))
	handle("POST /sessions/{id}/search", "search", s.withSession(s.search))
	handle("POST /sessions/{id}/routes", "routes_show", s.withSession(s.showRoutes))
	handle("DELETE /sessions/{id}/routes", "routes_hide", s.withSession(s.hideRoutes))
	handle("PUT /sessions/{id}/target", "target_show", s.withSession(s.showTarget))
	handle("PATCH /sessions/{id}/target", "target_radius", s.withSession(s.updateTarget))
	handle("DELETE /sessions/{id}/target", "target_hide", s.withSession(s.hideTarget))
	handle("POST /sessions/{id}/markers", "markers", s.withSession(s.markers))
	handle("POST /sessions/{id}/officials", "officials", s.withSession(s.officials))
	handle("DELETE /sessions/{id}/panels/{panel}", "panel_close", s.withSession(s.closePanel))
	handle("POST /sessions/{id}/camera/ack", "camera_ack", s.withSession(s.cameraAck))
	handle("GET /routes", "routes", s.routeLegend)
	handle("GET /units", "units", s.units)
	handle("GET /categories", "categories", s.categories)
	handle("GET /sites", "sites", s.sites)
	handle("GET /stats", "stats", s.stats)
	return mux
}

func count(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsTotal.WithLabelValues(route).Inc()
		h.ServeHTTP(w, r)
	})
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession：解析路径中的会话 ID，不存在时返回 404
func (s *server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.Registry.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h(w, r, sess)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

const maxBody = 1 << 16

// decode：请求体为空时保留零值；格式错误返回 false 并写 400
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return false
	}
	return true
}

func isNotFound(err error) bool { return errors.Is(err, session.ErrNotFound) }
