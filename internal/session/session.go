// 包 session：浏览器会话注册表；每个会话拥有独立的场景镜像、相机、叠加层与协调器
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"globe-nav/internal/camera"
	"globe-nav/internal/gazetteer"
	"globe-nav/internal/homeview"
	"globe-nav/internal/logger"
	"globe-nav/internal/metrics"
	"globe-nav/internal/navigation"
	"globe-nav/internal/overlay"
	"globe-nav/internal/routes"
	"globe-nav/internal/scene"
)

var ErrNotFound = errors.New("session not found")

// Shared：进程级共享依赖（名录只读、地理编码缓存跨会话共享）
type Shared struct {
	Gazetteer *gazetteer.Gazetteer
	Geocoder  navigation.Geocoder
	Catalog   *routes.Catalog
	Stats     navigation.Recorder
	Step      time.Duration
}

// 文档注释：浏览器会话
// 背景：组件按叶子优先顺序组装；会话关闭时先取消动画与过渡，再关闭命令与状态订阅。
type Session struct {
	ID      string
	Created time.Time
	Home    homeview.View

	Graph   *scene.Graph
	Camera  *camera.Controller
	Overlay *overlay.Manager
	Nav     *navigation.Coordinator

	log      *slog.Logger
	lastSeen atomic.Int64
	once     sync.Once
}

func (s *Session) Touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

func (s *Session) Logger() *slog.Logger { return s.log }

func (s *Session) close() {
	s.once.Do(func() {
		s.Nav.Close()
		s.Overlay.Close()
		s.Camera.Close()
		s.Graph.Close()
		s.log.Info("session_closed", "age_s", int(time.Since(s.Created).Seconds()))
	})
}

// 文档注释：会话注册表
// 背景：按 UUID 管理会话；后台循环定期淘汰空闲超过 idleTTL 的会话。
// 约束：读多写少，RWMutex 保护；淘汰与删除都会关闭会话资源。
type Registry struct {
	mu      sync.RWMutex
	m       map[string]*Session
	shared  Shared
	idleTTL time.Duration
	now     func() time.Time
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option { return func(r *Registry) { r.now = now } }

func NewRegistry(shared Shared, idleTTL time.Duration, opts ...Option) *Registry {
	if shared.Catalog == nil {
		shared.Catalog = routes.Corridor()
	}
	r := &Registry{m: make(map[string]*Session), shared: shared, idleTTL: idleTTL, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Create：新建会话并登记
func (r *Registry) Create(home homeview.View) *Session {
	id := uuid.NewString()
	l := logger.Session(id)
	g := scene.NewGraph()
	cam := camera.New(g)
	ovl := overlay.New(g, r.shared.Catalog)
	nav := navigation.NewCoordinator(navigation.Deps{
		Gazetteer: r.shared.Gazetteer,
		Geocoder:  r.shared.Geocoder,
		Engine:    g,
		Camera:    cam,
		Overlay:   ovl,
		Catalog:   r.shared.Catalog,
		Stats:     r.shared.Stats,
		Logger:    l,
		Step:      r.shared.Step,
	})
	s := &Session{ID: id, Created: r.now(), Home: home, Graph: g, Camera: cam, Overlay: ovl, Nav: nav, log: l}
	s.Touch(s.Created)

	r.mu.Lock()
	r.m[id] = s
	n := len(r.m)
	r.mu.Unlock()
	metrics.ActiveSessions.Inc()
	l.Info("session_created", "home", home.Source, "active", n)
	return s
}

// Get：查找会话并刷新活跃时间
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.m[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.Touch(r.now())
	return s, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.m[id]
	if ok {
		delete(r.m, id)
	}
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	metrics.ActiveSessions.Dec()
	s.close()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}

// Sweep：淘汰空闲会话，返回淘汰数量
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)
	var idle []*Session
	r.mu.Lock()
	for id, s := range r.m {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.m, id)
		}
	}
	r.mu.Unlock()
	for _, s := range idle {
		metrics.ActiveSessions.Dec()
		s.log.Info("session_evicted", "idle_s", int(r.now().Sub(s.LastSeen()).Seconds()))
		s.close()
	}
	return len(idle)
}

// 文档注释：启动淘汰循环
// 背景：周期为 idleTTL 的四分之一（至少 1 秒）；在 ctx 取消时停止。
func (r *Registry) Start(ctx context.Context) {
	if r.idleTTL <= 0 {
		return
	}
	every := r.idleTTL / 4
	if every < time.Second {
		every = time.Second
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := r.Sweep(); n > 0 {
					logger.L().Debug("session_sweep", "evicted", n, "active", r.Len())
				}
			}
		}
	}()
}

// CloseAll：关闭并移除全部会话（进程退出时调用）
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.m))
	for id, s := range r.m {
		all = append(all, s)
		delete(r.m, id)
	}
	r.mu.Unlock()
	for _, s := range all {
		metrics.ActiveSessions.Dec()
		s.close()
	}
}
