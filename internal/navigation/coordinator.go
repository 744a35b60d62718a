package navigation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"globe-nav/internal/camera"
	"globe-nav/internal/gazetteer"
	"globe-nav/internal/geocode"
	"globe-nav/internal/logger"
	"globe-nav/internal/metrics"
	"globe-nav/internal/overlay"
	"globe-nav/internal/routes"
	"globe-nav/internal/scene"
)

// Geocoder：地理编码查询；(nil, nil) 表示未找到
type Geocoder interface {
	Lookup(ctx context.Context, query string) (*geocode.Result, error)
}

// Recorder：搜索统计（可选）
type Recorder interface {
	RecordSearch(ctx context.Context, kind, query string) error
}

// Deps：协调器依赖
type Deps struct {
	Gazetteer *gazetteer.Gazetteer
	Geocoder  Geocoder
	Engine    scene.Engine
	Camera    *camera.Controller
	Overlay   *overlay.Manager
	Catalog   *routes.Catalog
	Stats     Recorder
	Logger    *slog.Logger
	// Step：加载提示每步时长，零值使用 800ms
	Step time.Duration
}

const stateBuffer = 64

// 文档注释：搜索协调器
// 背景：先查单位名录，再查情报地点，最后才调用地理编码；按结果类型驱动相机、叠加层与面板状态。
// 约束：错误不越过协调器边界，一律映射为结果类型与状态文本。
// 每次搜索取得新的代号；在每个挂起点（地理编码调用、加载提示每一步）之后检查代号，
// 过期的搜索不再产生副作用，结果标记为 Stale。
type Coordinator struct {
	mu      sync.Mutex
	deps    Deps
	log     *slog.Logger
	markers *markerLayer
	state   NavigationState
	gen     uint64
	offGen  uint64
	subs    map[int]chan NavigationState
	nextSub int
	closed  bool
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewCoordinator(d Deps) *Coordinator {
	if d.Step <= 0 {
		d.Step = DefaultStep
	}
	if d.Catalog == nil {
		d.Catalog = routes.Corridor()
	}
	if d.Gazetteer == nil {
		d.Gazetteer = gazetteer.New(nil)
	}
	l := d.Logger
	if l == nil {
		l = logger.L()
	}
	c := &Coordinator{
		deps:    d,
		log:     l,
		markers: &markerLayer{engine: d.Engine, gaz: d.Gazetteer},
		state:   NavigationState{MarkerSource: gazetteer.SourceAll, MarkerCategory: gazetteer.CategoryAll},
		subs:    make(map[int]chan NavigationState),
		sleep:   sleepCtx,
	}
	n := c.markers.rebuild(gazetteer.SourceAll, gazetteer.CategoryAll)
	addSites(d.Engine)
	d.Engine.SetLayerVisible(scene.LayerUnits, false)
	c.log.Debug("coordinator_ready", "markers", n, "routes", len(d.Catalog.IDs()))
	return c
}

// 文档注释：执行一次搜索
// 返回：结果类型；空白查询直接返回 NotFound，不产生任何副作用也不占用代号。
func (c *Coordinator) Search(ctx context.Context, query string) Outcome {
	q := trimQuery(query)
	if q == "" {
		return Outcome{Kind: NotFound, Query: query}
	}
	start := time.Now()
	gen := c.begin(q)
	out := c.search(ctx, query, q, gen)
	out.Generation = gen
	if out.Stale {
		metrics.SearchStaleTotal.Inc()
		c.log.Info("search_stale", "query", q, "generation", gen, "kind", out.Kind)
		return out
	}
	metrics.SearchTotal.WithLabelValues(string(out.Kind)).Inc()
	metrics.SearchDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	c.log.Info("search_done", "query", q, "kind", out.Kind, "generation", gen, "ms", time.Since(start).Milliseconds())
	if c.deps.Stats != nil {
		if err := c.deps.Stats.RecordSearch(ctx, string(out.Kind), q); err != nil {
			c.log.Warn("search_stats_error", "error", err)
		}
	}
	return out
}

// search：raw 原样交给地理编码（缓存键与特例判定都基于原始查询），q 为去除首尾空白后的本地匹配词
// 约束：只看名录的首个命中；该条目无坐标时不再找后续条目，直接转入情报地点与地理编码。
func (c *Coordinator) search(ctx context.Context, raw, q string, gen uint64) Outcome {
	if e, ok := c.deps.Gazetteer.FindFirstMatch(q); ok && e.HasLocation() {
		return c.applyUnit(gen, q, e)
	}
	if s, ok := gazetteer.FindSite(q); ok {
		return c.applySite(gen, q, s)
	}
	if c.deps.Geocoder == nil {
		return c.applyNotFound(gen, q)
	}
	res, err := c.deps.Geocoder.Lookup(ctx, raw)
	if err != nil {
		c.log.Warn("search_geocode_error", "query", q, "error", err)
		return c.applyError(gen, q)
	}
	if res == nil {
		return c.applyNotFound(gen, q)
	}
	if res.IsSpecialRoute {
		return c.applyCorridor(ctx, gen, q, res)
	}
	return c.applyLocation(gen, q, res)
}

// begin：取得新代号并进入加载态
func (c *Coordinator) begin(q string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state.Generation = c.gen
	c.state.Query = q
	c.state.Loading = true
	c.state.LoadingText = ""
	c.state.Status = ""
	c.publishLocked()
	return c.gen
}

// 调用方持有锁
func (c *Coordinator) currentLocked(gen uint64) bool { return gen == c.gen }

func (c *Coordinator) finishLocked(kind OutcomeKind) {
	c.state.Loading = false
	c.state.LoadingText = ""
	c.state.LastOutcome = kind
	c.publishLocked()
}

func (c *Coordinator) applyUnit(gen uint64, q string, e *gazetteer.Entry) Outcome {
	out := Outcome{Kind: UnitFound, Query: q, Unit: e}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		out.Stale = true
		return out
	}
	if !c.state.MarkersVisible {
		c.state.MarkersVisible = true
		c.deps.Engine.SetLayerVisible(scene.LayerUnits, true)
	}
	p := e.Coordinates.LatLon()
	c.deps.Camera.FlyToPoint(p.Lon(), p.Lat(), camera.UnitAltitude, camera.PointDuration)
	if m, ok := c.markers.find(e.Name); ok {
		c.deps.Engine.SetShow(m.ID, true)
		c.deps.Engine.Select(m.ID)
		c.state.SelectedEntity = m.ID
	}
	c.state.RoutePanel = false
	c.finishLocked(UnitFound)
	return out
}

func (c *Coordinator) applySite(gen uint64, q string, s gazetteer.Site) Outcome {
	out := Outcome{Kind: SiteFound, Query: q, Site: &s}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		out.Stale = true
		return out
	}
	c.deps.Camera.FlyToPoint(s.Position.Lon(), s.Position.Lat(), camera.SiteAltitude, camera.PointDuration)
	c.deps.Engine.SetLayerVisible(s.Layer, true)
	if found := c.deps.Engine.Find(func(e scene.Entity) bool { return e.Layer == s.Layer }); len(found) > 0 {
		c.deps.Engine.Select(found[0].ID)
		c.state.SelectedEntity = found[0].ID
	}
	c.state.RoutePanel = false
	c.finishLocked(SiteFound)
	return out
}

func (c *Coordinator) applyNotFound(gen uint64, q string) Outcome {
	out := Outcome{Kind: NotFound, Query: q}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		out.Stale = true
		return out
	}
	c.state.Status = StatusNotFound
	c.state.RoutePanel = false
	c.finishLocked(NotFound)
	return out
}

// applyError：相机与叠加层保持原状
func (c *Coordinator) applyError(gen uint64, q string) Outcome {
	out := Outcome{Kind: Error, Query: q}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		out.Stale = true
		return out
	}
	c.state.Status = StatusSearchError
	c.finishLocked(Error)
	return out
}

func (c *Coordinator) applyLocation(gen uint64, q string, r *geocode.Result) Outcome {
	out := Outcome{Kind: LocationFound, Query: q, Location: r}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		out.Stale = true
		return out
	}
	c.deps.Overlay.HideRoutes()
	c.state.RoutePanel = false
	c.flyToResultLocked(r, camera.DefaultAltitude)
	c.finishLocked(LocationFound)
	return out
}

func (c *Coordinator) applyCorridor(ctx context.Context, gen uint64, q string, r *geocode.Result) Outcome {
	out := Outcome{Kind: LocationFound, Query: q, Location: r}
	current := func() bool { return c.currentLocked(gen) }
	show := func(loading bool, text string) { c.state.Loading, c.state.LoadingText = loading, text }
	if !c.pace(ctx, corridorSequence, current, show) {
		out.Stale = true
		return out
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		out.Stale = true
		return out
	}
	c.deps.Overlay.ShowAllRoutes()
	c.state.SelectedRoute = ""
	c.state.RoutePanel = true
	c.flyToResultLocked(r, camera.OverviewAltitude)
	c.finishLocked(LocationFound)
	return out
}

func (c *Coordinator) flyToResultLocked(r *geocode.Result, altitude float64) {
	if r.BBox != nil {
		b := r.BBox
		c.deps.Camera.FlyToBoundingBox(b.MinLat(), b.MaxLat(), b.MinLon(), b.MaxLon(), camera.BBoxDuration)
		return
	}
	c.deps.Camera.FlyToPoint(r.Lon, r.Lat, altitude, camera.PointDuration)
}

// 文档注释：按固定步长展示加载提示
// 参数：current 判断序列是否仍有效，show 写入对应的加载态；两者都在持锁时调用。
// 返回：false 表示期间被取代或上下文结束，此时不清理属于新序列的加载态。
func (c *Coordinator) pace(ctx context.Context, messages []string, current func() bool, show func(loading bool, text string)) bool {
	for _, msg := range messages {
		c.mu.Lock()
		if !current() {
			c.mu.Unlock()
			return false
		}
		show(true, msg)
		c.publishLocked()
		c.mu.Unlock()
		if err := c.sleep(ctx, c.deps.Step); err != nil {
			c.mu.Lock()
			if current() {
				show(false, "")
				c.publishLocked()
			}
			c.mu.Unlock()
			return false
		}
	}
	return true
}

// 文档注释：展示人员检索提示序列后打开关键人员面板
// 约束：使用独立代号与加载态，不影响进行中的搜索；重复调用时只有最后一次生效。
// 返回：是否生效
func (c *Coordinator) ViewKeyOfficials(ctx context.Context) bool {
	c.mu.Lock()
	c.offGen++
	gen := c.offGen
	c.mu.Unlock()

	current := func() bool { return gen == c.offGen }
	show := func(loading bool, text string) {
		c.state.OfficialsLoading, c.state.OfficialsLoadingText = loading, text
	}
	if !c.pace(ctx, officialsSequence, current, show) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !current() {
		return false
	}
	c.state.OfficialsPanel = true
	show(false, "")
	c.publishLocked()
	return true
}

// ShowRoutes：显示指定路线；空列表表示全部
func (c *Coordinator) ShowRoutes(ids []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(ids) == 0 {
		c.deps.Overlay.ShowAllRoutes()
		c.state.SelectedRoute = ""
	} else {
		c.deps.Overlay.ShowRoutes(ids)
		c.state.SelectedRoute = ""
		if len(ids) == 1 {
			c.state.SelectedRoute = ids[0]
		}
	}
	c.publishLocked()
	return c.deps.Overlay.ActiveRouteIDs()
}

// HideRoutes：移除路线集合，面板状态不变
func (c *Coordinator) HideRoutes() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deps.Overlay.HideRoutes()
	c.state.SelectedRoute = ""
	c.publishLocked()
}

// SelectRoute：图例选择；空串显示全部，否则仅显示该路线
func (c *Coordinator) SelectRoute(id string) error {
	if id != "" {
		if _, ok := c.deps.Catalog.Get(id); !ok {
			return ErrUnknownRoute
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" {
		c.deps.Overlay.ShowAllRoutes()
	} else {
		c.deps.Overlay.ShowSingleRoute(id)
	}
	c.state.SelectedRoute = id
	c.publishLocked()
	return nil
}

// SetMarkersVisible：切换单位标记图层
func (c *Coordinator) SetMarkersVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.MarkersVisible = visible
	c.deps.Engine.SetLayerVisible(scene.LayerUnits, visible)
	c.publishLocked()
}

// ToggleMarkers：翻转单位标记图层可见性并返回新值
func (c *Coordinator) ToggleMarkers() bool {
	c.mu.Lock()
	v := !c.state.MarkersVisible
	c.mu.Unlock()
	c.SetMarkersVisible(v)
	return v
}

// SetMarkerFilter：按来源与类别重建单位标记；空值视为 ALL
func (c *Coordinator) SetMarkerFilter(source gazetteer.Source, category string) int {
	if source == "" {
		source = gazetteer.SourceAll
	}
	if category == "" {
		category = gazetteer.CategoryAll
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.markers.rebuild(source, category)
	c.state.MarkerSource = source
	c.state.MarkerCategory = category
	c.state.SelectedEntity = ""
	c.publishLocked()
	return n
}

// ClosePanel：关闭侧边面板
func (c *Coordinator) ClosePanel(p Panel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch p {
	case PanelRoutes:
		c.state.RoutePanel = false
	case PanelOfficials:
		c.state.OfficialsPanel = false
	default:
		return ErrUnknownPanel
	}
	c.publishLocked()
	return nil
}

// State：导航状态副本
func (c *Coordinator) State() NavigationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe：订阅状态变更；队列满时丢弃，订阅者可通过 State() 补齐
func (c *Coordinator) Subscribe() (<-chan NavigationState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan NavigationState, stateBuffer)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if s, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(s)
		}
	}
}

// Close：结束所有订阅并让进行中的搜索过期
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.offGen++
	c.closed = true
	for id, s := range c.subs {
		delete(c.subs, id)
		close(s)
	}
}

func (c *Coordinator) publishLocked() {
	st := c.state
	for _, s := range c.subs {
		select {
		case s <- st:
		default:
		}
	}
}
