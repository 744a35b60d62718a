// 包 overlay：临时叠加层（路线集合、目标环）的生命周期管理
package overlay

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"globe-nav/internal/geo"
	"globe-nav/internal/metrics"
	"globe-nav/internal/routes"
	"globe-nav/internal/scene"
)

const (
	DefaultRadius     = 500.0
	AnimationDuration = 400 * time.Millisecond
	FrameInterval     = 16 * time.Millisecond

	middleRatio = 0.7
	innerRatio  = 0.4

	targetPrefix = "Target"
	mainRouteID  = "main"
	mainWidth    = 5
)

// TargetRingState：目标环当前状态
type TargetRingState struct {
	Center        geo.LatLon `json:"center"`
	CurrentRadius float64    `json:"currentRadius"`
	TargetRadius  float64    `json:"targetRadius"`
	Name          string     `json:"name"`
}

type ringHandles struct {
	outer, middle, inner, center scene.Handle
}

type animation struct {
	from, to float64
	start    time.Time
}

// 文档注释：叠加层管理器
// 背景：独占路线集合与目标环的场景实体句柄；半径动画由管理器自有的帧定时器驱动。
// 约束：任一时刻至多一个路线集合和一个目标；新的显示请求总是先拆除旧的。
// 动画以代号取消：每次新请求代号加一，过期帧检查代号后直接退出。
type Manager struct {
	mu      sync.Mutex
	engine  scene.Engine
	catalog *routes.Catalog
	now     func() time.Time
	frame   time.Duration

	routeHandles []scene.Handle
	activeRoutes []string

	target  *TargetRingState
	rings   ringHandles
	radius  float64
	gen     uint64
	anim    animation
	stopAni chan struct{}
	wg      sync.WaitGroup
}

type Option func(*Manager)

// WithClock：替换动画使用的时钟
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// WithFrameInterval：替换帧间隔
func WithFrameInterval(d time.Duration) Option { return func(m *Manager) { m.frame = d } }

func New(engine scene.Engine, catalog *routes.Catalog, opts ...Option) *Manager {
	m := &Manager{engine: engine, catalog: catalog, now: time.Now, frame: FrameInterval, radius: DefaultRadius}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ShowRoutes：拆除当前路线集合后按顺序绘制请求的路线；未知 ID 跳过
func (m *Manager) ShowRoutes(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hideRoutesLocked()
	for _, id := range ids {
		def, ok := m.catalog.Get(id)
		if !ok {
			continue
		}
		m.addRouteLocked(def)
		m.activeRoutes = append(m.activeRoutes, id)
	}
	metrics.OverlayEntities.WithLabelValues("route").Add(float64(len(m.routeHandles)))
	m.engine.RequestRender()
}

// ShowAllRoutes：显示目录中的全部路线
func (m *Manager) ShowAllRoutes() { m.ShowRoutes(m.catalog.IDs()) }

// ShowSingleRoute：仅显示一条路线
func (m *Manager) ShowSingleRoute(id string) { m.ShowRoutes([]string{id}) }

func (m *Manager) addRouteLocked(def routes.Definition) {
	color := def.Color.CSS()
	width := def.LineWidth
	if def.ID == mainRouteID {
		width = mainWidth
	}
	for i, p := range def.Path {
		pos := geo.LatLon(p)
		label := def.LabelAt(i)
		e := scene.Entity{
			Kind: scene.KindPoint, Show: true, Position: &pos,
			Point:      &scene.PointStyle{PixelSize: 4, Color: color, OutlineColor: "#000000", OutlineWidth: 1},
			Properties: map[string]string{"route": def.ID},
		}
		if def.ShowLabels && label != "" {
			e.Point.PixelSize = 10
			e.Label = &scene.LabelStyle{Text: label, Font: "10pt sans-serif", FillColor: color, OffsetY: -25}
		}
		m.routeHandles = append(m.routeHandles, m.engine.Add(e))
	}
	line := scene.Entity{
		Kind: scene.KindPolyline, Show: true,
		Positions:  geo.Path(def.Path),
		Polyline:   &scene.PolylineStyle{Width: width, Color: color, ClampToGround: true},
		Properties: map[string]string{"route": def.ID},
	}
	m.routeHandles = append(m.routeHandles, m.engine.Add(line))
}

// HideRoutes：销毁当前路线集合；无路线时为空操作
func (m *Manager) HideRoutes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.routeHandles) == 0 {
		return
	}
	m.hideRoutesLocked()
	m.engine.RequestRender()
}

func (m *Manager) hideRoutesLocked() {
	for _, h := range m.routeHandles {
		m.engine.Remove(h)
	}
	metrics.OverlayEntities.WithLabelValues("route").Sub(float64(len(m.routeHandles)))
	m.routeHandles = nil
	m.activeRoutes = nil
}

// ActiveRouteIDs：当前显示的路线 ID（按显示顺序）
func (m *Manager) ActiveRouteIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.activeRoutes...)
}

// RouteEntityCount：当前路线集合的实体数
func (m *Manager) RouteEntityCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.routeHandles)
}

// 文档注释：显示目标环
// 背景：外环、中环（0.7）、内环（0.4）与中心点四个实体，三环半径由同一共享半径驱动。
// 约束：先取消进行中的动画并移除所有名称以 "Target" 开头的实体；radius<=0 时使用默认 500 米。
func (m *Manager) ShowTarget(lon, lat float64, name string, radius float64) {
	if radius <= 0 {
		radius = DefaultRadius
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelAnimationLocked()
	m.removeTargetEntitiesLocked()

	if m.target == nil {
		metrics.OverlayEntities.WithLabelValues("target").Add(4)
	}
	center := geo.Pt(lat, lon)
	m.radius = radius
	m.target = &TargetRingState{Center: center, CurrentRadius: radius, TargetRadius: radius, Name: name}
	ring := func(label string, r float64, fill, outline string, width int) scene.Handle {
		pos := center
		return m.engine.Add(scene.Entity{
			Name: label, Kind: scene.KindEllipse, Show: true, Position: &pos,
			Ellipse: &scene.EllipseStyle{SemiMajor: r, SemiMinor: r, Fill: fill, OutlineColor: outline, OutlineWidth: width},
		})
	}
	m.rings.outer = ring(fmt.Sprintf("Target: %s", name), radius, "rgba(255, 0, 100, 0.3)", "#ff0064", 3)
	m.rings.middle = ring(fmt.Sprintf("Target Ring 2: %s", name), radius*middleRatio, "transparent", "rgba(255, 0, 100, 0.5)", 2)
	m.rings.inner = ring(fmt.Sprintf("Target Ring 3: %s", name), radius*innerRatio, "transparent", "rgba(255, 0, 100, 0.7)", 2)
	pos := center
	m.rings.center = m.engine.Add(scene.Entity{
		Name: fmt.Sprintf("Target Center: %s", name), Kind: scene.KindPoint, Show: true, Position: &pos,
		Point: &scene.PointStyle{PixelSize: 12, Color: "#ff0064", OutlineColor: "#FFFFFF", OutlineWidth: 2},
	})
	m.engine.RequestRender()
}

// 文档注释：调整目标环半径
// 约束：无目标时为空操作；从当前（可能处于动画中途的）半径起做 400ms 三次缓出插值，结束时精确落在目标值。
func (m *Manager) UpdateTargetRadius(radius float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.target == nil {
		return
	}
	m.cancelAnimationLocked()
	m.target.TargetRadius = radius
	m.anim = animation{from: m.radius, to: radius, start: m.now()}
	stop := make(chan struct{})
	m.stopAni = stop
	gen := m.gen
	m.wg.Add(1)
	go m.run(gen, stop)
}

func (m *Manager) run(gen uint64, stop <-chan struct{}) {
	defer m.wg.Done()
	t := time.NewTicker(m.frame)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !m.tick(gen, m.now()) {
				return
			}
		}
	}
}

// tick：推进一帧；代号过期或动画结束时返回 false
func (m *Manager) tick(gen uint64, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.target == nil {
		return false
	}
	progress := float64(now.Sub(m.anim.start)) / float64(AnimationDuration)
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}
	r := m.anim.from + (m.anim.to-m.anim.from)*easeOutCubic(progress)
	if progress >= 1 {
		r = m.anim.to
	}
	m.applyRadiusLocked(r)
	m.engine.RequestRender()
	return progress < 1
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

func (m *Manager) applyRadiusLocked(r float64) {
	m.radius = r
	m.target.CurrentRadius = r
	m.engine.SetEllipseRadius(m.rings.outer, r, r)
	m.engine.SetEllipseRadius(m.rings.middle, r*middleRatio, r*middleRatio)
	m.engine.SetEllipseRadius(m.rings.inner, r*innerRatio, r*innerRatio)
}

// 调用方持有锁
func (m *Manager) cancelAnimationLocked() {
	m.gen++
	if m.stopAni != nil {
		close(m.stopAni)
		m.stopAni = nil
	}
}

func (m *Manager) removeTargetEntitiesLocked() {
	for _, e := range m.engine.Find(func(e scene.Entity) bool { return strings.HasPrefix(e.Name, targetPrefix) }) {
		m.engine.Remove(e.ID)
	}
	m.rings = ringHandles{}
}

// HideTarget：取消动画，半径复位为 500 米并移除目标实体；无目标时为空操作
func (m *Manager) HideTarget() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelAnimationLocked()
	m.radius = DefaultRadius
	if m.target == nil {
		return
	}
	m.removeTargetEntitiesLocked()
	m.target = nil
	metrics.OverlayEntities.WithLabelValues("target").Sub(4)
	m.engine.RequestRender()
}

// Target：当前目标环状态的副本
func (m *Manager) Target() (TargetRingState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.target == nil {
		return TargetRingState{}, false
	}
	return *m.target, true
}

// Close：拆除全部叠加层并等待动画协程退出
func (m *Manager) Close() {
	m.HideTarget()
	m.HideRoutes()
	m.wg.Wait()
}
