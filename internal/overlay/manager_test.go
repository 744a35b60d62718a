package overlay

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globe-nav/internal/routes"
	"globe-nav/internal/scene"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

// 帧定时器设为一小时，动画只由测试显式 tick 推进
func newManualManager(t *testing.T) (*Manager, *scene.Graph, *fakeClock) {
	t.Helper()
	g := scene.NewGraph()
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	m := New(g, routes.Corridor(), WithClock(clk.Now), WithFrameInterval(time.Hour))
	t.Cleanup(m.Close)
	return m, g, clk
}

func targetEntities(g *scene.Graph) []scene.Entity {
	return g.Find(func(e scene.Entity) bool { return strings.HasPrefix(e.Name, "Target") })
}

func radii(t *testing.T, g *scene.Graph) (outer, middle, inner float64) {
	t.Helper()
	for _, e := range targetEntities(g) {
		switch {
		case strings.HasPrefix(e.Name, "Target Ring 2:"):
			middle = e.Ellipse.SemiMajor
		case strings.HasPrefix(e.Name, "Target Ring 3:"):
			inner = e.Ellipse.SemiMajor
		case strings.HasPrefix(e.Name, "Target:"):
			outer = e.Ellipse.SemiMajor
		}
	}
	return
}

func TestHide_IdempotentWhenNothingActive(t *testing.T) {
	m, g, _ := newManualManager(t)
	assert.NotPanics(t, func() {
		m.HideRoutes()
		m.HideTarget()
		m.HideRoutes()
		m.HideTarget()
	})
	assert.Equal(t, 0, g.Len())
	_, ok := m.Target()
	assert.False(t, ok)
}

func TestShowRoutes_EntitiesPerWaypointPlusLine(t *testing.T) {
	m, g, _ := newManualManager(t)
	def, _ := routes.Corridor().Get("eastern")

	m.ShowRoutes([]string{"eastern", "nope"})

	assert.Equal(t, []string{"eastern"}, m.ActiveRouteIDs())
	assert.Equal(t, len(def.Path)+1, g.Len())
	lines := g.Find(func(e scene.Entity) bool { return e.Kind == scene.KindPolyline })
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Polyline.Width)
	assert.Equal(t, "#00FFFF", lines[0].Polyline.Color)
	assert.True(t, lines[0].Polyline.ClampToGround)

	// 东线不显示标注：全部为小点
	for _, e := range g.Find(func(e scene.Entity) bool { return e.Kind == scene.KindPoint }) {
		assert.Equal(t, 4, e.Point.PixelSize)
		assert.Nil(t, e.Label)
	}
}

func TestShowRoutes_MainLabelsAndWidth(t *testing.T) {
	m, g, _ := newManualManager(t)
	m.ShowSingleRoute("main")

	labelled := g.Find(func(e scene.Entity) bool { return e.Label != nil })
	assert.Len(t, labelled, 6)
	for _, e := range labelled {
		assert.Equal(t, 10, e.Point.PixelSize)
	}
	line := g.Find(func(e scene.Entity) bool { return e.Kind == scene.KindPolyline })
	require.Len(t, line, 1)
	assert.Equal(t, 5, line[0].Polyline.Width)
}

func TestAtMostOneRouteSetAndTarget(t *testing.T) {
	m, g, _ := newManualManager(t)
	cat := routes.Corridor()
	total := 0
	for _, id := range cat.IDs() {
		d, _ := cat.Get(id)
		total += len(d.Path) + 1
	}

	m.ShowAllRoutes()
	m.ShowAllRoutes()
	m.ShowTarget(74.3, 31.5, "Lahore", 0)
	m.ShowTarget(73.0, 33.6, "Islamabad", 700)

	assert.Equal(t, total, m.RouteEntityCount())
	assert.Len(t, targetEntities(g), 4)
	assert.Equal(t, total+4, g.Len())

	m.ShowSingleRoute("western")
	w, _ := cat.Get("western")
	assert.Equal(t, len(w.Path)+1+4, g.Len())

	st, ok := m.Target()
	require.True(t, ok)
	assert.Equal(t, "Islamabad", st.Name)
	assert.Equal(t, 700.0, st.CurrentRadius)

	m.HideRoutes()
	m.HideTarget()
	assert.Equal(t, 0, g.Len())
}

func TestShowTarget_RingsAndDefaultRadius(t *testing.T) {
	m, g, _ := newManualManager(t)
	m.ShowTarget(74.3, 31.5, "Depot", 0)

	names := []string{}
	for _, e := range targetEntities(g) {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Target: Depot", "Target Ring 2: Depot", "Target Ring 3: Depot", "Target Center: Depot"}, names)
	outer, middle, inner := radii(t, g)
	assert.Equal(t, 500.0, outer)
	assert.Equal(t, 500*0.7, middle)
	assert.Equal(t, 500*0.4, inner)
}

func TestUpdateTargetRadius_NoTargetIsNoop(t *testing.T) {
	m, g, _ := newManualManager(t)
	m.UpdateTargetRadius(800)
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, uint64(0), g.Renders())
}

func TestUpdateTargetRadius_ConvergesExactly(t *testing.T) {
	m, g, clk := newManualManager(t)
	m.ShowTarget(74.3, 31.5, "Depot", 500)
	m.UpdateTargetRadius(800)
	gen := m.gen

	assert.True(t, m.tick(gen, clk.Advance(100*time.Millisecond)))
	mid, _, _ := radii(t, g)
	assert.Greater(t, mid, 500.0)
	assert.Less(t, mid, 800.0)

	assert.False(t, m.tick(gen, clk.Advance(400*time.Millisecond)))
	outer, middle, inner := radii(t, g)
	assert.Equal(t, 800.0, outer)
	assert.Equal(t, 0.7*800, middle)
	assert.Equal(t, 0.4*800, inner)

	st, _ := m.Target()
	assert.Equal(t, 800.0, st.CurrentRadius)
	assert.Equal(t, 800.0, st.TargetRadius)
}

func TestUpdateTargetRadius_NewRequestCancelsAndStartsFromCurrent(t *testing.T) {
	m, g, clk := newManualManager(t)
	m.ShowTarget(74.3, 31.5, "Depot", 500)
	m.UpdateTargetRadius(1000)
	first := m.gen
	require.True(t, m.tick(first, clk.Advance(200*time.Millisecond)))
	midway, _, _ := radii(t, g)

	m.UpdateTargetRadius(300)
	second := m.gen
	assert.NotEqual(t, first, second)

	// 过期帧直接退出，不改变半径
	assert.False(t, m.tick(first, clk.Advance(time.Second)))
	outer, _, _ := radii(t, g)
	assert.Equal(t, midway, outer)
	assert.Equal(t, midway, m.anim.from)

	assert.False(t, m.tick(second, clk.Now()))
	outer, _, _ = radii(t, g)
	assert.Equal(t, 300.0, outer)
}

func TestHideTarget_CancelsAnimationAndResets(t *testing.T) {
	m, g, clk := newManualManager(t)
	m.ShowTarget(74.3, 31.5, "Depot", 500)
	m.UpdateTargetRadius(900)
	gen := m.gen
	m.HideTarget()

	assert.False(t, m.tick(gen, clk.Advance(time.Second)))
	assert.Empty(t, targetEntities(g))
	assert.Equal(t, DefaultRadius, m.radius)
	_, ok := m.Target()
	assert.False(t, ok)
}

func TestShowTarget_RemovesStrayTargetEntities(t *testing.T) {
	m, g, _ := newManualManager(t)
	g.Add(scene.Entity{Name: "Target: leftover", Kind: scene.KindPoint})
	g.Add(scene.Entity{Name: "Unrelated", Kind: scene.KindPoint})

	m.ShowTarget(74.3, 31.5, "Depot", 500)
	assert.Len(t, targetEntities(g), 4)
	assert.Equal(t, 5, g.Len())
}

func TestRadiusAnimation_RealTicker(t *testing.T) {
	g := scene.NewGraph()
	m := New(g, routes.Corridor(), WithFrameInterval(time.Millisecond))
	defer m.Close()

	m.ShowTarget(74.3, 31.5, "Depot", 500)
	m.UpdateTargetRadius(800)
	require.Eventually(t, func() bool {
		st, _ := m.Target()
		return st.CurrentRadius == 800
	}, 2*time.Second, 5*time.Millisecond)
	_, middle, inner := radii(t, g)
	assert.Equal(t, 0.7*800, middle)
	assert.Equal(t, 0.4*800, inner)
}
