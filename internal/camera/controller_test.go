package camera

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globe-nav/internal/scene"
)

type manualTimer struct {
	d       time.Duration
	fire    func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (m *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{d: d, fire: f}
	m.timers = append(m.timers, t)
	return t
}

func (m *manualClock) last() *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timers[len(m.timers)-1]
}

func newTestController() (*Controller, *scene.Graph, *manualClock) {
	g := scene.NewGraph()
	clk := &manualClock{}
	return New(g, WithAfterFunc(clk.AfterFunc)), g, clk
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestFlyToPoint_StateMachine(t *testing.T) {
	c, g, clk := newTestController()
	assert.Equal(t, Idle, c.State())

	f := c.FlyToPoint(74.3, 31.5, UnitAltitude, PointDuration)
	assert.Equal(t, Transitioning, c.State())
	assert.False(t, closed(f.Done()))
	assert.Equal(t, PointDuration, clk.last().d)

	cam, ok := g.Camera()
	require.True(t, ok)
	assert.Equal(t, scene.DestPoint, cam.Destination.Kind)
	assert.Equal(t, UnitAltitude, cam.Destination.Height)
	assert.Equal(t, 3.0, cam.Duration)
	assert.Equal(t, scene.QuadraticInOut, cam.Easing)

	clk.last().fire()
	assert.True(t, closed(f.Done()))
	assert.False(t, f.Superseded())
	assert.Equal(t, Idle, c.State())
}

func TestFlyToBoundingBox_ExactRectangle(t *testing.T) {
	c, g, _ := newTestController()
	c.FlyToBoundingBox(25.1264, 39.4677, 62.3225, 75.9938, BBoxDuration)

	cam, _ := g.Camera()
	assert.Equal(t, scene.Destination{Kind: scene.DestRectangle, West: 62.3225, South: 25.1264, East: 75.9938, North: 39.4677}, cam.Destination)
	assert.Equal(t, scene.CubicInOut, cam.Easing)
	assert.Equal(t, 2.0, cam.Duration)
}

func TestNewFlightSupersedesPrevious(t *testing.T) {
	c, _, clk := newTestController()
	first := c.FlyToPoint(1, 1, DefaultAltitude, PointDuration)
	firstTimer := clk.last()
	second := c.FlyToPoint(2, 2, DefaultAltitude, PointDuration)

	assert.True(t, closed(first.Done()))
	assert.True(t, first.Superseded())
	assert.True(t, firstTimer.stopped)
	assert.False(t, closed(second.Done()))
	assert.Equal(t, second, c.Current())

	// 旧过渡的定时器迟到不影响新过渡
	firstTimer.fire()
	assert.Equal(t, Transitioning, c.State())
	assert.Greater(t, second.ID(), first.ID())
}

func TestAck_ByBrowser(t *testing.T) {
	c, _, clk := newTestController()
	f := c.FlyToPoint(1, 1, DefaultAltitude, PointDuration)

	assert.False(t, c.Ack(f.ID()+1))
	assert.True(t, c.Ack(f.ID()))
	assert.False(t, c.Ack(f.ID()))
	assert.True(t, closed(f.Done()))
	assert.True(t, clk.last().stopped)

	// 定时器到期时已空闲，不重复关闭
	clk.last().fire()
	assert.Equal(t, Idle, c.State())
}

func TestClose_FinishesCurrent(t *testing.T) {
	c, _, _ := newTestController()
	f := c.FlyToPoint(1, 1, DefaultAltitude, PointDuration)
	c.Close()
	assert.True(t, closed(f.Done()))
	assert.Nil(t, c.Current())
	c.Close()
}

func TestRealTimerCompletes(t *testing.T) {
	c := New(scene.NewGraph())
	f := c.FlyToPoint(1, 1, DefaultAltitude, 5*time.Millisecond)
	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("flight did not complete")
	}
	assert.Equal(t, Idle, c.State())
}
