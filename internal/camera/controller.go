// 包 camera：相机过渡控制器（Idle → Transitioning → Idle）
package camera

import (
	"sync"
	"time"

	"globe-nav/internal/metrics"
	"globe-nav/internal/scene"
)

// 默认时长与高度（米）
const (
	PointDuration = 3 * time.Second
	BBoxDuration  = 2 * time.Second

	DefaultAltitude  = 2000.0
	UnitAltitude     = 50000.0
	SiteAltitude     = 10000.0
	OverviewAltitude = 2000000.0
)

type State int

const (
	Idle State = iota
	Transitioning
)

func (s State) String() string {
	if s == Transitioning {
		return "transitioning"
	}
	return "idle"
}

// Timer：可停止的定时器，便于测试注入
type Timer interface {
	Stop() bool
}

// AfterFunc：与 time.AfterFunc 同义的定时器工厂
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// 文档注释：一次相机过渡
// 约束：Done() 在完成或被新过渡取代时关闭，且只关闭一次；Superseded() 仅在关闭后有意义。
type Flight struct {
	id          uint64
	destination scene.Destination
	duration    time.Duration
	easing      scene.Easing

	done       chan struct{}
	superseded bool
	timer      Timer
}

func (f *Flight) ID() uint64                     { return f.id }
func (f *Flight) Destination() scene.Destination { return f.destination }
func (f *Flight) Duration() time.Duration        { return f.duration }
func (f *Flight) Easing() scene.Easing           { return f.easing }
func (f *Flight) Done() <-chan struct{}          { return f.done }

// Superseded：被更新的过渡取代（而非正常完成）
func (f *Flight) Superseded() bool {
	select {
	case <-f.done:
	default:
		return false
	}
	return f.superseded
}

// 文档注释：相机过渡控制器
// 背景：引擎的 flyTo 本身没有完成回调；控制器以显式状态机建模，完成由控制器时钟（时长到期）
// 或浏览器回执（Ack）驱动，二者先到者生效。
// 约束：同一时刻至多一个进行中的过渡；新过渡总是取代旧过渡并关闭其 Done()。
type Controller struct {
	mu        sync.Mutex
	engine    scene.Engine
	afterFunc AfterFunc
	seq       uint64
	current   *Flight
}

type Option func(*Controller)

func WithAfterFunc(fn AfterFunc) Option { return func(c *Controller) { c.afterFunc = fn } }

func New(engine scene.Engine, opts ...Option) *Controller {
	c := &Controller{engine: engine, afterFunc: realAfterFunc}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FlyToPoint：飞抵点上方 altitude 米处，二次缓入缓出
func (c *Controller) FlyToPoint(lon, lat, altitude float64, duration time.Duration) *Flight {
	return c.start(scene.Destination{Kind: scene.DestPoint, Lon: lon, Lat: lat, Height: altitude}, duration, scene.QuadraticInOut)
}

// FlyToBoundingBox：矩形恰好包住给定范围，三次缓入缓出
func (c *Controller) FlyToBoundingBox(minLat, maxLat, minLon, maxLon float64, duration time.Duration) *Flight {
	return c.start(scene.Destination{Kind: scene.DestRectangle, West: minLon, South: minLat, East: maxLon, North: maxLat}, duration, scene.CubicInOut)
}

func (c *Controller) start(dest scene.Destination, duration time.Duration, easing scene.Easing) *Flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev := c.current; prev != nil {
		prev.superseded = true
		c.finishLocked(prev)
	}
	c.seq++
	f := &Flight{id: c.seq, destination: dest, duration: duration, easing: easing, done: make(chan struct{})}
	c.current = f
	c.engine.FlyTo(scene.FlyTo{FlightID: f.id, Destination: dest, Duration: duration.Seconds(), Easing: easing})
	metrics.CameraFlightsTotal.WithLabelValues(string(dest.Kind)).Inc()
	id := f.id
	f.timer = c.afterFunc(duration, func() { c.Ack(id) })
	return f
}

// Ack：过渡完成（时长到期或浏览器回执）；id 不是当前过渡时返回 false
func (c *Controller) Ack(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.id != id {
		return false
	}
	c.finishLocked(c.current)
	return true
}

// 调用方持有锁
func (c *Controller) finishLocked(f *Flight) {
	if f.timer != nil {
		f.timer.Stop()
	}
	close(f.done)
	if c.current == f {
		c.current = nil
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		return Transitioning
	}
	return Idle
}

// Current：进行中的过渡；空闲时为 nil
func (c *Controller) Current() *Flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Close：结束进行中的过渡（会话关闭时调用）
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.finishLocked(c.current)
	}
}
