package scene

import (
	"strconv"
	"sync"

	"globe-nav/internal/metrics"
)

// Op：命令类型
type Op string

const (
	OpAdd           Op = "add"
	OpRemove        Op = "remove"
	OpUpdateEllipse Op = "update_ellipse"
	OpShow          Op = "show"
	OpLayer         Op = "layer"
	OpSelect        Op = "select"
	OpFlyTo         Op = "fly_to"
	OpRender        Op = "render"
)

// Command：发往浏览器的场景命令
type Command struct {
	Op        Op      `json:"op"`
	Entity    *Entity `json:"entity,omitempty"`
	ID        Handle  `json:"id,omitempty"`
	SemiMajor float64 `json:"semiMajor,omitempty"`
	SemiMinor float64 `json:"semiMinor,omitempty"`
	Show      *bool   `json:"show,omitempty"`
	Layer     string  `json:"layer,omitempty"`
	FlyTo     *FlyTo  `json:"flyTo,omitempty"`
}

// Snapshot：场景镜像的完整快照，用于浏览器（重新）连接时全量同步
type Snapshot struct {
	Entities []Entity        `json:"entities"`
	Layers   map[string]bool `json:"layers"`
	Selected Handle          `json:"selected,omitempty"`
	Camera   *FlyTo          `json:"camera,omitempty"`
}

const subscriberBuffer = 512

// 文档注释：会话内场景图镜像
// 背景：保存当前所有实体、图层可见性、选中实体与最近一次相机目标；每次变更同时广播命令给订阅者。
// 约束：实体按加入顺序保存；订阅队列满时丢弃命令并计数，浏览器可通过快照重新同步。
type Graph struct {
	mu       sync.RWMutex
	seq      uint64
	order    []Handle
	entities map[Handle]Entity
	layers   map[string]bool
	selected Handle
	camera   *FlyTo
	renders  uint64
	subs     map[int]chan Command
	nextSub  int
	closed   bool
}

func NewGraph() *Graph {
	return &Graph{
		entities: make(map[Handle]Entity),
		layers:   map[string]bool{LayerOverlay: true},
		subs:     make(map[int]chan Command),
	}
}

func (g *Graph) Add(e Entity) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	e.ID = Handle("e" + strconv.FormatUint(g.seq, 10))
	if e.Layer == "" {
		e.Layer = LayerOverlay
	}
	g.order = append(g.order, e.ID)
	g.entities[e.ID] = e
	cp := e
	g.broadcast(Command{Op: OpAdd, Entity: &cp})
	return e.ID
}

func (g *Graph) Remove(h Handle) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.entities[h]; !ok {
		return false
	}
	delete(g.entities, h)
	for i, id := range g.order {
		if id == h {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	if g.selected == h {
		g.selected = ""
	}
	g.broadcast(Command{Op: OpRemove, ID: h})
	return true
}

func (g *Graph) Get(h Handle) (Entity, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.entities[h]
	return e, ok
}

// Find：按加入顺序返回满足条件的实体副本；match 为空时返回全部
func (g *Graph) Find(match func(Entity) bool) []Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Entity
	for _, id := range g.order {
		e := g.entities[id]
		if match == nil || match(e) {
			out = append(out, e)
		}
	}
	return out
}

func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

func (g *Graph) SetEllipseRadius(h Handle, semiMajor, semiMinor float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entities[h]
	if !ok || e.Ellipse == nil {
		return false
	}
	el := *e.Ellipse
	el.SemiMajor, el.SemiMinor = semiMajor, semiMinor
	e.Ellipse = &el
	g.entities[h] = e
	g.broadcast(Command{Op: OpUpdateEllipse, ID: h, SemiMajor: semiMajor, SemiMinor: semiMinor})
	return true
}

func (g *Graph) SetShow(h Handle, show bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entities[h]
	if !ok {
		return false
	}
	if e.Show == show {
		return true
	}
	e.Show = show
	g.entities[h] = e
	g.broadcast(Command{Op: OpShow, ID: h, Show: &show})
	return true
}

func (g *Graph) SetLayerVisible(layer string, visible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if v, ok := g.layers[layer]; ok && v == visible {
		return
	}
	g.layers[layer] = visible
	g.broadcast(Command{Op: OpLayer, Layer: layer, Show: &visible})
}

// LayerVisible：未登记的图层视为不可见，overlay 图层默认可见
func (g *Graph) LayerVisible(layer string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.layers[layer]
}

func (g *Graph) Select(h Handle) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if h != "" {
		if _, ok := g.entities[h]; !ok {
			return
		}
	}
	g.selected = h
	g.broadcast(Command{Op: OpSelect, ID: h})
}

func (g *Graph) Selected() Handle {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.selected
}

func (g *Graph) FlyTo(f FlyTo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cp := f
	g.camera = &cp
	g.broadcast(Command{Op: OpFlyTo, FlyTo: &cp})
}

// Camera：最近一次相机过渡请求
func (g *Graph) Camera() (FlyTo, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.camera == nil {
		return FlyTo{}, false
	}
	return *g.camera, true
}

func (g *Graph) RequestRender() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.renders++
	g.broadcast(Command{Op: OpRender})
}

// Renders：累计渲染请求次数
func (g *Graph) Renders() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.renders
}

func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s := Snapshot{Entities: make([]Entity, 0, len(g.order)), Layers: make(map[string]bool, len(g.layers)), Selected: g.selected}
	for _, id := range g.order {
		s.Entities = append(s.Entities, g.entities[id])
	}
	for k, v := range g.layers {
		s.Layers[k] = v
	}
	if g.camera != nil {
		cp := *g.camera
		s.Camera = &cp
	}
	return s
}

// 文档注释：订阅命令流
// 返回：命令通道与取消函数；场景图关闭后通道被关闭。
func (g *Graph) Subscribe() (<-chan Command, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan Command, subscriberBuffer)
	if g.closed {
		close(ch)
		return ch, func() {}
	}
	id := g.nextSub
	g.nextSub++
	g.subs[id] = ch
	return ch, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if c, ok := g.subs[id]; ok {
			delete(g.subs, id)
			close(c)
		}
	}
}

// Close：关闭全部订阅通道；之后的变更只更新镜像
func (g *Graph) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	for id, c := range g.subs {
		delete(g.subs, id)
		close(c)
	}
}

// 调用方持有写锁
func (g *Graph) broadcast(c Command) {
	for _, ch := range g.subs {
		select {
		case ch <- c:
		default:
			metrics.SceneCommandsDroppedTotal.Inc()
		}
	}
}
