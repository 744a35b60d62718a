package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globe-nav/internal/geo"
)

func ellipse(name string, r float64) Entity {
	pos := geo.Pt(31.5, 74.3)
	return Entity{
		Name: name, Kind: KindEllipse, Show: true,
		Position: &pos,
		Ellipse:  &EllipseStyle{SemiMajor: r, SemiMinor: r},
	}
}

func TestGraph_AddAssignsIDsAndDefaultLayer(t *testing.T) {
	g := NewGraph()
	a := g.Add(Entity{ID: "caller-id", Name: "a"})
	b := g.Add(Entity{Name: "b", Layer: LayerUnits})

	assert.Equal(t, Handle("e1"), a)
	assert.Equal(t, Handle("e2"), b)
	ea, ok := g.Get(a)
	require.True(t, ok)
	assert.Equal(t, LayerOverlay, ea.Layer)
	assert.Equal(t, 2, g.Len())
}

func TestGraph_RemoveKeepsOrderAndClearsSelection(t *testing.T) {
	g := NewGraph()
	g.Add(Entity{Name: "a"})
	b := g.Add(Entity{Name: "b"})
	g.Add(Entity{Name: "c"})
	g.Select(b)

	assert.True(t, g.Remove(b))
	assert.False(t, g.Remove(b))
	assert.Equal(t, Handle(""), g.Selected())

	names := []string{}
	for _, e := range g.Find(nil) {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestGraph_SelectUnknownIgnored(t *testing.T) {
	g := NewGraph()
	a := g.Add(Entity{Name: "a"})
	g.Select(a)
	g.Select("nope")
	assert.Equal(t, a, g.Selected())
}

func TestGraph_SetEllipseRadius(t *testing.T) {
	g := NewGraph()
	h := g.Add(ellipse("ring", 500))
	p := g.Add(Entity{Name: "point", Kind: KindPoint})

	require.True(t, g.SetEllipseRadius(h, 800, 800))
	assert.False(t, g.SetEllipseRadius(p, 1, 1))

	e, _ := g.Get(h)
	assert.Equal(t, 800.0, e.Ellipse.SemiMajor)
	assert.Equal(t, 800.0, e.Ellipse.SemiMinor)
}

func TestGraph_LayerVisibility(t *testing.T) {
	g := NewGraph()
	assert.True(t, g.LayerVisible(LayerOverlay))
	assert.False(t, g.LayerVisible(LayerUnits))
	g.SetLayerVisible(LayerUnits, true)
	assert.True(t, g.LayerVisible(LayerUnits))
	assert.True(t, g.Snapshot().Layers[LayerUnits])
}

func TestGraph_SubscribeReceivesCommandsInOrder(t *testing.T) {
	g := NewGraph()
	ch, cancel := g.Subscribe()
	defer cancel()

	h := g.Add(ellipse("ring", 500))
	g.SetEllipseRadius(h, 600, 600)
	g.RequestRender()
	g.FlyTo(FlyTo{FlightID: 1, Destination: Destination{Kind: DestPoint, Lon: 74.3, Lat: 31.5, Height: 2000}, Duration: 3, Easing: QuadraticInOut})
	g.Remove(h)

	ops := []Op{}
	for i := 0; i < 5; i++ {
		c := <-ch
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []Op{OpAdd, OpUpdateEllipse, OpRender, OpFlyTo, OpRemove}, ops)

	cam, ok := g.Camera()
	require.True(t, ok)
	assert.Equal(t, uint64(1), cam.FlightID)
	assert.Equal(t, uint64(1), g.Renders())
}

func TestGraph_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	g := NewGraph()
	ch, cancel := g.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		g.RequestRender()
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestGraph_CloseClosesSubscribers(t *testing.T) {
	g := NewGraph()
	ch, cancel := g.Subscribe()
	g.Close()
	_, open := <-ch
	assert.False(t, open)
	cancel()

	late, _ := g.Subscribe()
	_, open = <-late
	assert.False(t, open)

	// 关闭后仍可更新镜像
	g.Add(Entity{Name: "after"})
	assert.Equal(t, 1, g.Len())
}
