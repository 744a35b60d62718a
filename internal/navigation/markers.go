package navigation

import (
	"strings"

	"globe-nav/internal/gazetteer"
	"globe-nav/internal/scene"
)

// markerLayer：单位标记图层，按来源与类别过滤后重建
type markerLayer struct {
	engine  scene.Engine
	gaz     *gazetteer.Gazetteer
	handles []scene.Handle
}

func (m *markerLayer) rebuild(source gazetteer.Source, category string) int {
	for _, h := range m.handles {
		m.engine.Remove(h)
	}
	m.handles = m.handles[:0]
	for _, e := range m.gaz.Filter(source, category) {
		pos := e.Coordinates.LatLon()
		cat := e.Category()
		m.handles = append(m.handles, m.engine.Add(scene.Entity{
			Name: e.Name, Kind: scene.KindPoint, Layer: scene.LayerUnits, Show: true, Position: &pos,
			Point: &scene.PointStyle{PixelSize: 8, Color: cat.Color, OutlineColor: "#FFFFFF", OutlineWidth: 1},
			Properties: map[string]string{
				"type": e.Type, "location": e.LocationName, "source": string(e.Source), "category": cat.Name,
			},
		}))
	}
	return len(m.handles)
}

// find：按名称（不区分大小写）查找标记实体
func (m *markerLayer) find(name string) (scene.Entity, bool) {
	found := m.engine.Find(func(e scene.Entity) bool {
		return e.Layer == scene.LayerUnits && strings.EqualFold(e.Name, name)
	})
	if len(found) == 0 {
		return scene.Entity{}, false
	}
	return found[0], true
}

// addSites：每个情报地点一个实体，放在以地点命名的图层（默认隐藏）
func addSites(engine scene.Engine) {
	for _, s := range gazetteer.Sites() {
		pos := s.Position
		engine.Add(scene.Entity{
			Name: s.DisplayName, Kind: scene.KindBillboard, Layer: s.Layer, Show: true, Position: &pos,
			Label:      &scene.LabelStyle{Text: s.DisplayName, Font: "12pt sans-serif", FillColor: "#FFFFFF", OffsetY: -20},
			Properties: map[string]string{"site": s.Key},
		})
	}
}
