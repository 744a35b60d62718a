// 包 geo：经纬度点、包围盒与折线的基础几何类型，底层使用 orb（X 为经度，Y 为纬度）
package geo

import (
	"encoding/json"

	"github.com/paulmach/orb"
)

// 点坐标（WGS84，度）；对外序列化为 {"lat","lon"}
type LatLon orb.Point

func Pt(lat, lon float64) LatLon { return LatLon{lon, lat} }

func (p LatLon) Lat() float64     { return p[1] }
func (p LatLon) Lon() float64     { return p[0] }
func (p LatLon) Point() orb.Point { return orb.Point(p) }

type latLonJSON struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p LatLon) MarshalJSON() ([]byte, error) {
	return json.Marshal(latLonJSON{Lat: p.Lat(), Lon: p.Lon()})
}

func (p *LatLon) UnmarshalJSON(data []byte) error {
	var v latLonJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Pt(v.Lat, v.Lon)
	return nil
}

// Path：折线顶点转换为对外点序列
func Path(ls orb.LineString) []LatLon {
	out := make([]LatLon, len(ls))
	for i, p := range ls {
		out[i] = LatLon(p)
	}
	return out
}

// 文档注释：经纬度包围盒
// 背景：与 Nominatim boundingbox 字段顺序一致（south, north, west, east），序列化为 [minLat, maxLat, minLon, maxLon]。
// 约束：不处理跨 180° 经线的范围；调用方保证 Min <= Max。
type BBox orb.Bound

func NewBBox(minLat, maxLat, minLon, maxLon float64) BBox {
	return BBox{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}
}

func (b BBox) MinLat() float64 { return b.Min[1] }
func (b BBox) MaxLat() float64 { return b.Max[1] }
func (b BBox) MinLon() float64 { return b.Min[0] }
func (b BBox) MaxLon() float64 { return b.Max[0] }

// Array：按 [minLat, maxLat, minLon, maxLon] 输出
func (b BBox) Array() [4]float64 { return [4]float64{b.MinLat(), b.MaxLat(), b.MinLon(), b.MaxLon()} }

func (b BBox) Contains(p LatLon) bool { return orb.Bound(b).Contains(p.Point()) }

// 文档注释：计算点集的紧包围盒
// 约束：不加任何边距，结果的四个边界恰为点集的最值；空点集返回 false。
func ComputeBBox(pts orb.MultiPoint) (BBox, bool) {
	if len(pts) == 0 {
		return BBox{}, false
	}
	return BBox(pts.Bound()), true
}

// MarshalJSON：序列化为 [minLat, maxLat, minLon, maxLon]
func (b BBox) MarshalJSON() ([]byte, error) { return json.Marshal(b.Array()) }

func (b *BBox) UnmarshalJSON(data []byte) error {
	var a [4]float64
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*b = NewBBox(a[0], a[1], a[2], a[3])
	return nil
}
