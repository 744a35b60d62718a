// 包 scene：渲染引擎的抽象表面与会话内的场景图镜像
package scene

import (
	"encoding/json"

	"globe-nav/internal/geo"
)

// Handle：场景实体句柄
type Handle string

type Kind string

const (
	KindPoint     Kind = "point"
	KindPolyline  Kind = "polyline"
	KindEllipse   Kind = "ellipse"
	KindBillboard Kind = "billboard"
)

// 图层名
const (
	LayerOverlay = "overlay"
	LayerUnits   = "units"
	LayerSites   = "sites"
)

type PointStyle struct {
	PixelSize    int    `json:"pixelSize"`
	Color        string `json:"color"`
	OutlineColor string `json:"outlineColor,omitempty"`
	OutlineWidth int    `json:"outlineWidth,omitempty"`
}

type LabelStyle struct {
	Text      string `json:"text"`
	Font      string `json:"font,omitempty"`
	FillColor string `json:"fillColor,omitempty"`
	OffsetY   int    `json:"offsetY,omitempty"`
}

type PolylineStyle struct {
	Width         int    `json:"width"`
	Color         string `json:"color"`
	ClampToGround bool   `json:"clampToGround"`
}

// EllipseStyle：半轴单位为米
type EllipseStyle struct {
	SemiMajor    float64 `json:"semiMajor"`
	SemiMinor    float64 `json:"semiMinor"`
	Fill         string  `json:"fill"`
	OutlineColor string  `json:"outlineColor"`
	OutlineWidth int     `json:"outlineWidth"`
}

// 文档注释：场景实体描述
// 背景：与浏览器端渲染引擎的实体一一对应；服务端持有权威镜像，浏览器按命令流重放。
// 约束：ID 由场景图分配，调用方传入的 ID 会被覆盖；Layer 为空时归入 overlay 图层。
type Entity struct {
	ID         Handle            `json:"id"`
	Name       string            `json:"name,omitempty"`
	Kind       Kind              `json:"kind"`
	Layer      string            `json:"layer"`
	Show       bool              `json:"show"`
	Position   *geo.LatLon       `json:"position,omitempty"`
	Positions  []geo.LatLon      `json:"positions,omitempty"`
	Point      *PointStyle       `json:"point,omitempty"`
	Label      *LabelStyle       `json:"label,omitempty"`
	Polyline   *PolylineStyle    `json:"polyline,omitempty"`
	Ellipse    *EllipseStyle     `json:"ellipse,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// DestinationKind：相机目标类型
type DestinationKind string

const (
	DestPoint     DestinationKind = "point"
	DestRectangle DestinationKind = "rectangle"
)

// 文档注释：相机目标
// 约束：点目标使用 Lon/Lat/Height，矩形目标使用 West/South/East/North（度）；
// 序列化时只输出该类型的字段，且 0 值照常输出（赤道、本初子午线上的目标合法）。
type Destination struct {
	Kind   DestinationKind `json:"kind"`
	Lon    float64         `json:"lon"`
	Lat    float64         `json:"lat"`
	Height float64         `json:"height"`
	West   float64         `json:"west"`
	South  float64         `json:"south"`
	East   float64         `json:"east"`
	North  float64         `json:"north"`
}

type pointDestination struct {
	Kind   DestinationKind `json:"kind"`
	Lon    float64         `json:"lon"`
	Lat    float64         `json:"lat"`
	Height float64         `json:"height"`
}

type rectDestination struct {
	Kind  DestinationKind `json:"kind"`
	West  float64         `json:"west"`
	South float64         `json:"south"`
	East  float64         `json:"east"`
	North float64         `json:"north"`
}

func (d Destination) MarshalJSON() ([]byte, error) {
	if d.Kind == DestRectangle {
		return json.Marshal(rectDestination{Kind: d.Kind, West: d.West, South: d.South, East: d.East, North: d.North})
	}
	return json.Marshal(pointDestination{Kind: d.Kind, Lon: d.Lon, Lat: d.Lat, Height: d.Height})
}

type Easing string

const (
	QuadraticInOut Easing = "QUADRATIC_IN_OUT"
	CubicInOut     Easing = "CUBIC_IN_OUT"
)

// FlyTo：一次相机过渡请求，Duration 单位为秒
type FlyTo struct {
	FlightID    uint64      `json:"flightId"`
	Destination Destination `json:"destination"`
	Duration    float64     `json:"duration"`
	Easing      Easing      `json:"easing"`
}

// 文档注释：渲染引擎表面
// 背景：协调器、相机与叠加层只依赖此接口；生产实现为场景图镜像 + 浏览器命令流，测试可直接检视镜像。
// 约束：实现需并发安全；新的 FlyTo 由引擎保证覆盖进行中的过渡。
type Engine interface {
	Add(e Entity) Handle
	Remove(h Handle) bool
	Get(h Handle) (Entity, bool)
	Find(match func(Entity) bool) []Entity
	SetEllipseRadius(h Handle, semiMajor, semiMinor float64) bool
	SetShow(h Handle, show bool) bool
	SetLayerVisible(layer string, visible bool)
	LayerVisible(layer string) bool
	Select(h Handle)
	FlyTo(f FlyTo)
	RequestRender()
}
