package api

import (
	"globe-nav/internal/gazetteer"
	"globe-nav/internal/homeview"
	"globe-nav/internal/navigation"
	"globe-nav/internal/overlay"
	"globe-nav/internal/scene"
)

type sessionCreated struct {
	ID   string        `json:"id"`
	Home homeview.View `json:"home"`
}

// 文档注释：会话状态（对外）
// 背景：不使用 WebSocket 的客户端可轮询此结构重建场景。
type stateResponse struct {
	ID           string                     `json:"id"`
	Home         homeview.View              `json:"home"`
	Navigation   navigation.NavigationState `json:"navigation"`
	ActiveRoutes []string                   `json:"activeRoutes"`
	Target       *overlay.TargetRingState   `json:"target"`
	Camera       string                     `json:"camera"`
	FlightID     uint64                     `json:"flightId,omitempty"`
	Scene        scene.Snapshot             `json:"scene"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type routesRequest struct {
	IDs []string `json:"ids"`
}

type routesResponse struct {
	Active []string `json:"active"`
}

type targetRequest struct {
	Lon    *float64 `json:"lon"`
	Lat    *float64 `json:"lat"`
	Name   string   `json:"name"`
	Radius float64  `json:"radius"`
}

type targetResponse struct {
	Target *overlay.TargetRingState `json:"target"`
}

type markersRequest struct {
	Visible  *bool            `json:"visible"`
	Toggle   bool             `json:"toggle"`
	Source   gazetteer.Source `json:"source"`
	Category string           `json:"category"`
}

type markersResponse struct {
	Visible  bool             `json:"visible"`
	Source   gazetteer.Source `json:"source"`
	Category string           `json:"category"`
	Count    int              `json:"count,omitempty"`
}

type ackRequest struct {
	FlightID uint64 `json:"flightId"`
}

type unitView struct {
	gazetteer.Entry
	Category string `json:"category"`
	Color    string `json:"color"`
}

type errorResponse struct {
	Error string `json:"error"`
}
