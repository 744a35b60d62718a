// 包 navigation：搜索协调器，串联名录、地理编码、相机与叠加层
package navigation

import (
	"errors"
	"strings"

	"globe-nav/internal/gazetteer"
	"globe-nav/internal/geocode"
	"globe-nav/internal/scene"
)

type OutcomeKind string

const (
	NotFound      OutcomeKind = "not_found"
	UnitFound     OutcomeKind = "unit_found"
	SiteFound     OutcomeKind = "site_found"
	LocationFound OutcomeKind = "location_found"
	Error         OutcomeKind = "error"
)

// 状态文本
const (
	StatusNotFound    = "Location not found"
	StatusSearchError = "Error searching location"
)

var (
	ErrUnknownRoute = errors.New("unknown route")
	ErrUnknownPanel = errors.New("unknown panel")
)

// 文档注释：一次搜索的结果
// 约束：Stale 表示该搜索在生效前被更新的搜索取代（或上下文取消），其副作用未被应用。
type Outcome struct {
	Kind       OutcomeKind      `json:"kind"`
	Query      string           `json:"query"`
	Unit       *gazetteer.Entry `json:"unit,omitempty"`
	Site       *gazetteer.Site  `json:"site,omitempty"`
	Location   *geocode.Result  `json:"location,omitempty"`
	Generation uint64           `json:"generation"`
	Stale      bool             `json:"stale,omitempty"`
}

type Panel string

const (
	PanelRoutes    Panel = "routes"
	PanelOfficials Panel = "officials"
)

// 文档注释：导航状态（面板可见性、标记图层、加载与状态文本）
// 背景：由协调器独占并在每次变更后广播给会话订阅者；外部只拿到副本。
type NavigationState struct {
	RoutePanel     bool             `json:"routePanel"`
	OfficialsPanel bool             `json:"officialsPanel"`
	MarkersVisible bool             `json:"markersVisible"`
	MarkerSource   gazetteer.Source `json:"markerSource"`
	MarkerCategory string           `json:"markerCategory"`
	SelectedRoute  string           `json:"selectedRoute,omitempty"`
	SelectedEntity scene.Handle     `json:"selectedEntity,omitempty"`
	Query          string           `json:"query,omitempty"`
	Status         string           `json:"status,omitempty"`
	Loading        bool             `json:"loading"`
	LoadingText    string           `json:"loadingText,omitempty"`
	LastOutcome    OutcomeKind      `json:"lastOutcome,omitempty"`
	Generation     uint64           `json:"generation"`
	// 关键人员提示序列独立于搜索的加载态
	OfficialsLoading     bool   `json:"officialsLoading"`
	OfficialsLoadingText string `json:"officialsLoadingText,omitempty"`
}

// trimQuery：仅用于空白判定与本地名录/地点匹配；地理编码使用原始查询
func trimQuery(q string) string { return strings.TrimSpace(q) }
