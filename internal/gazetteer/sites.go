package gazetteer

import (
	"strings"

	"globe-nav/internal/geo"
)

// 文档注释：情报地点（静态叠加图层）
// 背景：单位名录未命中时的第二本地查找表，按完整名称精确匹配；命中后显示对应图层并飞抵近景高度。
type Site struct {
	Key         string     `json:"key"`
	DisplayName string     `json:"displayName"`
	Position    geo.LatLon `json:"position"`
	Layer       string     `json:"layer"`
}

var sites = map[string]Site{
	"hotan military": {
		Key: "hotan military", DisplayName: "Hotan Military",
		Position: geo.Pt(37.00049733314965, 79.92633589091545),
		Layer:    "Hotan Military",
	},
	"kirana hills": {
		Key: "kirana hills", DisplayName: "Kirana Hills",
		Position: geo.Pt(31.95784166666667, 72.69160277777779),
		Layer:    "Kirana Hills",
	},
}

// FindSite：去除首尾空白并转小写后精确匹配
func FindSite(query string) (Site, bool) {
	s, ok := sites[strings.ToLower(strings.TrimSpace(query))]
	return s, ok
}

// Sites：全部情报地点
func Sites() []Site {
	out := make([]Site, 0, len(sites))
	for _, k := range []string{"hotan military", "kirana hills"} {
		out = append(out, sites[k])
	}
	return out
}
