// 包 geocode：自由文本查询到坐标/包围盒的解析，含特例表、会话期缓存与外部地理编码兜底
package geocode

import (
	"context"

	"globe-nav/internal/geo"
)

// 文档注释：地理编码结果
// 约束：创建后只读；缓存按原始查询串（区分大小写）保存，进程生命周期内不过期、不失效。
type Result struct {
	Lat            float64   `json:"lat"`
	Lon            float64   `json:"lon"`
	DisplayName    string    `json:"displayName"`
	BBox           *geo.BBox `json:"bbox,omitempty"`
	IsSpecialRoute bool      `json:"isSpecialRoute"`
}

// clone：深拷贝，包围盒指针不与缓存共享
func (r Result) clone() Result {
	if r.BBox != nil {
		b := *r.BBox
		r.BBox = &b
	}
	return r
}

// Provider：外部地理编码服务
// 约束：无结果返回 (nil, nil)；网络、状态码或解析失败返回 error。
type Provider interface {
	Search(ctx context.Context, query string) (*Result, error)
}
