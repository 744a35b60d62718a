// 包 homeview：会话的初始相机视角（固定默认值，可选按访问者 IP 定位）
package homeview

import (
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"globe-nav/internal/geo"
	"globe-nav/internal/logger"
)

// DefaultHeight：初始视角高度（米）
const DefaultHeight = 15000000.0

// View：初始视角
type View struct {
	Center  geo.LatLon `json:"center"`
	Height  float64    `json:"height"`
	Source  string     `json:"source"`
	Country string     `json:"country,omitempty"`
}

// Default：以走廊总览中心为准的固定视角
var Default = View{Center: geo.Pt(32, 70), Height: DefaultHeight, Source: "default"}

// Locator：GeoIP 城市库查询
type Locator interface {
	City(ip net.IP) (*geoip2.City, error)
}

// 文档注释：初始视角解析器
// 背景：未配置 GeoIP 库时总是返回固定默认视角；配置后以访问者所在位置为中心，高度不变。
// 约束：私有/回环地址、查询失败或坐标缺失时回退默认视角，不向调用方返回错误。
type Resolver struct {
	loc    Locator
	reader *geoip2.Reader
}

// Open：path 为空时只返回默认视角
func Open(path string) (*Resolver, error) {
	if path == "" {
		return &Resolver{}, nil
	}
	rd, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	logger.L().Info("geoip_opened", "path", path, "type", rd.Metadata().DatabaseType)
	return &Resolver{loc: rd, reader: rd}, nil
}

func New(l Locator) *Resolver { return &Resolver{loc: l} }

// For：按访问者 IP（可带端口）计算初始视角
func (r *Resolver) For(addr string) View {
	if r == nil || r.loc == nil {
		return Default
	}
	ip := parseIP(addr)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return Default
	}
	c, err := r.loc.City(ip)
	if err != nil {
		logger.L().Debug("geoip_lookup_error", "ip", ip.String(), "err", err)
		return Default
	}
	if c == nil || (c.Location.Latitude == 0 && c.Location.Longitude == 0) {
		return Default
	}
	return View{
		Center:  geo.Pt(c.Location.Latitude, c.Location.Longitude),
		Height:  DefaultHeight,
		Source:  "geoip",
		Country: c.Country.IsoCode,
	}
}

func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

func parseIP(addr string) net.IP {
	addr = strings.TrimSpace(addr)
	if ip := net.ParseIP(strings.Trim(addr, "[]")); ip != nil {
		return ip
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}
