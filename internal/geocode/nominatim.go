package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"globe-nav/internal/geo"
	"globe-nav/internal/logger"
	"globe-nav/internal/metrics"
)

// 文档注释：Nominatim 搜索响应条目
// 背景：仅解析本服务需要的字段；boundingbox 为 [south, north, west, east] 的字符串数组。
type place struct {
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"`
}

// 文档注释：Nominatim 兼容的地理编码客户端
// 约束：每次仅取 1 条结果；client 为空时使用 5s 超时的默认客户端；User-Agent 按 Nominatim 使用政策必填。
type Nominatim struct {
	Endpoint  string
	UserAgent string
	Client    *http.Client
}

func NewNominatim(endpoint, userAgent string, timeout time.Duration) *Nominatim {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Nominatim{Endpoint: endpoint, UserAgent: userAgent, Client: &http.Client{Timeout: timeout}}
}

// 文档注释：查询单个地名
// 返回：首条结果；零结果返回 (nil, nil)；非 2xx、解码失败、经纬度缺失均返回 error。
// 约束：包围盒解析失败时忽略包围盒，不影响点坐标结果。
func (n *Nominatim) Search(ctx context.Context, query string) (*Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if n.UserAgent != "" {
		req.Header.Set("User-Agent", n.UserAgent)
	}
	req.Header.Set("Accept", "application/json")
	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	t0 := time.Now()
	metrics.GeocodeRequestsTotal.Inc()
	logger.L().Debug("geocode_req", "query", query)
	resp, err := client.Do(req)
	if err != nil {
		logger.L().Error("geocode_http_error", "err", err)
		metrics.GeocodeFailTotal.Inc()
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.GeocodeFailTotal.Inc()
		logger.L().Error("geocode_http_status", "status", resp.StatusCode)
		return nil, fmt.Errorf("nominatim: %s", resp.Status)
	}
	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		logger.L().Error("geocode_decode_error", "err", err)
		metrics.GeocodeFailTotal.Inc()
		return nil, fmt.Errorf("nominatim decode: %w", err)
	}
	dur := time.Since(t0).Milliseconds()
	metrics.GeocodeDurationMs.Observe(float64(dur))
	if len(places) == 0 {
		metrics.GeocodeEmptyTotal.Inc()
		logger.L().Debug("geocode_empty", "query", query, "duration_ms", dur)
		return nil, nil
	}
	r, err := places[0].toResult()
	if err != nil {
		metrics.GeocodeFailTotal.Inc()
		logger.L().Error("geocode_malformed", "query", query, "err", err)
		return nil, err
	}
	metrics.GeocodeSuccessTotal.Inc()
	logger.L().Debug("geocode_resp", "query", query, "name", r.DisplayName, "bbox", r.BBox != nil, "duration_ms", dur)
	return r, nil
}

func (p place) toResult() (*Result, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim lat %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim lon %q: %w", p.Lon, err)
	}
	r := &Result{Lat: lat, Lon: lon, DisplayName: p.DisplayName}
	if len(p.BoundingBox) == 4 {
		var v [4]float64
		ok := true
		for i, s := range p.BoundingBox {
			f, e := strconv.ParseFloat(s, 64)
			if e != nil {
				ok = false
				break
			}
			v[i] = f
		}
		if ok {
			b := geo.NewBBox(v[0], v[1], v[2], v[3])
			r.BBox = &b
		}
	}
	return r, nil
}
