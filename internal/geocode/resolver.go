package geocode

import (
	"context"
	"strings"

	"globe-nav/internal/logger"
	"globe-nav/internal/metrics"
	"globe-nav/internal/routes"
)

// 文档注释：地理编码解析器
// 背景：查询顺序为 进程内缓存 → 特例表 → 二级缓存（可选）→ 外部服务；成功结果逐级回填。
// 约束：特例判定使用小写查询，缓存键使用原始查询；负结果与失败均不缓存，服务恢复后可重试。
type Resolver struct {
	provider Provider
	l1       *MemCache
	l2       Cache
}

type Option func(*Resolver)

// WithSharedCache：挂载二级缓存（如 Redis）
func WithSharedCache(c Cache) Option { return func(r *Resolver) { r.l2 = c } }

func NewResolver(p Provider, opts ...Option) *Resolver {
	r := &Resolver{provider: p, l1: NewMemCache()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve：失败与无结果都返回 nil，调用方按“未找到”处理
func (r *Resolver) Resolve(ctx context.Context, query string) *Result {
	res, err := r.Lookup(ctx, query)
	if err != nil {
		return nil
	}
	return res
}

// 文档注释：解析查询并暴露错误
// 背景：协调器需区分“未找到”与“查询出错”两种状态文案，故保留 error 返回。
// 返回：命中返回结果副本；零结果返回 (nil, nil)；外部服务失败返回 (nil, err)。
func (r *Resolver) Lookup(ctx context.Context, query string) (*Result, error) {
	if v, ok := r.l1.Get(ctx, query); ok {
		metrics.GeocodeCacheHitsTotal.WithLabelValues("memory").Inc()
		return &v, nil
	}
	if strings.ToLower(query) == routes.SpecialRouteKeyword {
		v := SpecialRoute()
		r.l1.Set(ctx, query, v)
		logger.L().Debug("geocode_special_route", "query", query)
		return &v, nil
	}
	if r.l2 != nil {
		if v, ok := r.l2.Get(ctx, query); ok {
			metrics.GeocodeCacheHitsTotal.WithLabelValues("shared").Inc()
			r.l1.Set(ctx, query, v)
			return &v, nil
		}
	}
	metrics.GeocodeCacheMissesTotal.Inc()
	if r.provider == nil {
		return nil, nil
	}
	res, err := r.provider.Search(ctx, query)
	if err != nil {
		logger.L().Warn("geocode_lookup_failed", "query", query, "err", err)
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	r.l1.Set(ctx, query, *res)
	if r.l2 != nil {
		r.l2.Set(ctx, query, *res)
	}
	v := *res
	return &v, nil
}

// SpecialRoute：走廊特例结果，包围盒为关键航点的紧包围盒
func SpecialRoute() Result {
	b := routes.WaypointBBox()
	return Result{
		Lat:            routes.OverviewCenter.Lat(),
		Lon:            routes.OverviewCenter.Lon(),
		DisplayName:    routes.SpecialRouteName,
		BBox:           &b,
		IsSpecialRoute: true,
	}
}
