package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globenav_http_requests_total",
		Help: "Total number of API requests by route",
	}, []string{"route"})
	SearchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globenav_search_total",
		Help: "Search outcomes by kind",
	}, []string{"kind"})
	SearchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "globenav_search_duration_ms",
		Help:    "Search duration in milliseconds, pacing delays included",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 3000, 6000, 10000},
	})
	SearchStaleTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globenav_search_stale_total",
		Help: "Searches superseded by a newer search before applying effects",
	})
	GeocodeCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globenav_geocode_cache_hits_total",
		Help: "Geocode cache hits by level",
	}, []string{"level"})
	GeocodeCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globenav_geocode_cache_misses_total",
		Help: "Geocode cache misses",
	})
	GeocodeRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globenav_geocode_requests_total",
		Help: "Total geocoding provider requests",
	})
	GeocodeSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globenav_geocode_success_total",
		Help: "Geocoding provider requests with a result",
	})
	GeocodeEmptyTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globenav_geocode_empty_total",
		Help: "Geocoding provider requests with zero results",
	})
	GeocodeFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globenav_geocode_fail_total",
		Help: "Geocoding provider failures (transport, status or decode)",
	})
	GeocodeDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "globenav_geocode_duration_ms",
		Help:    "Geocoding provider call duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "globenav_active_sessions",
		Help: "Live browser sessions",
	})
	OverlayEntities = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "globenav_overlay_entities",
		Help: "Live overlay entities across sessions by kind",
	}, []string{"kind"})
	CameraFlightsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globenav_camera_flights_total",
		Help: "Camera flights by destination kind",
	}, []string{"kind"})
	SceneCommandsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globenav_scene_commands_dropped_total",
		Help: "Scene commands dropped because a subscriber queue was full",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(SearchTotal)
	prometheus.MustRegister(SearchDurationMs)
	prometheus.MustRegister(SearchStaleTotal)
	prometheus.MustRegister(GeocodeCacheHitsTotal)
	prometheus.MustRegister(GeocodeCacheMissesTotal)
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeSuccessTotal)
	prometheus.MustRegister(GeocodeEmptyTotal)
	prometheus.MustRegister(GeocodeFailTotal)
	prometheus.MustRegister(GeocodeDurationMs)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(OverlayEntities)
	prometheus.MustRegister(CameraFlightsTotal)
	prometheus.MustRegister(SceneCommandsDroppedTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
