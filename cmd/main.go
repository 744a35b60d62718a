// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"globe-nav/internal/api"
	"globe-nav/internal/config"
	"globe-nav/internal/gazetteer"
	"globe-nav/internal/geocode"
	"globe-nav/internal/homeview"
	"globe-nav/internal/logger"
	"globe-nav/internal/metrics"
	"globe-nav/internal/middleware"
	"globe-nav/internal/migrate"
	"globe-nav/internal/navigation"
	"globe-nav/internal/routes"
	"globe-nav/internal/session"
	"globe-nav/internal/store"
	"globe-nav/internal/utils"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")
	cfg := config.Load()
	l.Debug("config_loaded", "addr", cfg.Addr, "base", cfg.APIBase, "ui", cfg.UIDist, "gazetteer", cfg.GazetteerDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gaz, err := gazetteer.Load(cfg.GazetteerDir)
	if err != nil {
		l.Error("gazetteer_load_error", "err", err)
		os.Exit(1)
	}
	l.Info("gazetteer_ready", "entries", gaz.Len(), "located", gaz.LocatedCount())

	var rc *redis.Client
	if cfg.GeocodeRedis {
		rc = utils.OpenRedisFromEnv()
		if rc == nil {
			l.Info("redis_disabled")
		} else if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
			_ = rc.Close()
			rc = nil
		} else {
			l.Info("redis_ping_ok")
			defer rc.Close()
		}
	}
	var gopts []geocode.Option
	if rc != nil {
		gopts = append(gopts, geocode.WithSharedCache(geocode.NewRedisCache(rc, cfg.GeocodeRedisTTL)))
	}
	geocoder := geocode.NewResolver(geocode.NewNominatim(cfg.GeocodeEndpoint, cfg.GeocodeUserAgent, cfg.GeocodeTimeout), gopts...)

	// 统计库可选；未启用时保持接口为 nil，而非带类型的空指针
	var recorder navigation.Recorder
	var stats api.StatsStore
	if cfg.StatsEnabled {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st := store.AttachDB(db)
		recorder, stats = st, st
	} else {
		l.Info("stats_disabled")
	}

	home, err := homeview.Open(cfg.GeoIPPath)
	if err != nil {
		l.Error("geoip_open_error", "path", cfg.GeoIPPath, "err", err)
		home = homeview.New(nil)
	}
	defer home.Close()

	catalog := routes.Corridor()
	reg := session.NewRegistry(session.Shared{
		Gazetteer: gaz,
		Geocoder:  geocoder,
		Catalog:   catalog,
		Stats:     recorder,
		Step:      cfg.StatusStep,
	}, cfg.SessionIdleTTL)
	reg.Start(ctx)
	defer reg.CloseAll()

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(api.Deps{
		Registry:  reg,
		Catalog:   catalog,
		Gazetteer: gaz,
		Home:      home,
		Stats:     stats,
		Redis:     rc,
		Logger:    l,
	})
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())

	fs := http.FileServer(http.Dir(cfg.UIDist))
	mux.Handle("/", fs)

	mux.HandleFunc("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + cfg.APIBase + "'"))
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write([]byte("window.__GEOCODE_SOURCE__='OpenStreetMap Nominatim'"))
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write([]byte("window.__GEOCODE_SOURCE_URL__='https://nominatim.openstreetmap.org'"))
	})

	handler := logger.AccessMiddleware(l)(mux)
	if cfg.RateLimitEnabled {
		handler = middleware.RateLimit(cfg.RateLimitQPS)(handler)
		l.Info("rate_limit_enabled", "qps", cfg.RateLimitQPS)
	}
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		l.Info("shutdown_begin")
		if err := s.Shutdown(sctx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
	}()

	if cfg.TLSEnabled {
		if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "globe-nav.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		if cfg.TLSRedirect != "" {
			go serveRedirect(ctx, l, cfg.TLSRedirect, cfg.Addr)
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
		err = s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
	} else {
		l.Info("listening", "addr", cfg.Addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown_complete")
}

// serveRedirect：明文端口 301 跳转到 HTTPS
func serveRedirect(ctx context.Context, l *slog.Logger, redirAddr, httpsAddr string) {
	httpRedir := http.NewServeMux()
	httpRedir.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		baseHost := r.Host
		if i := strings.LastIndex(baseHost, ":"); i != -1 {
			baseHost = baseHost[:i]
		}
		targetHost := baseHost
		if port := strings.TrimPrefix(httpsAddr, ":"); port != "" && port != "443" {
			targetHost = baseHost + ":" + port
		}
		target := "https://" + targetHost + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		l.Debug("http_redirect", "from", r.Host, "to", target)
	})
	srv := &http.Server{Addr: redirAddr, Handler: logger.AccessMiddleware(l)(httpRedir), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	l.Info("http_redirect_listening", "addr", redirAddr, "to", "https"+httpsAddr)
	_ = srv.ListenAndServe()
}
