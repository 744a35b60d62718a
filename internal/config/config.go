// 包 config：集中读取环境变量并给出默认值；.env 文件由主入口通过 godotenv 预先加载
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// 文档注释：服务配置
// 背景：原先散落在主入口的 os.Getenv 调用收敛于此，便于测试与默认值审阅。
// 约束：解析失败一律回退默认值，不因配置错误阻断启动；外部依赖（Redis/Postgres/GeoIP）默认关闭。
type Config struct {
	Addr    string
	APIBase string
	UIDist  string

	GazetteerDir string

	GeocodeEndpoint  string
	GeocodeUserAgent string
	GeocodeTimeout   time.Duration
	GeocodeRedis     bool
	GeocodeRedisTTL  time.Duration

	StatsEnabled bool
	GeoIPPath    string

	SessionIdleTTL time.Duration
	StatusStep     time.Duration

	RateLimitEnabled bool
	RateLimitQPS     int

	TLSEnabled  bool
	TLSCertPath string
	TLSKeyPath  string
	TLSRedirect string
}

func Load() *Config {
	return &Config{
		Addr:             getEnv("ADDR", ":8080"),
		APIBase:          strings.TrimRight(getEnv("API_BASE", "/api"), "/"),
		UIDist:           getEnv("UI_DIST", filepath.Join("ui", "dist")),
		GazetteerDir:     getEnv("GAZETTEER_DIR", filepath.Join("data", "gazetteer")),
		GeocodeEndpoint:  getEnv("GEOCODE_ENDPOINT", "https://nominatim.openstreetmap.org/search"),
		GeocodeUserAgent: getEnv("GEOCODE_USER_AGENT", "globe-nav/1.0"),
		GeocodeTimeout:   getMillis("GEOCODE_TIMEOUT_MS", 5000),
		GeocodeRedis:     os.Getenv("GEOCODE_REDIS_ENABLE") == "true",
		GeocodeRedisTTL:  getSeconds("GEOCODE_REDIS_TTL_S", 86400),
		StatsEnabled:     os.Getenv("STATS_ENABLE") == "true",
		GeoIPPath:        os.Getenv("GEOIP_PATH"),
		SessionIdleTTL:   getSeconds("SESSION_IDLE_TTL_S", 1800),
		StatusStep:       getMillis("STATUS_STEP_MS", 800),
		RateLimitEnabled: os.Getenv("RATE_LIMIT_ENABLED") == "true",
		RateLimitQPS:     getInt("RATE_LIMIT_QPS", 50),
		TLSEnabled:       os.Getenv("TLS_ENABLE") == "true",
		TLSCertPath:      getEnv("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
		TLSKeyPath:       getEnv("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
		TLSRedirect:      os.Getenv("TLS_REDIRECT_ADDR"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getSeconds(key string, fallback int) time.Duration {
	return time.Duration(getInt(key, fallback)) * time.Second
}

func getMillis(key string, fallback int) time.Duration {
	return time.Duration(getInt(key, fallback)) * time.Millisecond
}
