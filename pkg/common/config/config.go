package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/quipper/poc/people/be/pkg/pagination"
)

// Config is the process configuration, read from the environment.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
type Config struct {
	Port        string
	LogLevel    string
	UsersDBPath string

	// Roster paging
	PageSize     int
	CountTotals  bool
	WindowRadius int

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxyHeaders lets X-Forwarded-For/X-Real-IP set the client
	// address. Only enable behind a proxy that overwrites them.
	TrustProxyHeaders bool

	CORSAllowedOrigins []string
}

// Load reads .env (if any) and the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment with defaults.
func FromEnv() Config {
	return Config{
		Port:               getString("PORT", "8080"),
		LogLevel:           getString("LOG_LEVEL", "debug"),
		UsersDBPath:        getString("USERS_SQLITE_PATH", "./users.db"),
		PageSize:           getInt("ROSTER_PAGE_SIZE", 15),
		CountTotals:        getBool("ROSTER_COUNT_TOTALS", true),
		WindowRadius:       min(getInt("ROSTER_WINDOW_RADIUS", pagination.DefaultRadius), pagination.MaxRadius),
		RateLimitRPS:       getFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 40),
		TrustProxyHeaders:  getBool("TRUST_PROXY_HEADERS", false),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// Addr is the listen address for Port.
func (c Config) Addr() string { return ":" + c.Port }

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && v > 0 {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil && v > 0 {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func getList(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
