package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheConfig drives the response cache middleware used on the
// read-mostly gate listings (authorities, dashboard).  Caching is
// disabled when Enabled is false or no Redis client exists.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool // HTTP methods eligible for caching
	TTL          time.Duration   // lifetime of cache entries
	Prefix       string          // key namespace
	MaxBodyBytes int             // largest response body worth caching
}

// LoadCacheConfig reads cache settings from the environment with
// sensible defaults.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      getenv("CACHE_ENABLED", "true") == "true",
		Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
		TTL:          parseDur(getenv("CACHE_TTL", "30s")),
		Prefix:       getenv("CACHE_PREFIX", "gate:cache"),
		MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
