package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	RedisHost       string
	RedisPort       string
	Port            string
	ServersFile     string
	LogFile         string
	EnableHistory   bool
	MonitorSchedule string

	WhoisPort        int
	WhoisTimeout     time.Duration
	WhoisReadTimeout time.Duration
	PartialResults   bool
	Backend          string
	Proxy            string
	DNSResolver      string

	SkipOriginCheck bool
	AllowedDomain   string
}

const (
	BackendSocket   = "socket"
	BackendLikexian = "likexian"
)

func LoadConfig() (*Config, error) {
	cfg := &Config{
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		Port:            getEnv("PORT", "5000"),
		ServersFile:     getEnv("SERVERS_FILE", "servers.json"),
		LogFile:         os.Getenv("LOG_FILE"),
		EnableHistory:   getEnvBool("ENABLE_HISTORY", true),
		MonitorSchedule: getEnv("MONITOR_SCHEDULE", "0 2 * * *"),

		WhoisPort:        getEnvInt("WHOIS_PORT", 43),
		WhoisTimeout:     getEnvDuration("WHOIS_TIMEOUT", 5*time.Second),
		WhoisReadTimeout: getEnvDuration("WHOIS_READ_TIMEOUT", 0),
		PartialResults:   getEnvBool("WHOIS_PARTIAL_RESULTS", false),
		Backend:          strings.ToLower(getEnv("WHOIS_BACKEND", BackendSocket)),
		Proxy:            os.Getenv("WHOIS_PROXY"),
		DNSResolver:      os.Getenv("DNS_RESOLVER"),

		SkipOriginCheck: getEnvBool("SKIP_ORIGIN_CHECK", false),
		AllowedDomain:   os.Getenv("ALLOWED_DOMAIN"),
	}

	if cfg.Backend != BackendSocket && cfg.Backend != BackendLikexian {
		return nil, fmt.Errorf("WHOIS_BACKEND must be %q or %q, got %q", BackendSocket, BackendLikexian, cfg.Backend)
	}
	if cfg.WhoisPort <= 0 || cfg.WhoisPort > 65535 {
		return nil, fmt.Errorf("WHOIS_PORT out of range: %d", cfg.WhoisPort)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings or a plain number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
