package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8710"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	RulesFile           string        // path to the triage rules yaml (optional, empty = built-in defaults)
	RulesReloadInterval time.Duration // interval to reload the rules file (default: 1h)
	MainViewURL         string        // URL the agent opens when a notification is clicked

	// Reminders
	MinAlarmDelay time.Duration // minimum delay for a scheduled alarm (the registry rejects <= 0)
	AlarmTick     time.Duration // how often the fire loop polls for due alarms

	// Open-item detection
	DetectPollInterval time.Duration // periodic full recheck interval
	DebounceWindow     time.Duration // coalescing window for bursts of tab events

	// Trash garbage collection
	TrashTTL   time.Duration // how long deleted items stay in trash (default: 30 days)
	GCInterval time.Duration // interval to run trash collection (default: 24h)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict mutating routes to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("TABKEEP_LISTEN_PORT", ":8710"),
		ShutdownTimeout: mustDuration("TABKEEP_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("TABKEEP_LOG_LEVEL", "info"),
		PrettyLog: mustBool("TABKEEP_PRETTY_LOG", true),

		// Triage rules
		RulesFile:           getenv("TABKEEP_RULES_FILE", ""), // Optional, empty = built-in defaults
		RulesReloadInterval: mustDuration("TABKEEP_RULES_RELOAD_INTERVAL", time.Hour),
		MainViewURL:         getenv("TABKEEP_MAIN_VIEW_URL", "http://localhost:8710/app"),

		// Reminders
		MinAlarmDelay: mustDuration("TABKEEP_MIN_ALARM_DELAY", 30*time.Second),
		AlarmTick:     mustDuration("TABKEEP_ALARM_TICK", 5*time.Second),

		// Open-item detection
		DetectPollInterval: mustDuration("TABKEEP_DETECT_POLL_INTERVAL", 15*time.Second),
		DebounceWindow:     mustDuration("TABKEEP_DEBOUNCE_WINDOW", 300*time.Millisecond),

		// Trash garbage collection
		TrashTTL:   mustDuration("TABKEEP_TRASH_TTL", 30*24*time.Hour),
		GCInterval: mustDuration("TABKEEP_GC_INTERVAL", 24*time.Hour),

		// Redis settings
		RedisAddr:             getenv("TABKEEP_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("TABKEEP_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("TABKEEP_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("TABKEEP_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("TABKEEP_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("TABKEEP_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("TABKEEP_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("TABKEEP_TRUST_PROXY", false),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: TABKEEP_REDIS_PASSWORD is required when TABKEEP_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
