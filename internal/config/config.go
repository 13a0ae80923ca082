package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Config holds application configuration from environment.
type Config struct {
	HTTPPort        string
	DatabaseURL     string
	DBPoolSize      int
	RedisURL        string
	RedisPoolSize   int
	CacheTTL        int // seconds
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaPartitions int
	KafkaGroupID    string
	TimerLogsAsync  bool
	BcryptCost      int
	LogLevel        string
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the process config (loads once from env).
func Get() *Config {
	cfgOnce.Do(func() {
		cfg = Load()
	})
	return cfg
}

// Load reads the config from the environment on every call.
func Load() *Config {
	c := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBPoolSize:      getIntEnv("DB_POOL_SIZE", 20),
		RedisURL:        os.Getenv("REDIS_URL"),
		RedisPoolSize:   getIntEnv("REDIS_POOL_SIZE", 50),
		CacheTTL:        getIntEnv("CACHE_TTL_SEC", 60),
		KafkaBrokers:    getSliceEnv("KAFKA_BROKERS"),
		KafkaTopic:      getEnv("KAFKA_TIMER_TOPIC", "timer-log-commands"),
		KafkaPartitions: getIntEnv("KAFKA_PARTITIONS", 4),
		KafkaGroupID:    getEnv("KAFKA_GROUP_ID", "timer-log-writers"),
		TimerLogsAsync:  getBoolEnv("TIMER_LOGS_ASYNC", false),
		BcryptCost:      getIntEnv("BCRYPT_COST", bcrypt.DefaultCost),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		c.BcryptCost = bcrypt.DefaultCost
	}
	return c
}

// AsyncTimerLogs reports whether timer-log appends go through Kafka.
func (c *Config) AsyncTimerLogs() bool {
	return c.TimerLogsAsync && len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// getSliceEnv splits a comma separated list; empty entries are dropped.
func getSliceEnv(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
