package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBUser           string
	DBPassword       string
	DBHost           string
	DBPort           string
	DBName           string
	HTTPAddr         string
	WorkerCount      int
	QueueSize        int
	MaxRetries       int
	RetryBaseBackoff time.Duration

	// Webhook filtering, applied to every ingested delivery.
	EventTypeFilter  string
	FilterByAgentIDs bool
	AgentIDs         string

	// Outbound video-agent API.
	AgentAPIBaseURL string
	AgentAPIKey     string
	AgentAPITimeout time.Duration

	// Delivery dedup; empty RedisAddr disables it.
	RedisAddr string
	DedupTTL  time.Duration
}

func Load() *Config {
	return &Config{
		DBUser:           getEnv("MYSQL_USER", "root"),
		DBPassword:       getEnv("MYSQL_ROOT_PASSWORD", "testpass"),
		DBHost:           getEnv("MYSQL_HOST", "localhost"),
		DBPort:           getEnv("MYSQL_PORT", "3306"),
		DBName:           getEnv("MYSQL_DATABASE", "webhookdb"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		WorkerCount:      getEnvInt("WORKER_COUNT", 4),
		QueueSize:        getEnvInt("QUEUE_SIZE", 1000),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		RetryBaseBackoff: getEnvDuration("RETRY_BASE_BACKOFF_MS", 20*time.Millisecond),
		EventTypeFilter:  getEnv("EVENT_TYPE_FILTER", "all"),
		FilterByAgentIDs: getEnvBool("FILTER_BY_AGENT_IDS", false),
		AgentIDs:         getEnv("AGENT_IDS", ""),
		AgentAPIBaseURL:  getEnv("AGENT_API_BASE_URL", "https://api.videoagent.example.com"),
		AgentAPIKey:      getEnv("AGENT_API_KEY", ""),
		AgentAPITimeout:  getEnvDuration("AGENT_API_TIMEOUT_MS", 10000*time.Millisecond),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		DedupTTL:         getEnvDuration("DEDUP_TTL_MS", 24*60*60*1000*time.Millisecond),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Millisecond
		}
	}
	return fallback
}
