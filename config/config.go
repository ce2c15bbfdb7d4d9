package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Presence PresenceConfig
	Geo      GeoConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	// URL is optional; without it the change feed runs in-process only.
	URL string
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// PresenceConfig holds the liveness tunables. The defaults match the shipped
// product; deployments with different latency/battery tradeoffs override via
// env.
type PresenceConfig struct {
	OnlineThreshold   time.Duration
	HeartbeatInterval time.Duration
	PollInterval      time.Duration
}

type GeoConfig struct {
	AgentURL        string
	FixTimeout      time.Duration
	RefreshInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8099"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "paired:paired@tcp(localhost:3306)/paired?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:       getEnv("JWT_ISSUER", "paired"),
		},
		Presence: PresenceConfig{
			OnlineThreshold:   getDuration("PRESENCE_ONLINE_THRESHOLD", 30*time.Second),
			HeartbeatInterval: getDuration("PRESENCE_HEARTBEAT_INTERVAL", 15*time.Second),
			PollInterval:      getDuration("PRESENCE_POLL_INTERVAL", 5*time.Second),
		},
		Geo: GeoConfig{
			AgentURL:        os.Getenv("GEO_AGENT_URL"),
			FixTimeout:      getDuration("GEO_FIX_TIMEOUT", 10*time.Second),
			RefreshInterval: getDuration("GEO_REFRESH_INTERVAL", 30*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
