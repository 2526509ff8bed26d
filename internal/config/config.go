package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	LogLevel    string
	DBPath      string
	AuthSecret  string
	RateLimit   int64
	IPRateLimit int64
	RateWindow  time.Duration
	BatchCap    int
}

func New() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		LogLevel:   os.Getenv("LOGLEVEL"),
		DBPath:     getEnv("DBPATH", "finlog.db"),
		AuthSecret: os.Getenv("AUTHSECRET"),
		RateLimit:  getEnvInt("RATELIMIT", 60),
		// Per-address gate in front of token verification; roomier than the
		// per-owner mutation limit because shared NATs hit it collectively.
		IPRateLimit: getEnvInt("IPRATELIMIT", 300),
		RateWindow:  time.Duration(getEnvInt("RATEWINDOWMS", 60_000)) * time.Millisecond,
		BatchCap:    int(getEnvInt("BATCHCAP", 500)),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
