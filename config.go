package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries the system-level configuration, sourced from the
// environment with an optional .env file.
type Config struct {
	MongoURI  string
	DBName    string
	APIKey    string
	Host      string
	Port      string
	RedisAddr string
	LogFile   string
	Debug     bool
}

func loadConfig() Config {
	// .env is a convenience for local runs; absence is fine.
	_ = godotenv.Load()

	cfg := Config{
		MongoURI:  getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		DBName:    getEnvOrDefault("DB_NAME", "goodbooks"),
		APIKey:    getEnvOrDefault("API_KEY", "secret123"),
		Host:      getEnvOrDefault("HOST", "0.0.0.0"),
		Port:      getEnvOrDefault("PORT", "8000"),
		RedisAddr: getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		LogFile:   os.Getenv("LOG_FILE"),
	}
	if v, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil {
		cfg.Debug = v
	}
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c Config) addr() string {
	return c.Host + ":" + c.Port
}
