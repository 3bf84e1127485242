package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries the process settings. Everything game-mechanical lives in
// the engine as constants; only deployment knobs belong here.
type Config struct {
	Addr         string
	LogFile      string
	DefaultArena string
}

// Load reads a .env file when present, then the environment, falling back to
// sensible defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:         envOr("RR_ADDR", ":8080"),
		LogFile:      envOr("RR_LOG_FILE", "server.log"),
		DefaultArena: envOr("RR_DEFAULT_ARENA", "main"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
