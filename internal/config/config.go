// Package config reads runtime settings from the environment, after loading
// an optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	MinRadius = 100
	MaxRadius = 1000
)

type Config struct {
	Host          string
	Port          string
	DataPath      string
	NotesPath     string
	AutoRefresh   bool
	DefaultRadius float64
	OutputDir     string
	UploadDir     string
	SessionSecret string
	LogLevel      string
	LogFormat     string
}

// Load reads .env files (missing ones are ignored) and then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) Config {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	return Config{
		Host:          get("HOST", "127.0.0.1"),
		Port:          get("PORT", "9595"),
		DataPath:      get("DATA_PATH", "cobalagi_daerah.csv"),
		NotesPath:     get("NOTES_PATH", "catatan_kunjungan.csv"),
		AutoRefresh:   parseBool(get("AUTO_REFRESH", ""), true),
		DefaultRadius: ClampRadius(parseFloat(get("DEFAULT_RADIUS", ""), 300)),
		OutputDir:     get("OUTPUT_DIR", "output"),
		UploadDir:     get("UPLOAD_DIR", "uploads"),
		SessionSecret: get("SESSION_SECRET", ""),
		LogLevel:      get("LOG_LEVEL", "info"),
		LogFormat:     get("LOG_FORMAT", "text"),
	}
}

func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// ClampRadius keeps the default radius inside the slider range.
func ClampRadius(r float64) float64 {
	if r < MinRadius {
		return MinRadius
	}
	if r > MaxRadius {
		return MaxRadius
	}
	return r
}

func parseBool(v string, def bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
