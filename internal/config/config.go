package config

import (
	"os"
	"strconv"
)

// Config is the server configuration, loaded from the environment.
type Config struct {
	Port           string
	PlanDBPath     string
	PlanName       string
	GridCellSize   float64
	RoomResolution float64
}

// Load reads the environment, falling back to defaults suitable for
// local development.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		PlanDBPath:     getEnv("PLAN_DB_PATH", "data/plans.db"),
		PlanName:       getEnv("PLAN_NAME", "default"),
		GridCellSize:   getEnvAsFloat("GRID_CELL_SIZE", 0.5),
		RoomResolution: getEnvAsFloat("ROOM_RESOLUTION", 0.25),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
