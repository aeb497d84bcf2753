package config

import (
	"os"
	"strconv"

	"github.com/quintaverde/taskroster/internal/constants"
)

type Config struct {
	DatabaseURL       string
	DBDriver          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	GinMode           string
	ServerAddr        string
	SyncPastDays      int
	SyncFutureDays    int
	SyncMaxFutureDays int
}

func Load() *Config {
	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "taskroster"),
		DBPassword:        getEnv("DB_PASSWORD", "taskroster"),
		DBName:            getEnv("DB_NAME", "taskroster"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		ServerAddr:        getEnv("SERVER_ADDR", ":8080"),
		SyncPastDays:      getEnvInt("SYNC_PAST_DAYS", constants.DefaultSyncPastDays),
		SyncFutureDays:    getEnvInt("SYNC_FUTURE_DAYS", constants.DefaultSyncFutureDays),
		SyncMaxFutureDays: getEnvInt("SYNC_MAX_FUTURE_DAYS", constants.DefaultSyncMaxFutureDays),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
