package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	CountdownTicks           int
	CountdownTickSeconds     int
	ChatHistoryLimit         int
	MaxRooms                 int
	LeaderboardSize          int
	CommandRatePerSecond     float64
	CommandBurst             int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	RedisAddr                string
	RedisPassword            string
}

func Default() Config {
	return Config{
		CountdownTicks:           3,
		CountdownTickSeconds:     1,
		ChatHistoryLimit:         50,
		MaxRooms:                 500,
		LeaderboardSize:          50,
		CommandRatePerSecond:     10,
		CommandBurst:             20,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("COUNTDOWN_TICKS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.CountdownTicks = value
		}
	}
	if raw := os.Getenv("COUNTDOWN_TICK_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.CountdownTickSeconds = value
		}
	}
	if raw := os.Getenv("CHAT_HISTORY_LIMIT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ChatHistoryLimit = value
		}
	}
	if raw := os.Getenv("MAX_ROOMS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MaxRooms = value
		}
	}
	if raw := os.Getenv("LEADERBOARD_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.LeaderboardSize = value
		}
	}
	if raw := os.Getenv("COMMAND_RATE_PER_SECOND"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
			cfg.CommandRatePerSecond = value
		}
	}
	if raw := os.Getenv("COMMAND_BURST"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.CommandBurst = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := os.Getenv("REDIS_ADDR"); raw != "" {
		cfg.RedisAddr = raw
	}
	if raw := os.Getenv("REDIS_PASSWORD"); raw != "" {
		cfg.RedisPassword = raw
	}
	return cfg
}
