package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DiscordToken  string
	DBPath        string
	HTTPPort      string
	LogLevel      string
	CommandPrefix string
	PlayerRole    string
	OwnerID       string
	ChartFont     string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DiscordToken:  getEnv("DISCORD_TOKEN", ""),
		DBPath:        getEnv("DB_PATH", "stats.db"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CommandPrefix: getEnv("COMMAND_PREFIX", "."),
		PlayerRole:    getEnv("PLAYER_ROLE", "Aventureiro"),
		OwnerID:       getEnv("OWNER_ID", ""),
		ChartFont:     getEnv("CHART_FONT", ""),
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("http_port", cfg.HTTPPort).
		Str("log_level", cfg.LogLevel).
		Str("command_prefix", cfg.CommandPrefix).
		Str("player_role", cfg.PlayerRole).
		Bool("chart_enabled", cfg.ChartFont != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
