package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL            string
	AVKey            string
	Port             string
	LogLevel         log.Level
	ImportConfigPath string
}

// Load reads configuration from a .env file (if present) and environment variables.
// PG_URL is required. AV_KEY is optional here; commands that call AlphaVantage check it themselves.
func Load() (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	level := log.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
		level = parsed
	}

	importPath := os.Getenv("IMPORT_CONFIG")
	if importPath == "" {
		importPath = "importer.yaml"
	}

	return &Config{
		PGURL:            pgURL,
		AVKey:            os.Getenv("AV_KEY"),
		Port:             port,
		LogLevel:         level,
		ImportConfigPath: importPath,
	}, nil
}

// RequireAVKey returns an error when no AlphaVantage key is configured.
func (c *Config) RequireAVKey() error {
	if c.AVKey == "" {
		return fmt.Errorf("AV_KEY environment variable is required for this command")
	}
	return nil
}
