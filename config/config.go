package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Server
	ServerPort string `yaml:"server_port"`

	// Database. Empty means the in-memory job store.
	DatabaseURL string `yaml:"database_url"`

	// Data
	GamesCSV        string `yaml:"games_csv"`
	InteractionsCSV string `yaml:"interactions_csv"`

	// Model hyperparameters. Fixed here rather than exposed per-request.
	Factors    int     `yaml:"factors"`
	MaxIter    int     `yaml:"max_iter"`
	RandomSeed int64   `yaml:"random_seed"`
	Alpha      float64 `yaml:"alpha"` // collaborative weight in the blend
}

// Load loads configuration from environment variables, then applies
// overrides from the YAML file named by CONFIG_FILE if set
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		GamesCSV:        getEnv("GAMES_CSV", "data/games_prepared.csv"),
		InteractionsCSV: getEnv("INTERACTIONS_CSV", "data/ratings_prepared.csv"),
		Factors:         getEnvInt("MODEL_FACTORS", 20),
		MaxIter:         getEnvInt("MODEL_MAX_ITER", 400),
		RandomSeed:      int64(getEnvInt("MODEL_RANDOM_SEED", 42)),
		Alpha:           0.5,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if cfg.Factors <= 0 || cfg.MaxIter <= 0 {
		return nil, fmt.Errorf("invalid model hyperparameters: factors=%d max_iter=%d", cfg.Factors, cfg.MaxIter)
	}
	if cfg.Alpha < 0 || cfg.Alpha > 1 {
		return nil, fmt.Errorf("alpha must be in [0,1], got %v", cfg.Alpha)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
