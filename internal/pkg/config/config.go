package config

import (
	"fmt"
	"os"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

// StorageConfig points at the hosted object-storage HTTP API used for
// photo binaries.
type StorageConfig struct {
	URL        string // e.g. https://<project>.supabase.co
	ServiceKey string
	Bucket     string
	PublicURL  string // base for public object URLs; defaults to URL
}

type Config struct {
	Repositories RepositoriesConfig
	Storage      StorageConfig
	ServerPort   string

	// Provider keys. Either may be empty: the resolver then serves mock
	// place data and the annotator returns placeholder vibes instead of
	// failing startup.
	MapsAPIKey   string
	GeminiAPIKey string

	// SessionStatePath is where the persisted client-state subset
	// (current user, map viewport) is serialized between runs.
	SessionStatePath string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "eternal_hope"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		Storage: StorageConfig{
			URL:        os.Getenv("STORAGE_URL"),
			ServiceKey: os.Getenv("STORAGE_SERVICE_KEY"),
			Bucket:     getEnvOrDefault("STORAGE_BUCKET", "photos"),
			PublicURL:  os.Getenv("STORAGE_PUBLIC_URL"),
		},
		ServerPort:       getEnvOrDefault("SERVER_PORT", "8091"),
		MapsAPIKey:       os.Getenv("GOOGLE_MAPS_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		SessionStatePath: getEnvOrDefault("SESSION_STATE_PATH", ".eternal-hope-state.json"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}

	if cfg.Storage.PublicURL == "" {
		cfg.Storage.PublicURL = cfg.Storage.URL
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
