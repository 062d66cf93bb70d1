package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration
type Config struct {
	Version   string          `yaml:"version"`
	API       APIConfig       `yaml:"api"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Events    EventsConfig    `yaml:"events"`
	Directory DirectoryConfig `yaml:"directory"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Autosave  AutosaveConfig  `yaml:"autosave"`

	// Secrets come from the environment, never from the YAML file.
	Secrets Secrets `yaml:"-"`
}

// APIConfig represents HTTP gateway configuration
type APIConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	EnableCORS     bool          `yaml:"enable_cors"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	EnableAuth     bool          `yaml:"enable_auth"`
}

// DatabaseConfig represents Postgres configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig represents Redis cache configuration
type RedisConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// EventsConfig represents Kafka event bus configuration
type EventsConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	ClientID     string        `yaml:"client_id"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
}

// DirectoryConfig represents Neo4j org-directory configuration
type DirectoryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	URI         string        `yaml:"uri"`
	Username    string        `yaml:"username"`
	MaxPoolSize int           `yaml:"max_pool_size"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
}

// IndexerConfig represents embedding queue configuration
type IndexerConfig struct {
	JobDelay   time.Duration `yaml:"job_delay"`
	MaxRetries int           `yaml:"max_retries"`
}

// AutosaveConfig represents autosave controller timing defaults
type AutosaveConfig struct {
	SaveDebounce     time.Duration `yaml:"save_debounce"`
	VersionDebounce  time.Duration `yaml:"version_debounce"`
	MinVersionLength int           `yaml:"min_version_length"`
}

// Secrets holds credentials read from the process environment
type Secrets struct {
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	MistralAPIKey string `env:"MISTRAL_API_KEY"`
	DBPassword    string `env:"ATRIUM_DB_PASSWORD"`
	RedisPassword string `env:"ATRIUM_REDIS_PASSWORD"`
	Neo4jPassword string `env:"ATRIUM_NEO4J_PASSWORD"`
	JWTSecret     string `env:"ATRIUM_JWT_SECRET"`
}

// Default returns the configuration defaults applied before the file is read
func Default() Config {
	return Config{
		Version: "1",
		API: APIConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    120 * time.Second,
			EnableCORS:     true,
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "atrium",
			User:            "atrium",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "atrium",
		},
		Events: EventsConfig{
			Brokers:      []string{"localhost:9092"},
			ClientID:     "atrium-content",
			BatchTimeout: 10 * time.Millisecond,
		},
		Directory: DirectoryConfig{
			URI:         "bolt://localhost:7687",
			Username:    "neo4j",
			MaxPoolSize: 50,
			ConnTimeout: 5 * time.Second,
		},
		Indexer: IndexerConfig{
			JobDelay:   time.Second,
			MaxRetries: 3,
		},
		Autosave: AutosaveConfig{
			SaveDebounce:     2 * time.Second,
			VersionDebounce:  30 * time.Second,
			MinVersionLength: 10,
		},
	}
}

// Load reads configuration from a YAML file and the environment
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env.local is optional; real deployments set variables directly
	_ = godotenv.Load(".env.local")

	if err := env.Parse(&cfg.Secrets); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DSN builds the Postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=atrium",
		c.Database.Host, c.Database.Port, c.Database.User, c.Secrets.DBPassword, c.Database.Name, c.Database.SSLMode)
}
