package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Env      string
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Kafka    KafkaConfig
	Chat     ChatConfig
	LogLevel slog.Level
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Port string
}

// DatabaseConfig contains document store settings.
type DatabaseConfig struct {
	Driver  string // "mongo" or "memory"
	URI     string
	Name    string
	Timeout time.Duration // per-request budget for store calls
}

// AuthConfig contains token settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// KafkaConfig contains lifecycle event publishing settings. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ChatConfig contains the chat-completion upstream settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

const devJWTSecret = "dev-secret-change-me"

// Load reads a .env file if present, then builds the configuration from
// environment variables. JWT_SECRET is mandatory outside development.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Port: getEnv("PORT", "8000"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
			URI:    getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Name:   getEnv("MONGODB_DATABASE", "xportconnect"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "order-events"),
		},
		Chat: ChatConfig{
			APIKey:  getEnv("CHAT_API_KEY", ""),
			BaseURL: strings.TrimRight(getEnv("CHAT_BASE_URL", "https://api.groq.com/openai/v1"), "/"),
			Model:   getEnv("CHAT_MODEL", "llama3-8b-8192"),
		},
	}

	var err error
	if cfg.Database.Timeout, err = getEnvDuration("DB_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Auth.TokenTTL, err = getEnvDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch cfg.Database.Driver {
	case "mongo", "memory":
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Database.Driver)
	}

	if cfg.Auth.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required outside development")
		}
		cfg.Auth.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

// IsDevelopment reports whether the process runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction reports whether diagnostic detail must be withheld from clients.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// String returns a representation of the config with secrets masked.
func (c *Config) String() string {
	chat := "disabled"
	if c.Chat.APIKey != "" {
		chat = c.Chat.Model + " (key masked)"
	}
	return fmt.Sprintf("Config{Env: %s, Port: %s, Store: %s %s/%s, Auth: *** (masked) ***, Kafka: %v/%s, Chat: %s}",
		c.Env, c.HTTP.Port, c.Database.Driver, maskURI(c.Database.URI), c.Database.Name,
		c.Kafka.Brokers, c.Kafka.Topic, chat)
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// maskURI hides credentials embedded in a connection string.
func maskURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://***@" + rest[at+1:]
	}
	return uri
}
