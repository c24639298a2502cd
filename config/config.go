package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	AuthModeFirebase = "firebase"
	AuthModeHeader   = "header"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Firebase   FirebaseConfig
	Generation GenerationConfig
	Export     ExportConfig
	App        AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type DatabaseConfig struct {
	DSN         string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	AutoMigrate bool
}

// RedisConfig is optional; an empty Addr selects the in-process draft store and broker.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	DraftTTL time.Duration
}

type FirebaseConfig struct {
	CredentialsPath string
	AuthMode        string
	// AllowDemoUser lets header mode serve requests without X-User-Id as
	// "demo-user". Development only.
	AllowDemoUser bool
}

type GenerationConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	UseADC      bool
	Timeout     time.Duration
	RateLimit   float64 // requests per second, 0 disables the limiter
	Burst       int
	PromptsPath string
}

type ExportConfig struct {
	RendererURL string
	Timeout     time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	Storage     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			DSN:         getEnv("DB_DSN", ""),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvAsInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Name:        getEnv("DB_NAME", "docforge"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			DraftTTL: getEnvAsDuration("OUTLINE_DRAFT_TTL", 24*time.Hour),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			AuthMode:        strings.ToLower(getEnv("AUTH_MODE", AuthModeHeader)),
			AllowDemoUser:   getEnvAsBool("AUTH_ALLOW_DEMO_USER", false),
		},
		Generation: GenerationConfig{
			BaseURL:     getEnv("GENERATION_BASE_URL", "https://generativelanguage.googleapis.com"),
			APIKey:      getEnv("GENERATION_API_KEY", ""),
			Model:       getEnv("GENERATION_MODEL", "gemini-1.5-flash"),
			UseADC:      getEnvAsBool("GENERATION_USE_ADC", false),
			Timeout:     getEnvAsDuration("GENERATION_TIMEOUT", 60*time.Second),
			RateLimit:   getEnvAsFloat("GENERATION_RATE_LIMIT", 2),
			Burst:       getEnvAsInt("GENERATION_BURST", 4),
			PromptsPath: getEnv("GENERATION_PROMPTS_PATH", ""),
		},
		Export: ExportConfig{
			RendererURL: getEnv("RENDERER_URL", "http://localhost:8090"),
			Timeout:     getEnvAsDuration("RENDERER_TIMEOUT", 30*time.Second),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Storage:     strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.App.Storage {
	case StoragePostgres:
		if c.Database.DSN == "" && c.Database.Host == "" {
			return fmt.Errorf("DB_DSN or DB_HOST is required when STORAGE=postgres")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q (want %s or %s)", c.App.Storage, StoragePostgres, StorageMemory)
	}

	switch c.Firebase.AuthMode {
	case AuthModeFirebase:
		if c.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_MODE=firebase")
		}
	case AuthModeHeader:
		if c.Firebase.AllowDemoUser && c.App.Environment != "development" {
			return fmt.Errorf("AUTH_ALLOW_DEMO_USER is only allowed when APP_ENV=development")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q (want %s or %s)", c.Firebase.AuthMode, AuthModeFirebase, AuthModeHeader)
	}

	if c.Generation.BaseURL == "" {
		return fmt.Errorf("GENERATION_BASE_URL is required")
	}
	if c.Generation.APIKey == "" && !c.Generation.UseADC {
		log.Println("Warning: neither GENERATION_API_KEY nor GENERATION_USE_ADC set, generation calls will be unauthenticated")
	}
	if c.Export.RendererURL == "" {
		return fmt.Errorf("RENDERER_URL is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
