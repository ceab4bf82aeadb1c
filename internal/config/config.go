package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	NLU    NLUConfig
	Engine EngineConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

// NLUConfig configures the external text-understanding backend: schema
// extraction, intent classification and web search.
type NLUConfig struct {
	BaseURL          string
	APIKey           string
	ExtractTimeout   time.Duration
	IntentTimeout    time.Duration
	SearchTimeout    time.Duration
	MaxSearchResults int
}

// EngineConfig configures the simulation engine endpoint.
type EngineConfig struct {
	BaseURL      string
	StartTimeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		NLU: NLUConfig{
			BaseURL:          getEnv("NLU_BASE_URL", "http://localhost:8090"),
			APIKey:           getEnv("NLU_API_KEY", ""),
			ExtractTimeout:   getEnvAsDuration("NLU_EXTRACT_TIMEOUT", 6*time.Second),
			IntentTimeout:    getEnvAsDuration("NLU_INTENT_TIMEOUT", 3500*time.Millisecond),
			SearchTimeout:    getEnvAsDuration("NLU_SEARCH_TIMEOUT", 5*time.Second),
			MaxSearchResults: getEnvAsInt("NLU_MAX_SEARCH_RESULTS", 5),
		},
		Engine: EngineConfig{
			BaseURL:      getEnv("ENGINE_BASE_URL", "http://localhost:8091"),
			StartTimeout: getEnvAsDuration("ENGINE_START_TIMEOUT", 15*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
