package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App  AppConfig
	Sync SyncConfig
	Ai   AIConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
	NatsURL     string
	RedisURL    string
	Database    string
}

// SyncConfig carries the timing knobs of the synchronization core.
type SyncConfig struct {
	PersistDebounce time.Duration
	SearchDebounce  time.Duration
	EnhanceTimeout  time.Duration
}

type AIConfig struct {
	LLMProvider         string // "ollama", "openai", etc
	LLMModel            string // e.g. "llama3", "qwen2.5"
	OnboardingModel     string // lower-stakes variant for first-run sessions
	OllamaBaseURL       string
	OnboardingSessionId string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "app.log"),
			NatsURL:     getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
			Database:    getEnv("DB_CONNECTION_STRING", ""),
		},
		Sync: SyncConfig{
			PersistDebounce: getEnvAsDuration("PERSIST_DEBOUNCE_MS", 50) * time.Millisecond,
			SearchDebounce:  getEnvAsDuration("SEARCH_DEBOUNCE_MS", 300) * time.Millisecond,
			EnhanceTimeout:  getEnvAsDuration("ENHANCE_TIMEOUT_SEC", 60) * time.Second,
		},
		Ai: AIConfig{
			LLMProvider:         getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:            getEnv("LLM_MODEL", "llama3"),
			OnboardingModel:     getEnv("LLM_ONBOARDING_MODEL", "llama3"),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OnboardingSessionId: getEnv("ONBOARDING_SESSION_ID", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback int) time.Duration {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(value)
	}
	return time.Duration(fallback)
}
