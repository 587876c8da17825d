package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfiguration marks a startup configuration that cannot serve traffic.
var ErrConfiguration = errors.New("configuration failure")

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Keys      APIKeys
	Ai        AIConfig
	Knowledge KnowledgeConfig
	Search    SearchConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	RateLimitRequests  int
	RateLimitPeriod    time.Duration
	JwtExpireMinutes   int
	ServiceName        string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	AlertTo    string // On-call address for emergency alerts, empty disables
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
	HuggingFace  string
	OpenAI       string
	JwtSecret    string
}

type AIConfig struct {
	EmbeddingProvider  string // "gemini", "ollama", "jina" or "local"
	EmbeddingDimension int
	OllamaBaseURL      string
	OllamaModel        string // embedding model
	LLMProvider        string // "gemini", "ollama", "openai", "huggingface"
	LLMModel           string
	LLMBaseURL         string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMTimeout         time.Duration
	LLMMaxAttempts     int
	LLMBackoffBase     time.Duration
	LLMBreakerEnabled  bool
}

type KnowledgeConfig struct {
	DataDir     string
	VectorStore string // "pgvector" or "memory"
	Autoload    bool
}

type SearchConfig struct {
	WebSearchBaseURL string
	WebSearchTimeout time.Duration
	CacheTTL         time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			RateLimitRequests:  getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			RateLimitPeriod:    getEnvAsDuration("RATE_LIMIT_PERIOD", time.Minute),
			JwtExpireMinutes:   getEnvAsInt("JWT_EXPIRE_MINUTES", 1440),
			ServiceName:        getEnv("OTEL_SERVICE_NAME", "drheal-backend"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Dr.Heal AI"),
			AlertTo:    getEnv("EMERGENCY_ALERT_EMAIL", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			JwtSecret:    getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:        getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:           getEnv("LLM_MODEL", "gemini-2.5-flash"),
			LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
			LLMTemperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			LLMMaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 2048),
			LLMTimeout:         getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
			LLMMaxAttempts:     getEnvAsInt("LLM_MAX_ATTEMPTS", 3),
			LLMBackoffBase:     getEnvAsDuration("LLM_BACKOFF_BASE", time.Second),
			LLMBreakerEnabled:  getEnvAsBool("LLM_BREAKER_ENABLED", true),
		},
		Knowledge: KnowledgeConfig{
			DataDir:     getEnv("KNOWLEDGE_DATA_DIR", "./data/medical_knowledge"),
			VectorStore: getEnv("VECTOR_STORE", "pgvector"),
			Autoload:    getEnvAsBool("KNOWLEDGE_AUTOLOAD", false),
		},
		Search: SearchConfig{
			WebSearchBaseURL: getEnv("WEB_SEARCH_BASE_URL", "https://api.duckduckgo.com"),
			WebSearchTimeout: getEnvAsDuration("WEB_SEARCH_TIMEOUT", 10*time.Second),
			CacheTTL:         getEnvAsDuration("SEARCH_CACHE_TTL", 10*time.Minute),
		},
	}
}

// Validate reports every missing credential or connection string the selected
// providers need. The server must not start when it returns an error.
func (c *Config) Validate() error {
	var missing []string

	if c.Database.Connection == "" {
		missing = append(missing, "DB_CONNECTION_STRING")
	}
	if c.Keys.JwtSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	switch c.Ai.EmbeddingProvider {
	case "gemini":
		if c.Keys.GoogleGemini == "" {
			missing = append(missing, "GOOGLE_GEMINI_API_KEY")
		}
	case "jina":
		if c.Keys.Jina == "" {
			missing = append(missing, "JINA_API_KEY")
		}
	case "ollama", "local":
	default:
		return fmt.Errorf("%w: unsupported EMBEDDING_PROVIDER %q", ErrConfiguration, c.Ai.EmbeddingProvider)
	}

	switch c.Ai.LLMProvider {
	case "gemini":
		if c.Keys.GoogleGemini == "" {
			missing = append(missing, "GOOGLE_GEMINI_API_KEY")
		}
	case "openai":
		if c.Keys.OpenAI == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "huggingface":
		if c.Keys.HuggingFace == "" {
			missing = append(missing, "HUGGINGFACE_API_KEY")
		}
	case "ollama":
	default:
		return fmt.Errorf("%w: unsupported LLM_PROVIDER %q", ErrConfiguration, c.Ai.LLMProvider)
	}

	if c.Knowledge.VectorStore != "pgvector" && c.Knowledge.VectorStore != "memory" {
		return fmt.Errorf("%w: unsupported VECTOR_STORE %q", ErrConfiguration, c.Knowledge.VectorStore)
	}
	if c.Ai.EmbeddingDimension <= 0 {
		return fmt.Errorf("%w: EMBEDDING_DIMENSION must be positive", ErrConfiguration)
	}
	if c.Ai.LLMMaxAttempts <= 0 {
		return fmt.Errorf("%w: LLM_MAX_ATTEMPTS must be positive", ErrConfiguration)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfiguration, strings.Join(dedupe(missing), ", "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
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
