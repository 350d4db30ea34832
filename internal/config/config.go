// Package config provides environment configuration for the API server.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// MongoDB settings
	MongoURI     string
	DatabaseName string

	// Hosted model credentials, one per assistant mode.
	GeminiAPIKey        string
	GeminiAPIKeyMath    string
	GeminiAPIKeyEnglish string
	GeminiAPIKeyHistory string
	GeminiAPIKeyGeneral string
	GenerationModel     string

	// Embedding / vector index
	OpenAIAPIKey   string
	EmbeddingModel string
	VectorDBPath   string
	CollectionName string
	ChunkSize      int
	ChunkOverlap   int

	// OCR
	OCRLanguages string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from the environment, consulting a .env file if present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// MongoDB
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName: getEnv("DATABASE_NAME", "chatbot_assistant"),

		// Hosted model
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiAPIKeyMath:    getEnv("GEMINI_API_KEY_MATH", ""),
		GeminiAPIKeyEnglish: getEnv("GEMINI_API_KEY_ENGLISH", ""),
		GeminiAPIKeyHistory: getEnv("GEMINI_API_KEY_HISTORY", ""),
		GeminiAPIKeyGeneral: getEnv("GEMINI_API_KEY_GENERAL", ""),
		GenerationModel:     getEnv("GENERATION_MODEL", "gemini-2.0-flash"),

		// Embedding / vector index
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		VectorDBPath:   getEnv("VECTOR_DB_PATH", "vector_index.db"),
		CollectionName: getEnv("COLLECTION_NAME", "documents"),
		ChunkSize:      getIntEnv("CHUNK_SIZE", 1000),
		ChunkOverlap:   getIntEnv("CHUNK_OVERLAP", 200),

		// OCR
		OCRLanguages: getEnv("OCR_LANGUAGES", "vie+eng"),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// ModeKey returns the credential for a mode, falling back to the general key.
func (c *Config) ModeKey(mode string) string {
	var key string
	switch mode {
	case "math":
		key = c.GeminiAPIKeyMath
	case "english":
		key = c.GeminiAPIKeyEnglish
	case "history":
		key = c.GeminiAPIKeyHistory
	case "general":
		key = c.GeminiAPIKeyGeneral
	}
	if key == "" {
		key = c.GeminiAPIKeyGeneral
	}
	if key == "" {
		key = c.GeminiAPIKey
	}
	return key
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
