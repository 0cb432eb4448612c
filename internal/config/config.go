package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	GeminiAPIKey   string
	ChatModel      string
	DatabaseURL    string
	HTTPPort       string
	LogLevel       string
	JWTSecret      string
	SessionKey     string
	ProfilePicsDir string
	AccessCodes    []string

	LLMTimeout           time.Duration
	LLMMaxRetries        int
	LLMRequestsPerMinute int
}

// DefaultAccessCodes unlock the marketplace contact flow.
var DefaultAccessCodes = []string{"FAMILIE123", "TESTZUGANG", "HARRO1"}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		ChatModel:      getEnv("CHAT_MODEL", "gemini-1.5-flash-latest"),
		DatabaseURL:    getEnv("DATABASE_URL", "happiness_creator.db"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		ProfilePicsDir: getEnv("PROFILE_PICS_DIR", "profile_pics"),
		AccessCodes:    getEnvAsList("ACCESS_CODES", DefaultAccessCodes),

		LLMTimeout:           getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		LLMMaxRetries:        getEnvAsInt("LLM_MAX_RETRIES", 2),
		LLMRequestsPerMinute: getEnvAsInt("LLM_REQUESTS_PER_MINUTE", 60),
	}
	AppConfig.SessionKey = getEnv("SESSION_KEY", AppConfig.JWTSecret)

	if AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
