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
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Debug       bool

	Host         string
	HTTPPort     string
	Domains      []string
	CertCacheDir string
	MaxUploadMB  int

	LogLevel string
	LogDir   string

	ModelBackend   string
	GoogleAPIKey   string
	GeminiModel    string
	GeminiAPIURL   string
	MaxTokens      int
	Temperature    float32
	ModelTimeout   time.Duration
	ModelRateLimit float64

	VertexProjectID string
	VertexRegion    string

	APIBaseURL string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

// Load reads the process environment once. The result is treated as read-only.
func Load() (Config, error) {
	cfg := Config{
		AppName:     getEnv("APP_NAME", "AI Document Q&A System"),
		AppVersion:  getEnv("APP_VERSION", "0.1.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Debug:       getEnvAsBool("DEBUG", true),

		Host:         getEnv("HOST", "127.0.0.1"),
		HTTPPort:     getEnv("HTTP_PORT", "8000"),
		Domains:      getEnvAsList("DOMAINS"),
		CertCacheDir: getEnv("CERT_CACHE_DIR", "certs"),
		MaxUploadMB:  getEnvAsInt("MAX_UPLOAD_MB", 10),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogDir:   getEnv("LOG_DIR", ""),

		ModelBackend:   strings.ToLower(getEnv("MODEL_BACKEND", BackendGemini)),
		GoogleAPIKey:   getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiAPIURL:   getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		MaxTokens:      getEnvAsInt("MAX_TOKENS", 2048),
		Temperature:    float32(getEnvAsFloat("TEMPERATURE", 0.7)),
		ModelTimeout:   time.Duration(getEnvAsInt("MODEL_TIMEOUT", 120)) * time.Second,
		ModelRateLimit: getEnvAsFloat("MODEL_RATE_LIMIT", 0),

		VertexProjectID: getEnv("VERTEX_PROJECT_ID", ""),
		VertexRegion:    getEnv("VERTEX_REGION", "us-central1"),

		APIBaseURL: getEnv("API_BASE_URL", "http://127.0.0.1:8000"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.ModelBackend {
	case BackendGemini:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY environment variable must be set")
		}
	case BackendVertex:
		if c.VertexProjectID == "" {
			return fmt.Errorf("VERTEX_PROJECT_ID environment variable must be set when MODEL_BACKEND=vertex")
		}
	default:
		return fmt.Errorf("unknown MODEL_BACKEND %q (expected %q or %q)", c.ModelBackend, BackendGemini, BackendVertex)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("TEMPERATURE must be between 0 and 2, got %v", c.Temperature)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

// Addr is the listen address of the development server.
func (c Config) Addr() string {
	return c.Host + ":" + c.HTTPPort
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
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

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// APIBaseURL is the server address used by the client tools. It does not require the
// server-side settings that Load validates.
func APIBaseURL() string {
	return getEnv("API_BASE_URL", "http://127.0.0.1:8000")
}
