package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBSSLMode  string

	JWTSecret string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIOPublicURL string

	Gateway GatewayConfig

	TutorConfigPath string
	LogDir          string
	AllowedOrigins  []string
}

// GatewayConfig points at an OpenAI-compatible completion gateway.
type GatewayConfig struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	ImageModel string
}

const (
	DefaultGatewayURL = "https://ai.gateway.lovable.dev/v1"
	DefaultChatModel  = "google/gemini-3-flash-preview"
	DefaultImageModel = "google/gemini-2.5-flash-image-preview"
)

func LoadConfig() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8000"),

		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", ""),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "dlh"),
		MinIOUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinIOPublicURL: getEnv("MINIO_PUBLIC_URL", ""),

		Gateway: GatewayConfig{
			BaseURL:    strings.TrimRight(getEnv("AI_GATEWAY_URL", DefaultGatewayURL), "/"),
			APIKey:     getEnv("AI_GATEWAY_API_KEY", getEnv("LOVABLE_API_KEY", "")),
			ChatModel:  getEnv("AI_CHAT_MODEL", DefaultChatModel),
			ImageModel: getEnv("AI_IMAGE_MODEL", DefaultImageModel),
		},

		TutorConfigPath: getEnv("TUTOR_CONFIG", ""),
		LogDir:          getEnv("LOG_DIR", "./logs"),
		AllowedOrigins:  splitList(getEnv("CORS_ORIGINS", "*")),
	}
}

// Validate checks the settings the server cannot start without. A missing
// gateway key is reported per request instead.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET cannot be empty")
	}
	if c.DBHost == "" {
		return errors.New("DB_HOST cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return b
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
