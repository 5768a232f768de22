package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the server and CLI read from the environment
type Config struct {
	Port        string
	GinMode     string
	DatabaseURL string
	DataPath    string

	JWTSecret string
	TokenTTL  time.Duration

	AdminEmail    string
	AdminPassword string
	AdminName     string

	PredictURL   string
	GenAIAPIKey  string
	GenAIModel   string
	CORSOrigins  []string
	LogLevel     string
	LogFile      string
	CookieSecure bool
}

// LoadEnvFiles loads the first .env found in the working directory or its parents
func LoadEnvFiles() {
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}
}

// Load reads the configuration from environment variables, applying defaults
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("DATA_PATH", "relief.db")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("ADMIN_EMAIL", "admin@relief.local")
	v.SetDefault("ADMIN_PASSWORD", "admin123!")
	v.SetDefault("ADMIN_NAME", "Administrator")
	v.SetDefault("PREDICT_URL", "http://localhost:5000")
	v.SetDefault("GENAI_MODEL", "gemini-2.0-flash")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("COOKIE_SECURE", false)

	return &Config{
		Port:          v.GetString("PORT"),
		GinMode:       v.GetString("GIN_MODE"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DataPath:      v.GetString("DATA_PATH"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		TokenTTL:      v.GetDuration("TOKEN_TTL"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		AdminName:     v.GetString("ADMIN_NAME"),
		PredictURL:    strings.TrimRight(v.GetString("PREDICT_URL"), "/"),
		GenAIAPIKey:   v.GetString("GENAI_API_KEY"),
		GenAIModel:    v.GetString("GENAI_MODEL"),
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFile:       v.GetString("LOG_FILE"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
