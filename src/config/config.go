package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server needs. It is built once in main and passed down explicitly.
type Config struct {
	Port        string
	CORSOrigins string

	DBDriver    string // sqlite | postgres
	DBPath      string
	DatabaseURL string
	DBLogLevel  string

	JWTSecret string
	TokenTTL  time.Duration

	UploadDir        string
	MaxUploadBytes   int
	CloudinaryURL    string
	CloudinaryFolder string

	MongoURI string
	MongoDB  string

	RestrictedTags      []string
	NotificationMaxAge  time.Duration
	NotificationCleanup time.Duration
}

// Load reads an optional .env file and then the process environment, falling back to defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:        GetEnv("PORT", "3000"),
		CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:5173"),

		DBDriver:    strings.ToLower(GetEnv("DB_DRIVER", "sqlite")),
		DBPath:      GetEnv("DB_PATH", "./memenest.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBLogLevel:  GetEnv("DB_LOG_LEVEL", "warn"),

		JWTSecret: GetEnv("JWT_SECRET", "fallback-secret-key"),
		TokenTTL:  time.Duration(getInt("TOKEN_TTL_HOURS", 24)) * time.Hour,

		UploadDir:        GetEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:   getInt("MAX_UPLOAD_MB", 25) * 1024 * 1024,
		CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
		CloudinaryFolder: GetEnv("CLOUDINARY_FOLDER", "memenest/media"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  GetEnv("MONGO_DB", "memenest"),

		RestrictedTags:      SplitList(GetEnv("RESTRICTED_TAGS", "nsfw")),
		NotificationMaxAge:  time.Duration(getInt("NOTIFICATION_MAX_AGE_HOURS", 24*30)) * time.Hour,
		NotificationCleanup: time.Duration(getInt("NOTIFICATION_CLEANUP_HOURS", 24)) * time.Hour,
	}

	if cfg.JWTSecret == "fallback-secret-key" {
		log.Println("WARNING: JWT_SECRET not set, using the fallback secret")
	}

	log.Println("Configuration loaded successfully.")
	return cfg
}

// GetEnv returns the value of key or defaultValue when it is unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SplitList turns "a, b,,c" into [a b c], lowercased.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("WARNING: Invalid value %q for %s. Using default %d.", raw, key, fallback)
		return fallback
	}
	return n
}
