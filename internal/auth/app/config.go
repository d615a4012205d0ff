package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer string // Required: issuer claim for session tokens

	DatabaseFile   string        // Optional: path to SQLite database file (default: ./shopapi.db)
	SigningKeyFile string        // Optional: path to Ed25519 signing key file (default: ./signing.key)
	PepperFile     string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	SessionTTL     time.Duration // Optional: session token lifetime (default: 24h)
	ResetTokenTTL  time.Duration // Optional: password reset token lifetime (default: 15m)
	MinEntropy     float64       // Optional: minimum password entropy bits (default: 25)
	CookieSecure   bool          // Optional: mark session cookies Secure (default: false, set in prod)
	PublicURL      string        // Optional: externally reachable base URL for reset links (default: http://localhost:8080)

	SMTPHost string // SMTP relay host for reset emails
	SMTPPort int    // SMTP relay port (default: 587)
	SMTPUser string // SMTP username
	SMTPPass string // SMTP password
	SMTPFrom string // From address on outgoing mail

	AvatarDir     string // Optional: directory for stored avatar images (default: ./avatars)
	AvatarBaseURL string // Optional: public base URL avatars are served from

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	// A local .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := Config{
		Issuer:         getEnvOrDefault("SHOP_ISSUER", "shopapi"),
		DatabaseFile:   getEnvOrDefault("SHOP_DATABASE_FILE", "shopapi.db"),
		SigningKeyFile: getEnvOrDefault("SHOP_SIGNING_KEY_FILE", "signing.key"),
		PepperFile:     getEnvOrDefault("SHOP_PEPPER_FILE", "pepper"),
		SessionTTL:     getEnvDurationOrDefault("SHOP_SESSION_TTL", 24*time.Hour),
		ResetTokenTTL:  getEnvDurationOrDefault("SHOP_RESET_TOKEN_TTL", 15*time.Minute),
		CookieSecure:   getEnvBoolOrDefault("SHOP_COOKIE_SECURE", false),
		PublicURL:      getEnvOrDefault("SHOP_PUBLIC_URL", "http://localhost:8080"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnvOrDefault("SMTP_FROM", "noreply@shopapi.local"),

		AvatarDir:     getEnvOrDefault("SHOP_AVATAR_DIR", "avatars"),
		AvatarBaseURL: getEnvOrDefault("SHOP_AVATAR_BASE_URL", "http://localhost:8080/avatars"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if entropyStr := os.Getenv("SHOP_MIN_PASSWORD_ENTROPY"); entropyStr != "" {
		if entropy, err := strconv.ParseFloat(entropyStr, 64); err == nil {
			cfg.MinEntropy = entropy
		}
		// If parsing fails, MinEntropy remains 0 (service default applies)
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
