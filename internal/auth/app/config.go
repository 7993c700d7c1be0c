package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultAdminPassword is only accepted in dev.
const defaultAdminPassword = "qwerty"

type Config struct {
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	DatabaseFile         string        // Path to SQLite database file (default: ./blogs.db)

	Issuer        string        // iss claim of every token (default: bloggers-platform)
	AccessSecret  string        // HMAC secret for access tokens; required outside dev
	RefreshSecret string        // HMAC secret for refresh tokens; required outside dev
	AccessTTL     time.Duration // default: 10m
	RefreshTTL    time.Duration // default: 20m, must exceed AccessTTL

	// Refresh token cipher. Either a hex key and IV, or a passphrase and
	// salt to derive them from. Dev falls back to a random cipher.
	CipherKey        string
	CipherIV         string
	CipherPassphrase string
	CipherSalt       string

	PasswordHasher string // argon2id or bcrypt (default: argon2id)
	PepperFile     string // Path to file containing pepper for argon2id (default: ./pepper)

	ResendAPIKey string // Empty selects the log-only mail sender; required outside dev
	EmailFrom    string // required outside dev
	PublicURL    string // Front-end origin used in emailed links

	ConfirmationCodeTTL time.Duration // default: 1h30m
	RecoveryCodeTTL     time.Duration // default: 1h

	RateLimitWindow      time.Duration // default: 10s
	RateLimitMaxRequests int           // default: 5
	ConnectionRetention  time.Duration // default: 1h

	AdminLogin    string // default: admin
	AdminPassword string // default: qwerty, rejected outside dev

	CookieSecure      bool     // default: true
	CORSOrigins       []string // default: *
	TrustProxyHeaders bool     // default: false
}

// IsDev reports whether the service runs in the development environment.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

// LoadConfig reads the environment, after merging an optional .env file, and
// validates the result.
func LoadConfig() (Config, error) {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg := Config{
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		DatabaseFile:         getEnvOrDefault("DATABASE_FILE", "blogs.db"),

		Issuer:        getEnvOrDefault("JWT_ISSUER", "bloggers-platform"),
		AccessSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessTTL:     getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 10*time.Minute),
		RefreshTTL:    getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 20*time.Minute),

		CipherKey:        os.Getenv("CIPHER_KEY"),
		CipherIV:         os.Getenv("CIPHER_IV"),
		CipherPassphrase: os.Getenv("CIPHER_PASSPHRASE"),
		CipherSalt:       os.Getenv("CIPHER_SALT"),

		PasswordHasher: strings.ToLower(getEnvOrDefault("PASSWORD_HASHER", "argon2id")),
		PepperFile:     getEnvOrDefault("PEPPER_FILE", "pepper"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnvOrDefault("EMAIL_FROM", "Bloggers Platform <noreply@bloggers-platform.dev>"),
		PublicURL:    getEnvOrDefault("PUBLIC_URL", "http://localhost:3000"),

		ConfirmationCodeTTL: getEnvDurationOrDefault("CONFIRMATION_CODE_TTL", 90*time.Minute),
		RecoveryCodeTTL:     getEnvDurationOrDefault("RECOVERY_CODE_TTL", 1*time.Hour),

		RateLimitWindow:      getEnvDurationOrDefault("RATE_LIMIT_WINDOW", 10*time.Second),
		RateLimitMaxRequests: getEnvIntOrDefault("RATE_LIMIT_MAX_REQUESTS", 5),
		ConnectionRetention:  getEnvDurationOrDefault("CONNECTION_RETENTION", 1*time.Hour),

		AdminLogin:    getEnvOrDefault("ADMIN_LOGIN", "admin"),
		AdminPassword: getEnvOrDefault("ADMIN_PASSWORD", defaultAdminPassword),

		CookieSecure:      getEnvBoolOrDefault("COOKIE_SECURE", true),
		CORSOrigins:       getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustProxyHeaders: getEnvBoolOrDefault("TRUST_PROXY_HEADERS", false),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the service must not start with.
func (c Config) Validate() error {
	var errs []error

	if c.RefreshTTL <= c.AccessTTL {
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_TTL (%s) must be greater than ACCESS_TOKEN_TTL (%s)", c.RefreshTTL, c.AccessTTL))
	}
	if c.AccessSecret != "" && c.AccessSecret == c.RefreshSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if !c.IsDev() {
		if c.AccessSecret == "" || c.RefreshSecret == "" {
			errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required outside dev"))
		}
		if c.CipherKey == "" && c.CipherPassphrase == "" {
			errs = append(errs, errors.New("CIPHER_KEY/CIPHER_IV or CIPHER_PASSPHRASE/CIPHER_SALT are required outside dev"))
		}
		// The log sender would write confirmation and recovery codes to the logs.
		if c.ResendAPIKey == "" || c.EmailFrom == "" {
			errs = append(errs, errors.New("RESEND_API_KEY and EMAIL_FROM are required outside dev"))
		}
		if c.AdminPassword == defaultAdminPassword {
			errs = append(errs, errors.New("ADMIN_PASSWORD must be changed from the default outside dev"))
		}
	}
	if (c.CipherKey == "") != (c.CipherIV == "") {
		errs = append(errs, errors.New("CIPHER_KEY and CIPHER_IV must be set together"))
	}
	if c.CipherPassphrase != "" && c.CipherSalt == "" {
		errs = append(errs, errors.New("CIPHER_PASSPHRASE requires CIPHER_SALT"))
	}
	switch c.PasswordHasher {
	case "argon2id", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_HASHER must be argon2id or bcrypt, got %q", c.PasswordHasher))
	}
	if c.RateLimitMaxRequests <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW and RATE_LIMIT_MAX_REQUESTS must be positive"))
	}
	if c.AdminLogin == "" || c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_LOGIN and ADMIN_PASSWORD must not be empty"))
	}

	return errors.Join(errs...)
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
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma separated variable, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
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

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
