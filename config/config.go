package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MinSessionSecretLength is the shortest SESSION_SECRET production accepts.
const MinSessionSecretLength = 32

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	UploadDir   string
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged to console instead of sent
	// Other
	AllowedOrigins   []string
	AppURL           string
	AdminEmail       string // Receives security alert notifications
	SessionSecret    string
	TursoDatabaseURL string
	TursoAuthToken   string
	// Onboarding checklist templates
	OnboardingTemplatePath string
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

func Load() *Config {
	// .env is optional; system env vars win either way
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	sessionSecret := getEnv("SESSION_SECRET", "")

	ValidateSessionSecret(sessionSecret, environment)

	if sessionSecret == "" && environment != "production" {
		sessionSecret = GenerateSecureSecret()
		log.Println("[INFO] Generated temporary session secret for development. Set SESSION_SECRET env var for persistence.")
	}

	return &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		DBPath:                 getEnv("DB_PATH", "db/app.db"),
		Environment:            environment,
		UploadDir:              getEnv("UPLOAD_DIR", "static/uploads"),
		ResendAPIKey:           getEnv("RESEND_API_KEY", ""),
		EmailFrom:              getEnv("EMAIL_FROM", "noreply@talentflowhr.app"),
		EmailFromName:          getEnv("EMAIL_FROM_NAME", "TalentFlow HR"),
		EmailTestMode:          getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		AllowedOrigins:         strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AppURL:                 getEnv("APP_URL", "http://localhost:8080"),
		AdminEmail:             getEnv("ADMIN_EMAIL", ""),
		SessionSecret:          sessionSecret,
		TursoDatabaseURL:       getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:         getEnv("TURSO_AUTH_TOKEN", ""),
		OnboardingTemplatePath: getEnv("ONBOARDING_TEMPLATE_PATH", "config/onboarding.yml"),
		R2AccountID:            getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:          getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:      getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:           getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:            getEnv("R2_PUBLIC_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed
	}
	switch strings.ToLower(value) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	return fallback
}

// insecureSecrets are placeholder values that must never reach production.
var insecureSecrets = []string{
	"dev-secret-change-in-production",
	"change-me",
	"secret",
	"development",
	"test",
	"",
}

// ValidateSessionSecret enforces the SESSION_SECRET policy: production exits
// on placeholder or short secrets; development only warns.
func ValidateSessionSecret(secret string, environment string) error {
	for _, placeholder := range insecureSecrets {
		if strings.EqualFold(secret, placeholder) {
			if environment == "production" {
				log.Fatal("[CRITICAL] SESSION_SECRET is set to an insecure default value. Generate a secure random secret with: openssl rand -base64 32")
			}
			log.Printf("[WARNING] SESSION_SECRET is set to an insecure default value. This is acceptable only in development.")
			return nil
		}
	}

	if environment == "production" && len(secret) < MinSessionSecretLength {
		log.Fatalf("[CRITICAL] SESSION_SECRET must be at least %d characters in production (current: %d). Generate with: openssl rand -base64 32", MinSessionSecretLength, len(secret))
	}

	return nil
}

// GenerateSecureSecret returns a random base64 secret for development runs
// that did not set SESSION_SECRET.
func GenerateSecureSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Printf("[WARNING] Failed to generate secure secret: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(bytes)
}
