package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIRONMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	// All variables
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// JWT Configuration
	JWT_SECRET       string
	JWT_ISSUER       string
	JWT_EXPIRY_HOURS int
	// Redis Configuration
	REDIS_URL string
	// DigitalOcean Spaces Configuration
	DO_SPACES_ACCESS_KEY   string
	DO_SPACES_SECRET_KEY   string
	DO_SPACES_BUCKET       string
	DO_SPACES_REGION       string
	DO_SPACES_ENDPOINT     string
	DO_SPACES_CDN_ENDPOINT string
	// Meilisearch
	MEILI_HOST    string
	MEILI_API_KEY string
	// HTTP
	ALLOWED_ORIGINS string
	// Logging
	LOG_LEVEL string
	LOG_FILE  string
	// Cron
	CRON_ENABLED bool
	// Site defaults used when the settings table cannot be read
	SITE_NAME    string
	SITE_TAGLINE string
	SITE_EMAIL   string
	SITE_PHONE   string
}

// IsProduction reports whether GO_ENV is "production"
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

func Get() (*EnvironmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	jwtExpiry, err := strconv.Atoi(os.Getenv("JWT_EXPIRY_HOURS"))
	if err != nil || jwtExpiry <= 0 {
		jwtExpiry = 24
	}

	envVariables := &EnvironmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getEnv("DB_HOST", "localhost"),
		DB_PORT:      getEnv("DB_PORT", "5432"),
		DB_SSL_MODE:  getEnv("DB_SSL_MODE", "disable"),
		PORT:         port,
		// JWT
		JWT_SECRET:       os.Getenv("JWT_SECRET"),
		JWT_ISSUER:       getEnv("JWT_ISSUER", "ig-thar-village-api"),
		JWT_EXPIRY_HOURS: jwtExpiry,
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Spaces
		DO_SPACES_ACCESS_KEY:   os.Getenv("DO_SPACES_ACCESS_KEY"),
		DO_SPACES_SECRET_KEY:   os.Getenv("DO_SPACES_SECRET_KEY"),
		DO_SPACES_BUCKET:       os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:       os.Getenv("DO_SPACES_REGION"),
		DO_SPACES_ENDPOINT:     os.Getenv("DO_SPACES_ENDPOINT"),
		DO_SPACES_CDN_ENDPOINT: os.Getenv("DO_SPACES_CDN_ENDPOINT"),
		// Meilisearch
		MEILI_HOST:    os.Getenv("MEILI_HOST"),
		MEILI_API_KEY: os.Getenv("MEILI_API_KEY"),
		// HTTP
		ALLOWED_ORIGINS: getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		// Logging
		LOG_LEVEL: getEnv("LOG_LEVEL", "info"),
		LOG_FILE:  os.Getenv("LOG_FILE"),
		// Cron defaults to enabled
		CRON_ENABLED: !strings.EqualFold(os.Getenv("CRON_ENABLED"), "false"),
		// Site
		SITE_NAME:    os.Getenv("SITE_NAME"),
		SITE_TAGLINE: os.Getenv("SITE_TAGLINE"),
		SITE_EMAIL:   os.Getenv("SITE_EMAIL"),
		SITE_PHONE:   os.Getenv("SITE_PHONE"),
	}

	return envVariables, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
