package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DatabaseConfig holds postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// KafkaConfig holds kafka connection settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// ServiceConfig holds all configuration for the placement service.
type ServiceConfig struct {
	Port   string
	AppEnv string

	DBConfig    DatabaseConfig
	KafkaConfig KafkaConfig

	// OverstayAuthorisationRequired gates departures and extensions past
	// the maximum stay behind an explicit authorisation step.
	OverstayAuthorisationRequired bool
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	dbName := os.Getenv("PLACEMENT_DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("missing PLACEMENT_DB_NAME")
	}

	return &ServiceConfig{
		Port:   getEnv("PLACEMENT_SERVICE_PORT", ":8080"),
		AppEnv: getEnv("APP_ENV", "development"),
		DBConfig: DatabaseConfig{
			Host:     getEnv("PLACEMENT_DB_HOST", "localhost"),
			Port:     getEnv("PLACEMENT_DB_PORT", "5432"),
			User:     getEnv("PLACEMENT_DB_USER", "postgres"),
			Password: os.Getenv("PLACEMENT_DB_PASSWORD"),
			DBName:   dbName,
			SSLMode:  getEnv("PLACEMENT_DB_SSLMODE", "disable"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(getEnv("PLACEMENT_KAFKA_BROKERS", "localhost:9092"), ","),
			GroupPrefix: getEnv("PLACEMENT_KAFKA_GROUP_PREFIX", "havenpath."),
		},
		OverstayAuthorisationRequired: getEnv("PLACEMENT_OVERSTAY_AUTHORISATION_REQUIRED", "true") == "true",
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
