package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort int

	DBConfig struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	MigrationsURL string

	KafkaBrokerURL           string
	KafkaActivityEventsTopic string

	OutboxPollInterval time.Duration
	OutboxPollTimeout  time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPPort = getEnvAsInt("P2P_HTTP_PORT", 8080)

	cfg.DBConfig.Host = getEnvOrDefault("P2P_DB_HOST", "localhost")
	cfg.DBConfig.Port = getEnvAsInt("P2P_DB_PORT", 5432)
	cfg.DBConfig.User = getEnvOrDefault("P2P_DB_USER", "user")
	cfg.DBConfig.Password = getEnvOrDefault("P2P_DB_PASSWORD", "password")
	cfg.DBConfig.Name = getEnvOrDefault("P2P_DB_NAME", "p2p_db")
	cfg.DBConfig.SSLMode = getEnvOrDefault("P2P_DB_SSLMODE", "disable")

	cfg.MigrationsURL = getEnvOrDefault("P2P_MIGRATIONS_URL", "file://migrations")

	cfg.KafkaBrokerURL = getEnvOrDefault("KAFKA_BROKER_URL", "localhost:9092")
	cfg.KafkaActivityEventsTopic = getEnvOrDefault("KAFKA_ACTIVITY_EVENTS_TOPIC", "activity_events")

	cfg.OutboxPollInterval = getEnvAsDuration("OUTBOX_POLL_INTERVAL", 1*time.Second)
	cfg.OutboxPollTimeout = getEnvAsDuration("OUTBOX_POLL_TIMEOUT", 500*time.Millisecond)

	return cfg, nil
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetKafkaBrokers() []string {
	return strings.Split(c.KafkaBrokerURL, ",")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvOrDefault(key, strconv.Itoa(defaultValue))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnvOrDefault(key, defaultValue.String())
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
