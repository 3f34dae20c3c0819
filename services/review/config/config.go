package config

import (
	"os"
	"strconv"
)

// Config holds the review service configuration.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	ServiceBus    ServiceBusConfig
	Elasticsearch ElasticsearchConfig
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ServiceBusConfig holds the event channel configuration.
type ServiceBusConfig struct {
	ConnectionString string
	QueueName        string
}

// ElasticsearchConfig holds the Elasticsearch configuration.
type ElasticsearchConfig struct {
	URLs     []string
	Username string
	Password string
	Index    string
	Enabled  bool
}

// Load loads the configuration from environment variables.
func Load() (*Config, error) {
	port, _ := strconv.Atoi(getEnv("PORT", "7003"))
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	esEnabled, _ := strconv.ParseBool(getEnv("ES_ENABLED", "false"))

	return &Config{
		Server: ServerConfig{
			Port: port,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "review_db"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		ServiceBus: ServiceBusConfig{
			ConnectionString: getEnv("SERVICEBUS_CONNECTION_STRING", ""),
			QueueName:        getEnv("SERVICEBUS_QUEUE_NAME", "review-events"),
		},
		Elasticsearch: ElasticsearchConfig{
			URLs:     []string{getEnv("ES_URL", "http://localhost:9200")},
			Username: getEnv("ES_USERNAME", ""),
			Password: getEnv("ES_PASSWORD", ""),
			Index:    getEnv("ES_INDEX", "reviews"),
			Enabled:  esEnabled,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
