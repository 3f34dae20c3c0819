package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all composite service configuration.
type Config struct {
	Environment   string `mapstructure:"environment"`
	ServerAddress string `mapstructure:"server.address"`
	ServerPort    string `mapstructure:"server.port"`
	Integration   IntegrationConfig
	Azure         AzureConfig
	Auth          AuthConfig
	Tracing       TracingConfig
	Health        HealthConfig
}

// IntegrationConfig holds the downstream service addresses and the write
// transport selection.
type IntegrationConfig struct {
	Services map[string]string `mapstructure:"integration.services"`
	Timeout  time.Duration     `mapstructure:"integration.timeout"`
	// Transport selects how writes reach the core services: "direct" calls
	// them synchronously, "event" publishes to the queues and returns.
	Transport string `mapstructure:"integration.transport"`
}

// AzureConfig holds the event channel configuration, one queue per core
// service.
type AzureConfig struct {
	QueueConnStr        string `mapstructure:"azure.queue_conn_str"`
	ProductQueue        string `mapstructure:"azure.product_queue"`
	RecommendationQueue string `mapstructure:"azure.recommendation_queue"`
	ReviewQueue         string `mapstructure:"azure.review_queue"`
}

// AuthConfig holds the JWT scope-gating configuration. An empty secret
// disables authentication.
type AuthConfig struct {
	JWTSecret string `mapstructure:"auth.jwt_secret"`
}

// TracingConfig holds the New Relic configuration.
type TracingConfig struct {
	LicenseKey     string `mapstructure:"tracing.license_key"`
	AppName        string `mapstructure:"tracing.app_name"`
	LogEnabled     bool   `mapstructure:"tracing.log_enabled"`
	DistribTracing bool   `mapstructure:"tracing.distributed_tracing_enabled"`
}

// HealthConfig controls the background health snapshot refresh.
type HealthConfig struct {
	RefreshInterval time.Duration `mapstructure:"health.refresh_interval"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		// Continue with ENV vars and defaults when no file is present.
	}

	v.SetEnvPrefix("COMPOSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server.address", "0.0.0.0:7000")
	v.SetDefault("server.port", "7000")

	v.SetDefault("integration.services", map[string]string{
		"product":        "http://localhost:7001",
		"recommendation": "http://localhost:7002",
		"review":         "http://localhost:7003",
	})
	v.SetDefault("integration.timeout", "2s")
	v.SetDefault("integration.transport", "direct")

	v.SetDefault("azure.product_queue", "product-events")
	v.SetDefault("azure.recommendation_queue", "recommendation-events")
	v.SetDefault("azure.review_queue", "review-events")

	v.SetDefault("tracing.app_name", "Composite Service")
	v.SetDefault("tracing.log_enabled", true)
	v.SetDefault("tracing.distributed_tracing_enabled", true)

	v.SetDefault("health.refresh_interval", "10s")
}
