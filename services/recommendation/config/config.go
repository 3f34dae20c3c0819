package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all recommendation service configuration.
type Config struct {
	Environment   string `mapstructure:"environment"`
	ServerAddress string `mapstructure:"server.address"`
	ServerPort    string `mapstructure:"server.port"`
	Redis         RedisConfig
	Azure         AzureConfig
}

// RedisConfig holds the keyed-store engine configuration.
type RedisConfig struct {
	Host     string `mapstructure:"redis.host"`
	Port     int    `mapstructure:"redis.port"`
	Password string `mapstructure:"redis.password"`
	DB       int    `mapstructure:"redis.db"`
}

// AzureConfig holds the event channel configuration.
type AzureConfig struct {
	QueueConnStr string `mapstructure:"azure.queue_conn_str"`
	QueueName    string `mapstructure:"azure.queue_name"`
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

	v.SetEnvPrefix("RECOMMENDATION")
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
	v.SetDefault("server.address", "0.0.0.0:7002")
	v.SetDefault("server.port", "7002")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("azure.queue_name", "recommendation-events")
}
