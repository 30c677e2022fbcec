package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Dispatch DispatchConfig
	Channel  ChannelConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// DispatchConfig holds delivery and scheduler tuning
type DispatchConfig struct {
	SchedulerIntervalSeconds int
	ValidationTimeoutSeconds int
	SendTimeoutSeconds       int
	DefaultMinDelay          int
	DefaultMaxDelay          int
}

// ChannelConfig holds messaging-channel configuration
type ChannelConfig struct {
	Mock bool
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, environment variables suffice
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", GetEnv("PORT", "4000"))
	viper.SetDefault("Server.AllowedHosts", GetEnvAsSlice("ALLOWED_HOSTS", ",", []string{"localhost:3000"}))
	viper.SetDefault("MongoDB.URI", GetEnv("MONGODB_URI", "mongodb://localhost:27017"))
	viper.SetDefault("MongoDB.Database", "zagel")
	viper.SetDefault("JWT.Secret", GetEnv("JWT_SECRET", ""))
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("LogLevel", GetEnv("LOG_LEVEL", "info"))
	viper.SetDefault("Dispatch.SchedulerIntervalSeconds", GetEnvAsInt("SCHEDULER_INTERVAL", 30))
	viper.SetDefault("Dispatch.ValidationTimeoutSeconds", 15)
	viper.SetDefault("Dispatch.SendTimeoutSeconds", 40)
	viper.SetDefault("Dispatch.DefaultMinDelay", 3)
	viper.SetDefault("Dispatch.DefaultMaxDelay", 8)
	viper.SetDefault("Channel.Mock", GetEnvAsBool("MOCK_CHANNEL", true))
}
