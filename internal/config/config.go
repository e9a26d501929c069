/**
 * @description
 * Configuration management for the entitlement service. Uses viper to load
 * settings from environment variables.
 */
package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort      string `mapstructure:"SERVER_PORT"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	JWKSURL         string `mapstructure:"JWKS_URL"`
	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeAPIURL    string `mapstructure:"STRIPE_API_URL"`
	RabbitMQURL     string `mapstructure:"RABBITMQ_URL"`
	SiteURL         string `mapstructure:"SITE_URL"`
	CodeTTLMinutes  int    `mapstructure:"VERIFICATION_CODE_TTL_MINUTES"`
	MaxSendsPerHour int    `mapstructure:"VERIFICATION_MAX_SENDS_PER_HOUR"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8086")
	viper.SetDefault("VERIFICATION_CODE_TTL_MINUTES", 10)
	viper.SetDefault("VERIFICATION_MAX_SENDS_PER_HOUR", 5)
	viper.AutomaticEnv()

	// Bind environment variables explicitly so they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("JWKS_URL")
	_ = viper.BindEnv("STRIPE_SECRET_KEY")
	_ = viper.BindEnv("STRIPE_API_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SITE_URL")
	_ = viper.BindEnv("VERIFICATION_CODE_TTL_MINUTES")
	_ = viper.BindEnv("VERIFICATION_MAX_SENDS_PER_HOUR")

	err = viper.Unmarshal(&config)
	return
}
