package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`

	Downloads struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"downloads"`

	Worker struct {
		Concurrency int           `mapstructure:"concurrency"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"worker"`

	Preview struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"preview"`

	Agent struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
		Model   string `mapstructure:"model"`
	} `mapstructure:"agent"`

	Retention struct {
		TTL      time.Duration `mapstructure:"ttl"`
		Schedule string        `mapstructure:"schedule"`
	} `mapstructure:"retention"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("server.addr", "0.0.0.0")
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("downloads.dir", "./downloads")
	viper.SetDefault("worker.concurrency", 3)
	viper.SetDefault("worker.timeout", 5*time.Minute)
	viper.SetDefault("preview.timeout", 5*time.Second)
	viper.SetDefault("agent.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("agent.model", "llama-3.3-70b-versatile")
	viper.SetDefault("retention.ttl", 24*time.Hour)
	viper.SetDefault("retention.schedule", "@every 1h")

	viper.AutomaticEnv()
	// The Groq key is conventionally set via this env var, so bind it
	// explicitly instead of requiring a prefixed name.
	viper.BindEnv("agent.api_key", "GROQ_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults and env vars carry it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
