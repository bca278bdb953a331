package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	JWT struct {
		Secret         string `yaml:"secret"`
		AccessTTLHours int    `yaml:"access_ttl_hours"`
		RefreshTTLDays int    `yaml:"refresh_ttl_days"`
	} `yaml:"jwt"`
	Firebase struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firebase"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

func (c Config) AccessTTL() time.Duration {
	hours := c.JWT.AccessTTLHours
	if hours == 0 {
		hours = 20
	}
	return time.Duration(hours) * time.Hour
}

func (c Config) RefreshTTL() time.Duration {
	days := c.JWT.RefreshTTLDays
	if days == 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}
	return cfg
}
