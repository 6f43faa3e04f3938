package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

/*
	{
	"redis": {
		"addr": "localhost:6379",
		"db": 0
	},
	"cors": { "allowed_origins": ["*"] },
	"log": { "level": "debug" },
	"services": {
		"userservice": { "ports": [3001], "url": "http://localhost:3001" },
		"roomservice": { "ports": [3002], "url": "http://localhost:3002" },
		"gameservice": { "ports": [3003], "url": "http://localhost:3003", "ws_url": "ws://localhost:3003/ws" }
	}
	}
*/

type Service struct {
	Ports []int  `json:"ports,omitempty"`
	URL   string `json:"url,omitempty"`
	WSURL string `json:"ws_url,omitempty"`
}

type Config struct {
	Redis struct {
		Addr string `json:"addr"`
		DB   int    `json:"db"`
	} `json:"redis"`
	Postgres struct {
		User     string `json:"user"`
		Password string `json:"password"`
		DBName   string `json:"dbname"`
		Host     string `json:"host"`
		Port     string `json:"port"`
	} `json:"postgres"`
	Cors struct {
		AllowedOrigins []string `json:"allowed_origins"`
	} `json:"cors"`
	Log struct {
		Level string `json:"level"`
	} `json:"log"`
	Services map[string]Service `json:"services"`
}

// Global config instance
var Cfg Config

// LoadConfig reads the file named by CONFIG_PATH into Cfg. Services can't run
// without it, so every failure is fatal.
func LoadConfig() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("[config.go] - CONFIG_PATH not set")
	}
	cfg, err := ReadConfig(configPath)
	if err != nil {
		log.Fatalf("[config.go] - %v", err)
	}
	Cfg = *cfg
}

func ReadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding JSON: %w", err)
	}
	if cfg.Services == nil {
		cfg.Services = make(map[string]Service)
	}
	return &cfg, nil
}

// Port returns the first configured port of a service, or fallback.
func (c *Config) Port(service string, fallback int) int {
	if s, ok := c.Services[service]; ok && len(s.Ports) > 0 {
		return s.Ports[0]
	}
	return fallback
}

func (c *Config) URL(service, fallback string) string {
	if s, ok := c.Services[service]; ok && s.URL != "" {
		return s.URL
	}
	return fallback
}

func (c *Config) PostgresEnabled() bool {
	return c.Postgres.Host != "" && c.Postgres.DBName != ""
}

func (c *Config) WSURL(service, fallback string) string {
	if s, ok := c.Services[service]; ok && s.WSURL != "" {
		return s.WSURL
	}
	return fallback
}
