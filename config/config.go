package config

import (
	"crypto/tls"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port int `toml:"port"`
}

type DemoConfig struct {
	Email           string `toml:"email"`
	Password        string `toml:"password"`
	DashboardPath   string `toml:"dashboard_path"`
	NavigateDelayMs int    `toml:"navigate_delay_ms"`
}

type AIConfig struct {
	APIURL         string `toml:"api_url"`
	APIKey         string `toml:"api_key"` // falls back to GROQ_API_KEY env var
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxHistory     int    `toml:"max_history"` // history messages forwarded per request
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

type SSLConfig struct {
	Enabled  bool   `toml:"enabled"`
	CertFile string `toml:"cert_file"` // Path to fullchain.pem
	KeyFile  string `toml:"key_file"`  // Path to privkey.pem
	Port     int    `toml:"port"`      // HTTPS port (default 443)
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Demo    DemoConfig    `toml:"demo"`
	AI      AIConfig      `toml:"ai"`
	Storage StorageConfig `toml:"storage"`
	SSL     SSLConfig     `toml:"ssl"`
}

func LoadConfig(filepath string) (*Config, error) {
	var config Config

	// Set default values
	config.Server.Port = 8000
	config.Demo.Email = "demo@aromi.health"
	config.Demo.Password = "wellness123"
	config.Demo.DashboardPath = "/dashboard"
	config.Demo.NavigateDelayMs = 200
	config.AI.APIURL = "https://api.groq.com/openai/v1/chat/completions"
	config.AI.Model = "llama-3.3-70b-versatile"
	config.AI.TimeoutSeconds = 30
	config.AI.MaxHistory = 5
	config.Storage.DataDir = "./data"
	config.SSL.Port = 443

	// Load config file
	_, err := toml.DecodeFile(filepath, &config)
	if err != nil {
		return nil, err
	}

	// The API key is optional; the chat handler degrades gracefully
	// when it is absent.
	if config.AI.APIKey == "" {
		config.AI.APIKey = os.Getenv("GROQ_API_KEY")
	}

	// Validate SSL configuration if enabled
	if config.SSL.Enabled {
		if err := config.ValidateSSL(); err != nil {
			return nil, fmt.Errorf("SSL configuration error: %w", err)
		}
	}

	return &config, nil
}

// ValidateSSL checks if the SSL configuration is valid
func (c *Config) ValidateSSL() error {
	if !c.SSL.Enabled {
		return nil
	}

	if c.SSL.CertFile == "" {
		return fmt.Errorf("SSL certificate file path is required")
	}

	if c.SSL.KeyFile == "" {
		return fmt.Errorf("SSL key file path is required")
	}

	// Try loading the certificates to verify they're valid
	_, err := tls.LoadX509KeyPair(c.SSL.CertFile, c.SSL.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load SSL certificates: %w", err)
	}

	return nil
}
