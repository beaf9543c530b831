package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is the config file read by Load when present
const DefaultPath = "config.yaml"

// Upper bounds on options returned per search.
const (
	MaxFlightLimit = 3
	MaxHotelLimit  = 5
)

// Config aggregates all application configuration
type Config struct {
	AI      AIConfig      `yaml:"ai"`
	Amadeus AmadeusConfig `yaml:"amadeus"`
	Session SessionConfig `yaml:"session"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

type AIConfig struct {
	// Plugin selects the LLM backend: gemini, ollama or none (tools only)
	Plugin string       `yaml:"plugin" env:"AI_PLUGIN" env-default:"gemini"`
	Gemini GeminiConfig `yaml:"gemini"`
	Ollama OllamaConfig `yaml:"ollama"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
}

type OllamaConfig struct {
	Model   string `yaml:"model" env:"OLLAMA_MODEL" env-default:"qwen3:4b"`
	BaseURL string `yaml:"base_url" env:"OLLAMA_BASE_URL" env-default:"http://localhost:11434"`
}

// AmadeusConfig carries the credentials and knobs for the Amadeus self-service APIs.
// It is constructed once per session and handed to the client explicitly.
type AmadeusConfig struct {
	ClientID     string `yaml:"client_id" env:"AMADEUS_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"AMADEUS_CLIENT_SECRET"`
	// BaseURL overrides the test/production host, mostly for stubs.
	BaseURL    string `yaml:"base_url" env:"AMADEUS_BASE_URL"`
	Production bool   `yaml:"production" env:"AMADEUS_PRODUCTION" env-default:"false"`
	// TimeoutSeconds bounds every outbound call; 0 disables the timeout.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"AMADEUS_TIMEOUT_SECONDS" env-default:"30"`
	// CacheToken reuses the access token until shortly before it expires.
	// Off by default: every search performs a fresh client-credentials exchange.
	CacheToken  bool `yaml:"cache_token" env:"AMADEUS_CACHE_TOKEN" env-default:"false"`
	FlightLimit int  `yaml:"flight_limit" env:"AMADEUS_FLIGHT_LIMIT" env-default:"3"`
	HotelLimit  int  `yaml:"hotel_limit" env:"AMADEUS_HOTEL_LIMIT" env-default:"5"`
}

type SessionConfig struct {
	DSN string `yaml:"dsn" env:"SESSION_DSN" env-default:"file::memory:?cache=shared"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT" env-default:"8000"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from config.yaml and environment variables
// Priority: Env Vars > Config File > Defaults
func Load() (*Config, error) {
	return LoadFrom(DefaultPath)
}

// LoadFrom is Load with an explicit config file path. A missing or unreadable
// file falls back to environment variables only.
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values that would make the clients misbehave
func (c *Config) Validate() error {
	switch c.AI.Plugin {
	case "gemini", "ollama", "none":
	default:
		return fmt.Errorf("unknown AI plugin %q (want gemini, ollama or none)", c.AI.Plugin)
	}
	if c.Amadeus.TimeoutSeconds < 0 {
		return fmt.Errorf("amadeus timeout must not be negative, got %d", c.Amadeus.TimeoutSeconds)
	}
	if c.Amadeus.FlightLimit <= 0 || c.Amadeus.HotelLimit <= 0 {
		return fmt.Errorf("amadeus result limits must be positive (flight=%d, hotel=%d)",
			c.Amadeus.FlightLimit, c.Amadeus.HotelLimit)
	}
	if c.Amadeus.FlightLimit > MaxFlightLimit {
		return fmt.Errorf("amadeus flight limit must be at most %d, got %d", MaxFlightLimit, c.Amadeus.FlightLimit)
	}
	if c.Amadeus.HotelLimit > MaxHotelLimit {
		return fmt.Errorf("amadeus hotel limit must be at most %d, got %d", MaxHotelLimit, c.Amadeus.HotelLimit)
	}
	return nil
}

// HasCredentials reports whether both halves of the client-credentials pair are set
func (a AmadeusConfig) HasCredentials() bool {
	return a.ClientID != "" && a.ClientSecret != ""
}
