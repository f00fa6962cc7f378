package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Load when no MarketStack access key is configured.
var ErrMissingAPIKey = errors.New("MARKETSTACK_API_KEY environment variable is not set")

// flagKeys maps persistent flag names to their viper keys.
var flagKeys = map[string]string{
	"api-key":      KeyAPIKey,
	"base-url":     KeyBaseURL,
	"http-timeout": KeyHTTPTimeout,
	"log-level":    KeyLogLevel,
	"transport":    KeyTransport,
	"host":         KeyHost,
	"port":         KeyPort,
	"env-file":     KeyEnvFile,
}

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(".env")
	if root != nil {
		for name, key := range flagKeys {
			if flag := root.PersistentFlags().Lookup(name); flag != nil {
				_ = viper.BindPFlag(key, flag)
			}
		}
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyBaseURL, "https://api.marketstack.com/v2")
	viper.SetDefault(KeyHTTPTimeout, "30s")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyTransport, "stdio")
	viper.SetDefault(KeyHost, "127.0.0.1")
	viper.SetDefault(KeyPort, 8000)
}

func APIKey() string      { return strings.TrimSpace(viper.GetString(KeyAPIKey)) }
func BaseURL() string     { return viper.GetString(KeyBaseURL) }
func HTTPTimeout() string { return viper.GetString(KeyHTTPTimeout) }
func LogLevel() string    { return viper.GetString(KeyLogLevel) }
func Transport() string   { return viper.GetString(KeyTransport) }
func Host() string        { return viper.GetString(KeyHost) }
func Port() int           { return viper.GetInt(KeyPort) }
func EnvFile() string     { return viper.GetString(KeyEnvFile) }

// Settings is the process-wide configuration handed to the server at startup.
type Settings struct {
	APIKey      string
	BaseURL     string
	HTTPTimeout time.Duration
	LogLevel    string
	Transport   string
	Host        string
	Port        int
}

// Addr returns the listen address used by the HTTP transport.
func (s Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func Load() (Settings, error) {
	if path := EnvFile(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return Settings{}, fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	cfg := Settings{
		APIKey:    APIKey(),
		BaseURL:   strings.TrimRight(BaseURL(), "/"),
		LogLevel:  strings.ToLower(LogLevel()),
		Transport: strings.ToLower(Transport()),
		Host:      Host(),
		Port:      Port(),
	}
	if cfg.APIKey == "" {
		return Settings{}, ErrMissingAPIKey
	}

	timeout, err := parseDuration(HTTPTimeout(), 30*time.Second)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid http_timeout: %w", err)
	}
	cfg.HTTPTimeout = timeout

	switch cfg.Transport {
	case "stdio", "http":
	default:
		return Settings{}, fmt.Errorf("unsupported transport %q (want stdio or http)", cfg.Transport)
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	return d, nil
}
