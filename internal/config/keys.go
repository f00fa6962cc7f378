package config

const (
	KeyAPIKey      = "marketstack_api_key"
	KeyBaseURL     = "marketstack_base_url"
	KeyHTTPTimeout = "http_timeout"
	KeyLogLevel    = "log_level"
	KeyTransport   = "transport"
	KeyHost        = "host"
	KeyPort        = "port"
	KeyEnvFile     = "env_file"
)
