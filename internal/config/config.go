package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// CSV parse modes accepted by CSV_PARSE_MODE.
const (
	CSVModeStrict     = "strict"
	CSVModePermissive = "permissive"
)

// Issuer do serviço de automação de chamadas (RS256, opcional).
const AutomationIssuer = "engage-call-automation"

// Config holds all application configuration
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"production"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// Database (obrigatório com STORE_DRIVER=postgres)
	DatabaseURL string `env:"DATABASE_URL"`

	// Redis; vazio desliga o rate limit
	RedisURL string `env:"REDIS_URL"`

	// JWT
	JWTHS256Secret         string `env:"JWT_HS256_SECRET,required"` // Base64
	JWTAllowedIssuers      string `env:"JWT_ALLOWED_ISSUERS" envDefault:"engage-web"`
	JWTAudience            string `env:"JWT_AUDIENCE,required"`
	JWTClockSkewSeconds    int    `env:"JWT_CLOCK_SKEW_SECONDS" envDefault:"60"`
	JWTPublicKeyAutomation string `env:"JWT_PUBLIC_KEY_AUTOMATION_V1"` // PEM, RS256
	S2STokenWeb            string `env:"S2S_TOKEN_WEB"`
	S2STokenCallAutomation string `env:"S2S_TOKEN_CALL_AUTOMATION"`

	// OpenTelemetry (opt-in)
	OTELEnabled          bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELExporterEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELServiceName      string  `env:"OTEL_SERVICE_NAME" envDefault:"engage-api"`
	OTELSamplingRatio    float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"0.1"`

	// Server
	Port         string `env:"PORT" envDefault:"3002"`
	MetricsToken string `env:"METRICS_TOKEN"`

	// Logging
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile      string `env:"LOG_FILE"`
	LogFileMaxMB int    `env:"LOG_FILE_MAX_MB" envDefault:"100"`

	RateLimitPerCompanyPerMin int `env:"RATE_LIMIT_PER_COMPANY_PER_MIN" envDefault:"100"`

	// JSON com company members carregado no boot (útil com STORE_DRIVER=memory)
	MemberSeedFile string `env:"MEMBER_SEED_FILE"`

	// Lead import
	CSVParseMode      string `env:"CSV_PARSE_MODE" envDefault:"permissive"`
	CSVMaxUploadBytes int64  `env:"CSV_MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

// LoadConfig reads an optional .env file (ENV_FILE overrides the path) and
// then parses the environment. Variables already set win over the file.
func LoadConfig() (*Config, error) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver)
	}

	if c.JWTHS256Secret == "" {
		return fmt.Errorf("JWT_HS256_SECRET is required")
	}
	if len(c.GetAllowedIssuers()) == 0 {
		return fmt.Errorf("JWT_ALLOWED_ISSUERS must contain at least one valid issuer")
	}
	if c.JWTAudience == "" {
		return fmt.Errorf("JWT_AUDIENCE is required")
	}
	if c.JWTClockSkewSeconds < 0 {
		return fmt.Errorf("JWT_CLOCK_SKEW_SECONDS must be non-negative")
	}

	if c.OTELSamplingRatio < 0 || c.OTELSamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be between 0 and 1")
	}

	if c.RateLimitPerCompanyPerMin <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_COMPANY_PER_MIN must be positive")
	}

	c.CSVParseMode = strings.ToLower(strings.TrimSpace(c.CSVParseMode))
	if c.CSVParseMode != CSVModeStrict && c.CSVParseMode != CSVModePermissive {
		return fmt.Errorf("CSV_PARSE_MODE must be %q or %q", CSVModeStrict, CSVModePermissive)
	}
	if c.CSVMaxUploadBytes <= 0 {
		return fmt.Errorf("CSV_MAX_UPLOAD_BYTES must be positive")
	}

	return nil
}

// IsDev reports whether debug endpoints and error ids are enabled.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}

// TelemetryEnabled: OTLP só liga com OTEL_ENABLED e endpoint definido.
func (c *Config) TelemetryEnabled() bool {
	return c.OTELEnabled && c.OTELExporterEndpoint != ""
}

// GetAllowedIssuers returns the list of allowed JWT issuers
func (c *Config) GetAllowedIssuers() []string {
	issuers := strings.Split(c.JWTAllowedIssuers, ",")
	result := make([]string, 0, len(issuers))
	for _, issuer := range issuers {
		if trimmed := strings.TrimSpace(issuer); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
