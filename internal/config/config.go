package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	S3           S3Config
	Log          LogConfig
	Parser       ParserConfig
	Extraction   ExtractionConfig
	PDF          PDFConfig
	Orchestrator OrchestratorConfig
	CORS         CORSConfig
	Auth         AuthConfig
	Alerts       AlertsConfig
}

// AlertsConfig holds settings for model-output drift alerts.
type AlertsConfig struct {
	Provider    string   `mapstructure:"provider"`
	Region      string   `mapstructure:"region"`
	FromAddress string   `mapstructure:"from_address"`
	FromName    string   `mapstructure:"from_name"`
	Recipients  []string `mapstructure:"recipients"`
}

// AuthConfig holds bearer token settings. An empty secret disables authentication.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// Enabled reports whether bearer authentication should be enforced.
func (a *AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OrchestratorConfig holds the external processing endpoint that receives stored object keys.
type OrchestratorConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// ExtractionConfig controls the invoice normalizer.
type ExtractionConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
	JSONMode    bool    `mapstructure:"json_mode"`
	SchemaCheck bool    `mapstructure:"schema_check"`
}

// Timeout returns the upper bound for a single completion call.
func (e *ExtractionConfig) Timeout() time.Duration {
	if e.TimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(e.TimeoutSecs) * time.Second
}

// PDFConfig controls text extraction from uploaded PDFs.
type PDFConfig struct {
	MinTextChars  int    `mapstructure:"min_text_chars"`
	PdftotextPath string `mapstructure:"pdftotext_path"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// ParserProviderConfig holds settings for a single LLM completion provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds completion provider settings with multi-provider support.
type ParserConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &ParserProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	UploadPrefix  string `mapstructure:"upload_prefix"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the FACTURAS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FACTURAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.environment", "development")

	// S3 defaults
	v.SetDefault("s3.region", "eu-south-2")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.upload_prefix", "uploads/")
	v.SetDefault("s3.presign_expiry", 300)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "*")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "facturas")

	// Extraction defaults
	v.SetDefault("extraction.temperature", 0.1)
	v.SetDefault("extraction.timeout_secs", 60)
	v.SetDefault("extraction.json_mode", true)
	v.SetDefault("extraction.schema_check", true)

	// PDF defaults
	v.SetDefault("pdf.min_text_chars", 100)
	v.SetDefault("pdf.pdftotext_path", "pdftotext")
	v.SetDefault("pdf.max_file_size_mb", 20)

	v.SetDefault("orchestrator.endpoint", "")
	v.SetDefault("orchestrator.timeout_secs", 90)

	// Alert defaults
	v.SetDefault("alerts.provider", "noop")
	v.SetDefault("alerts.region", "eu-south-2")
	v.SetDefault("alerts.from_address", "noreply@facturas.local")
	v.SetDefault("alerts.from_name", "Facturas")
	v.SetDefault("alerts.recipients", "")

	// Parser defaults (legacy flat)
	v.SetDefault("parser.provider", "openai")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "gpt-3.5-turbo")
	v.SetDefault("parser.timeout_secs", 60)

	// Parser primary/secondary defaults
	v.SetDefault("parser.primary.provider", "")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "")
	v.SetDefault("parser.primary.timeout_secs", 60)
	v.SetDefault("parser.secondary.provider", "")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.default_model", "")
	v.SetDefault("parser.secondary.timeout_secs", 60)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "FACTURAS_SERVER_PORT",
		"server.read_timeout":            "FACTURAS_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "FACTURAS_SERVER_WRITE_TIMEOUT",
		"server.environment":             "FACTURAS_SERVER_ENVIRONMENT",
		"s3.region":                      "FACTURAS_S3_REGION",
		"s3.bucket":                      "FACTURAS_S3_BUCKET",
		"s3.endpoint":                    "FACTURAS_S3_ENDPOINT",
		"s3.access_key":                  "FACTURAS_S3_ACCESS_KEY",
		"s3.secret_key":                  "FACTURAS_S3_SECRET_KEY",
		"s3.upload_prefix":               "FACTURAS_S3_UPLOAD_PREFIX",
		"s3.presign_expiry":              "FACTURAS_S3_PRESIGN_EXPIRY",
		"log.level":                      "FACTURAS_LOG_LEVEL",
		"log.format":                     "FACTURAS_LOG_FORMAT",
		"cors.allowed_origins":           "FACTURAS_CORS_ALLOWED_ORIGINS",
		"auth.jwt_secret":                "FACTURAS_AUTH_JWT_SECRET",
		"auth.issuer":                    "FACTURAS_AUTH_ISSUER",
		"extraction.temperature":         "FACTURAS_EXTRACTION_TEMPERATURE",
		"extraction.timeout_secs":        "FACTURAS_EXTRACTION_TIMEOUT_SECS",
		"extraction.json_mode":           "FACTURAS_EXTRACTION_JSON_MODE",
		"extraction.schema_check":        "FACTURAS_EXTRACTION_SCHEMA_CHECK",
		"pdf.min_text_chars":             "FACTURAS_PDF_MIN_TEXT_CHARS",
		"pdf.pdftotext_path":             "FACTURAS_PDF_PDFTOTEXT_PATH",
		"pdf.max_file_size_mb":           "FACTURAS_PDF_MAX_FILE_SIZE_MB",
		"orchestrator.endpoint":          "FACTURAS_ORCHESTRATOR_ENDPOINT",
		"orchestrator.timeout_secs":      "FACTURAS_ORCHESTRATOR_TIMEOUT_SECS",
		"alerts.provider":                "FACTURAS_ALERTS_PROVIDER",
		"alerts.region":                  "FACTURAS_ALERTS_REGION",
		"alerts.from_address":            "FACTURAS_ALERTS_FROM_ADDRESS",
		"alerts.from_name":               "FACTURAS_ALERTS_FROM_NAME",
		"alerts.recipients":              "FACTURAS_ALERTS_RECIPIENTS",
		"parser.provider":                "FACTURAS_PARSER_PROVIDER",
		"parser.api_key":                 "FACTURAS_PARSER_API_KEY",
		"parser.default_model":           "FACTURAS_PARSER_DEFAULT_MODEL",
		"parser.timeout_secs":            "FACTURAS_PARSER_TIMEOUT_SECS",
		"parser.primary.provider":        "FACTURAS_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":         "FACTURAS_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":   "FACTURAS_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.timeout_secs":    "FACTURAS_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":      "FACTURAS_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "FACTURAS_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "FACTURAS_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.timeout_secs":  "FACTURAS_PARSER_SECONDARY_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if FACTURAS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FACTURAS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		UploadPrefix:  v.GetString("s3.upload_prefix"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("auth.jwt_secret"),
		Issuer:    v.GetString("auth.issuer"),
	}
	cfg.Extraction = ExtractionConfig{
		Temperature: v.GetFloat64("extraction.temperature"),
		TimeoutSecs: v.GetInt("extraction.timeout_secs"),
		JSONMode:    v.GetBool("extraction.json_mode"),
		SchemaCheck: v.GetBool("extraction.schema_check"),
	}
	cfg.PDF = PDFConfig{
		MinTextChars:  v.GetInt("pdf.min_text_chars"),
		PdftotextPath: v.GetString("pdf.pdftotext_path"),
		MaxFileSizeMB: v.GetInt64("pdf.max_file_size_mb"),
	}
	cfg.Orchestrator = OrchestratorConfig{
		Endpoint:    v.GetString("orchestrator.endpoint"),
		TimeoutSecs: v.GetInt("orchestrator.timeout_secs"),
	}
	cfg.Alerts = AlertsConfig{
		Provider:    v.GetString("alerts.provider"),
		Region:      v.GetString("alerts.region"),
		FromAddress: v.GetString("alerts.from_address"),
		FromName:    v.GetString("alerts.from_name"),
		Recipients:  splitList(v.GetString("alerts.recipients")),
	}

	cfg.Parser = ParserConfig{
		Provider:     v.GetString("parser.provider"),
		APIKey:       v.GetString("parser.api_key"),
		DefaultModel: v.GetString("parser.default_model"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
		Primary: ParserProviderConfig{
			Provider:     v.GetString("parser.primary.provider"),
			APIKey:       v.GetString("parser.primary.api_key"),
			DefaultModel: v.GetString("parser.primary.default_model"),
			TimeoutSecs:  v.GetInt("parser.primary.timeout_secs"),
		},
		Secondary: ParserProviderConfig{
			Provider:     v.GetString("parser.secondary.provider"),
			APIKey:       v.GetString("parser.secondary.api_key"),
			DefaultModel: v.GetString("parser.secondary.default_model"),
			TimeoutSecs:  v.GetInt("parser.secondary.timeout_secs"),
		},
	}
	// The OpenAI SDKs read OPENAI_API_KEY; honour it when nothing more specific is set.
	if cfg.Parser.APIKey == "" && cfg.Parser.Provider == "openai" {
		cfg.Parser.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Extraction.Temperature < 0 || c.Extraction.Temperature > 2 {
		return fmt.Errorf("extraction.temperature must be between 0 and 2, got %v", c.Extraction.Temperature)
	}
	if c.PDF.MaxFileSizeMB <= 0 {
		return fmt.Errorf("pdf.max_file_size_mb must be positive, got %d", c.PDF.MaxFileSizeMB)
	}
	if c.Alerts.Provider != "noop" && c.Alerts.Provider != "ses" {
		return fmt.Errorf("alerts.provider must be noop or ses, got %q", c.Alerts.Provider)
	}
	return nil
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
