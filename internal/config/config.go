package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Rules       RulesConfig       `mapstructure:"rules"`
	Schema      SchemaConfig      `mapstructure:"schema"`
	Remediation RemediationConfig `mapstructure:"remediation"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RulesConfig locates the declarative rule documents. All three files must
// exist at startup; a missing file is a fatal configuration error.
type RulesConfig struct {
	BasePath        string `mapstructure:"base_path" validate:"required"`
	OverlayPath     string `mapstructure:"overlay_path" validate:"required"`
	ReasonCodesPath string `mapstructure:"reason_codes_path" validate:"required"`
}

// SchemaConfig configures the structural schema-validation collaborator.
// An empty endpoint disables schema validation entirely.
type SchemaConfig struct {
	Endpoint  string        `mapstructure:"endpoint" validate:"omitempty,url"`
	SchemaRef string        `mapstructure:"schema_ref"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RemediationConfig configures the remediation-text collaborator. An empty
// endpoint disables AI suggestion sections.
type RemediationConfig struct {
	Endpoint string        `mapstructure:"endpoint" validate:"omitempty,url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from the given file (or the default search path
// when path is empty), applies environment overrides, and validates the
// result.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file on the default search path falls back to
		// defaults; an explicitly named file must exist.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("rules.base_path", "configs/rules.yaml")
	v.SetDefault("rules.overlay_path", "configs/sr2026.yaml")
	v.SetDefault("rules.reason_codes_path", "configs/reason_codes.yaml")

	v.SetDefault("schema.endpoint", "")
	v.SetDefault("schema.schema_ref", "CBPRPlus_SR2026_pacs.008.001.08")
	v.SetDefault("schema.timeout", "10s")

	v.SetDefault("remediation.endpoint", "")
	v.SetDefault("remediation.timeout", "30s")
}
