// Package config loads symcalc settings from defaults, an optional YAML
// file and SYMCALC_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/njchilds90/symcalc"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Engine EngineConfig `mapstructure:"engine" validate:"required"`
}

// ServerConfig configures the HTTP tool server and logging.
type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel     string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes" validate:"gt=0"`
	// Timeouts in seconds.
	ReadTimeout  int `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout int `mapstructure:"write_timeout" validate:"gt=0"`
	// RateLimit is tool calls per second across all clients; 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
	Burst     int     `mapstructure:"burst" validate:"gte=1"`
}

// EngineConfig mirrors symcalc.Config.
type EngineConfig struct {
	MaxUSubCount     int `mapstructure:"max_usub_count" validate:"gte=0,lte=10"`
	MaxByPartsCount  int `mapstructure:"max_by_parts_count" validate:"gte=0,lte=10"`
	MaxLHopitalCount int `mapstructure:"max_lhopital_count" validate:"gte=0,lte=10"`
	MaxDerivOrder    int `mapstructure:"max_deriv_order" validate:"gte=1,lte=20"`
	MaxLimitDepth    int `mapstructure:"max_limit_depth" validate:"gte=1,lte=256"`
	MaxCandidateSize int `mapstructure:"max_candidate_size" validate:"gte=1"`
}

// Symcalc converts the loaded settings into engine bounds.
func (e EngineConfig) Symcalc() symcalc.Config {
	return symcalc.Config{
		MaxUSubCount:     e.MaxUSubCount,
		MaxByPartsCount:  e.MaxByPartsCount,
		MaxLHopitalCount: e.MaxLHopitalCount,
		MaxDerivOrder:    e.MaxDerivOrder,
		MaxLimitDepth:    e.MaxLimitDepth,
		MaxCandidateSize: e.MaxCandidateSize,
	}
}

const envPrefix = "SYMCALC"

func setDefaults(v *viper.Viper) {
	d := symcalc.DefaultConfig()
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.burst", 20)
	v.SetDefault("engine.max_usub_count", d.MaxUSubCount)
	v.SetDefault("engine.max_by_parts_count", d.MaxByPartsCount)
	v.SetDefault("engine.max_lhopital_count", d.MaxLHopitalCount)
	v.SetDefault("engine.max_deriv_order", d.MaxDerivOrder)
	v.SetDefault("engine.max_limit_depth", d.MaxLimitDepth)
	v.SetDefault("engine.max_candidate_size", d.MaxCandidateSize)
}

// Load reads configuration. path may be empty; when set, the file must
// exist. Environment variables such as SYMCALC_SERVER_PORT take precedence
// over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and reports every failing field.
func Validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
