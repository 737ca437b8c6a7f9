// Package config loads netbuilder settings from defaults, an optional YAML
// file and NETBUILDER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dd0wney/cluso-netbuilder/pkg/auth"
	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
	"github.com/dd0wney/cluso-netbuilder/pkg/specification"
	"github.com/dd0wney/cluso-netbuilder/pkg/validation"
)

// EnvPrefix is prepended to every environment override, e.g.
// NETBUILDER_SERVER_ADDR for server.addr.
const EnvPrefix = "NETBUILDER"

// Config holds all application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Broadcast BroadcastConfig `mapstructure:"broadcast" yaml:"broadcast"`
	Tracing   TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
	Editor    EditorConfig    `mapstructure:"editor" yaml:"editor"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	// SessionSecret signs session tokens. Empty disables token checks.
	SessionSecret string        `mapstructure:"session_secret" yaml:"session_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	// CORSOrigins lists browser origins allowed to call the API; "*" allows any.
	CORSOrigins  []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	MaxBodyBytes int64    `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

type BroadcastConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Compress bool   `mapstructure:"compress" yaml:"compress"`
}

type TracingConfig struct {
	// Endpoint is the OTLP gRPC collector; empty disables export.
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`
	ServiceName string  `mapstructure:"service_name" yaml:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
}

type EditorConfig struct {
	// Seed starts new sessions from X0 -> X1 -> X2 instead of an empty network.
	Seed bool `mapstructure:"seed" yaml:"seed"`
	// VerifyInvariants re-checks the model after every applied command.
	VerifyInvariants bool   `mapstructure:"verify_invariants" yaml:"verify_invariants"`
	Format           string `mapstructure:"format" yaml:"format"`
}

// MinSecretLength is the shortest accepted session secret.
const MinSecretLength = auth.MinSecretLength

// logWriter receives output of loggers built by Config.Logger.
var logWriter io.Writer = os.Stderr

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.token_ttl", 12*time.Hour)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.max_body_bytes", int64(1<<20))

	v.SetDefault("broadcast.enabled", false)
	v.SetDefault("broadcast.addr", "tcp://127.0.0.1:40899")
	v.SetDefault("broadcast.compress", true)

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "netbuilder")
	v.SetDefault("tracing.sample_rate", 1.0)

	v.SetDefault("editor.seed", true)
	v.SetDefault("editor.verify_invariants", false)
	v.SetDefault("editor.format", string(specification.FormatCanonical))
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from path (optional) and the environment, then
// validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	logCV := validation.NewConfigValidator("log").
		OneOf("level", strings.ToLower(c.Log.Level), []string{"debug", "info", "warn", "warning", "error"}).
		Custom("format", func() error {
			_, err := logging.ParseFormat(c.Log.Format)
			return err
		})

	serverCV := validation.NewConfigValidator("server").
		HostPort("addr", c.Server.Addr).
		MinDuration("read_timeout", c.Server.ReadTimeout, time.Millisecond).
		MinDuration("write_timeout", c.Server.WriteTimeout, time.Millisecond).
		Custom("max_body_bytes", func() error {
			if c.Server.MaxBodyBytes < 1024 {
				return fmt.Errorf("must be at least 1024, got %d", c.Server.MaxBodyBytes)
			}
			return nil
		}).
		When(c.Server.SessionSecret != "", func(cv *validation.ConfigValidator) {
			cv.MinLength("session_secret", c.Server.SessionSecret, MinSecretLength).
				MinDuration("token_ttl", c.Server.TokenTTL, time.Minute)
		})

	broadcastCV := validation.NewConfigValidator("broadcast").
		When(c.Broadcast.Enabled, func(cv *validation.ConfigValidator) {
			cv.Required("addr", c.Broadcast.Addr)
		})

	tracingCV := validation.NewConfigValidator("tracing").
		RangeFloat("sample_rate", c.Tracing.SampleRate, 0, 1).
		When(c.Tracing.Endpoint != "", func(cv *validation.ConfigValidator) {
			cv.Required("service_name", c.Tracing.ServiceName)
		})

	editorCV := validation.NewConfigValidator("editor").
		Custom("format", func() error {
			_, err := specification.ParseFormat(c.Editor.Format)
			return err
		})

	return errors.Join(
		logCV.Validate(),
		serverCV.Validate(),
		broadcastCV.Validate(),
		tracingCV.Validate(),
		editorCV.Validate(),
	)
}

// Logger builds the logger described by the log section.
func (c *Config) Logger() logging.Logger {
	format, err := logging.ParseFormat(c.Log.Format)
	if err != nil {
		format = logging.FormatJSON
	}
	return logging.New(logWriter, format, logging.ParseLevel(c.Log.Level))
}

// SpecificationFormat returns the configured renderer format.
func (c *Config) SpecificationFormat() specification.Format {
	f, err := specification.ParseFormat(c.Editor.Format)
	if err != nil {
		return specification.FormatCanonical
	}
	return f
}
