// Package config provides configuration management for MutedVoice.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrConfigNotFound indicates an explicitly requested config file does not exist.
var ErrConfigNotFound = errors.New("config not found")

// Config matches the structure of mutedvoice.json
type Config struct {
	Webex   WebexConfig   `json:"webex" yaml:"webex" mapstructure:"webex"`
	Relay   RelayConfig   `json:"relay" yaml:"relay" mapstructure:"relay"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// WebexConfig holds the bot credential and the Webex REST endpoint settings.
type WebexConfig struct {
	Token          string        `json:"token" yaml:"token" mapstructure:"token" validate:"required"`
	TargetRoomID   string        `json:"targetRoomId" yaml:"targetRoomId" mapstructure:"targetRoomId" validate:"required"`
	BaseURL        string        `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl" validate:"required,url"`
	Proxy          ProxyConfig   `json:"proxy" yaml:"proxy" mapstructure:"proxy"`
	ConnectTimeout time.Duration `json:"connectTimeout" yaml:"connectTimeout" mapstructure:"connectTimeout" validate:"gte=0"`
	RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout" mapstructure:"requestTimeout" validate:"gte=0"`
}

type ProxyConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
}

// URL returns the proxy URL, or "" unless both host and port are set.
func (p ProxyConfig) URL() string {
	if strings.TrimSpace(p.Host) == "" || p.Port <= 0 {
		return ""
	}
	return "http://" + net.JoinHostPort(strings.TrimSpace(p.Host), strconv.Itoa(p.Port))
}

type RelayConfig struct {
	Prefix             string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
	MembershipPageSize int    `json:"membershipPageSize" yaml:"membershipPageSize" mapstructure:"membershipPageSize" validate:"gte=1,lte=1000"`
	MembershipMaxPages int    `json:"membershipMaxPages" yaml:"membershipMaxPages" mapstructure:"membershipMaxPages" validate:"gte=1"`
}

type ServerConfig struct {
	Host        string          `json:"host" yaml:"host" mapstructure:"host"`
	Port        int             `json:"port" yaml:"port" mapstructure:"port" validate:"gte=1,lte=65535"`
	WebhookPath string          `json:"webhookPath" yaml:"webhookPath" mapstructure:"webhookPath" validate:"required,startswith=/"`
	RateLimit   RateLimitConfig `json:"rateLimit" yaml:"rateLimit" mapstructure:"rateLimit"`
}

type RateLimitConfig struct {
	Enabled bool    `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	RPS     float64 `json:"rps" yaml:"rps" mapstructure:"rps"`
	Burst   int     `json:"burst" yaml:"burst" mapstructure:"burst"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// StateDir returns the MutedVoice state directory path.
// Can be overridden via MUTEDVOICE_STATE_DIR environment variable.
// Default: ~/.mutedvoice
func StateDir() string {
	if override := strings.TrimSpace(os.Getenv("MUTEDVOICE_STATE_DIR")); override != "" {
		return expandPath(override)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".mutedvoice"
	}
	return filepath.Join(home, ".mutedvoice")
}

// ConfigPath returns the default config file path.
// Can be overridden via MUTEDVOICE_CONFIG_PATH environment variable.
func ConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("MUTEDVOICE_CONFIG_PATH")); override != "" {
		return expandPath(override)
	}
	return filepath.Join(StateDir(), "mutedvoice.json")
}

// expandPath expands ~ to home directory and resolves the path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = strings.Replace(path, "~", home, 1)
		}
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

// LoadViper loads the configuration into a Viper instance.
// A missing file in the state dir is not an error: the service can be
// configured purely through MUTEDVOICE_* environment variables.
func LoadViper() (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	explicit := strings.TrimSpace(os.Getenv("MUTEDVOICE_CONFIG_PATH"))
	if explicit != "" {
		expandedPath := expandPath(explicit)
		fileInfo, err := os.Stat(expandedPath)
		if err == nil && fileInfo.IsDir() {
			v.SetConfigName("mutedvoice")
			v.AddConfigPath(expandedPath)
		} else {
			v.SetConfigFile(expandedPath)
		}
	} else {
		v.SetConfigName("mutedvoice")
		v.AddConfigPath(StateDir())
	}

	v.SetEnvPrefix("MUTEDVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		switch {
		case missing && explicit != "":
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		case missing:
			// env-only configuration
		default:
			return nil, err
		}
	}

	return v, nil
}

// Load reads the configuration from file or environment variables.
func Load() (*Config, error) {
	v, err := LoadViper()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	expandEnvVars(&cfg)

	return &cfg, nil
}

// setDefaults sets default configuration values.
// Every key that may be supplied via the environment needs a default so
// Unmarshal picks up the AutomaticEnv binding.
func setDefaults(v *viper.Viper) {
	v.SetDefault("webex.token", "")
	v.SetDefault("webex.targetRoomId", "")
	v.SetDefault("webex.baseUrl", "https://webexapis.com")
	v.SetDefault("webex.proxy.host", "")
	v.SetDefault("webex.proxy.port", 0)
	v.SetDefault("webex.connectTimeout", "10s")
	v.SetDefault("webex.requestTimeout", "0s")

	v.SetDefault("relay.prefix", "Anonymous: ")
	v.SetDefault("relay.membershipPageSize", 100)
	v.SetDefault("relay.membershipMaxPages", 10)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.webhookPath", "/webex-webhook")
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.rps", 10)
	v.SetDefault("server.rateLimit.burst", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
}

// expandEnvVars expands ${VAR} references in secret-bearing fields.
func expandEnvVars(cfg *Config) {
	cfg.Webex.Token = os.ExpandEnv(cfg.Webex.Token)
	cfg.Webex.TargetRoomID = os.ExpandEnv(cfg.Webex.TargetRoomID)
}

// Validate checks the config for missing or out-of-range values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// Redacted returns a copy of the config that is safe to print.
func (c Config) Redacted() Config {
	if c.Webex.Token != "" {
		c.Webex.Token = "********"
	}
	return c
}
