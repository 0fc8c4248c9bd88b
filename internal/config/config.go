package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AuthSystemQ is QuakeNet's Q service.
const AuthSystemQ = "Q"

// ErrUnknownAuthSystem is wrapped by every error reporting an auth system
// outside the supported set.
var ErrUnknownAuthSystem = errors.New("unknown authentication system")

// AuthConfig holds network service credentials
type AuthConfig struct {
	System   string `yaml:"system"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Config holds all session configuration. It is not modified after Load.
type Config struct {
	Network  string      `yaml:"network"`
	Host     string      `yaml:"host"`
	Port     int         `yaml:"port"`
	Nick     string      `yaml:"nick"`
	Realname string      `yaml:"realname"`
	Auth     *AuthConfig `yaml:"auth"`
	UserMode string      `yaml:"user_mode"`
	Channels []string    `yaml:"channels"`

	TriggerPrefix string `yaml:"trigger_prefix"`
	ReplyPrefix   string `yaml:"reply_prefix"`

	TLS         bool `yaml:"tls"`
	TLSInsecure bool `yaml:"tls_insecure"`

	// PhaseTimeout bounds each registration phase. Zero waits forever.
	PhaseTimeout time.Duration `yaml:"phase_timeout"`
}

// Default returns a Config with every optional field at its default.
func Default() Config {
	return Config{
		Port:          6667,
		Channels:      []string{},
		TriggerPrefix: "~",
		ReplyPrefix:   "> ",
	}
}

// Load reads and parses a YAML (or JSON) configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a configuration document on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Channels == nil {
		cfg.Channels = []string{}
	}
	return &cfg, nil
}

// Validate reports the first setting that would make a session unusable.
func (c *Config) Validate() error {
	switch {
	case c.Host == "":
		return errors.New("host is required")
	case c.Nick == "":
		return errors.New("nick is required")
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("port %d out of range", c.Port)
	case c.TriggerPrefix == "":
		return errors.New("trigger_prefix must not be empty")
	case c.PhaseTimeout < 0:
		return errors.New("phase_timeout must not be negative")
	}
	if c.Auth != nil {
		if err := CheckAuthSystem(c.Auth.System); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	return nil
}

// CheckAuthSystem returns an error wrapping ErrUnknownAuthSystem unless
// system is supported.
func CheckAuthSystem(system string) error {
	if system == AuthSystemQ {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAuthSystem, system)
}

// Resolve maps a configuration name to a file path. Bare names are looked up
// as <name>.json in the pladder-irc directory under $XDG_CONFIG_HOME (or
// $HOME/.config); anything that looks like a path is returned unchanged.
func Resolve(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || filepath.Ext(name) != "" {
		return name, nil
	}
	home := os.Getenv("XDG_CONFIG_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate config directory: %w", err)
		}
		home = filepath.Join(userHome, ".config")
	}
	return filepath.Join(home, "pladder-irc", name+".json"), nil
}
