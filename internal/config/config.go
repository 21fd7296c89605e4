package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mosbot.dev/web/internal/layout"
)

// FileEnv names the optional YAML file read before the environment.
const FileEnv = "MOSBOT_WEB_CONFIG"

// DotEnvFile is loaded into the environment when present. Variables already
// set in the process win.
const DotEnvFile = ".env"

// Config is the process configuration. Environment variables override values
// from the YAML file, which override defaults.
type Config struct {
	Addr string `env:"MOSBOT_WEB_ADDR" yaml:"addr"`
	Port string `env:"PORT"            yaml:"port"`
	Dev  bool   `env:"MOSBOT_WEB_DEV"  yaml:"dev"`

	PublicDir string `env:"MOSBOT_WEB_PUBLIC_DIR" yaml:"public_dir"`
	OutDir    string `env:"MOSBOT_WEB_OUT_DIR"    yaml:"out_dir"`

	BackendURL string `env:"MOSBOT_WEB_BACKEND_URL" yaml:"backend_url"`
	Proxy      bool   `env:"MOSBOT_WEB_PROXY"       yaml:"proxy"`

	// UseLogin is tri-state: empty defers to the backend's /auth_setup.
	UseLogin string `env:"MOSBOT_WEB_USE_LOGIN" yaml:"use_login"`
	Layout   string `env:"MOSBOT_WEB_LAYOUT"    yaml:"layout"`

	Language string `env:"MOSBOT_WEB_LANGUAGE" yaml:"language"`
	Locale   string `env:"MOSBOT_WEB_LOCALE"   yaml:"locale"`

	LogLevel string `env:"LOG_LEVEL" yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:      "8080",
		PublicDir: "public",
		OutDir:    "../backend/static",
		Layout:    string(layout.VariantCentered),
		Language:  "he",
		Locale:    "he-IL",
		LogLevel:  "info",
	}
}

// Load reads .env into the environment, then the YAML file named by
// MOSBOT_WEB_CONFIG, if any, then the environment. Unset variables keep
// earlier values.
func Load() (Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", DotEnvFile, err)
	}
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	if _, err := layout.ParseVariant(c.Layout); err != nil {
		return err
	}
	if _, err := c.LoginOverride(); err != nil {
		return err
	}
	return nil
}

// ListenAddr returns Addr, or ":"+Port when Addr is unset.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return ":" + c.Port
}

// Variant returns the parsed layout variant.
func (c Config) Variant() layout.Variant {
	v, err := layout.ParseVariant(c.Layout)
	if err != nil {
		return layout.VariantCentered
	}
	return v
}

// LoginOverride returns the explicit login flag, or nil when unset.
func (c Config) LoginOverride() (*bool, error) {
	s := strings.TrimSpace(c.UseLogin)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid use_login %q: %w", c.UseLogin, err)
	}
	return &v, nil
}

// ProxyEnabled reports whether backend prefixes are forwarded. Dev mode
// proxies by default.
func (c Config) ProxyEnabled() bool {
	return c.Proxy || c.Dev
}
