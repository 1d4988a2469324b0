// Package config carga la configuración del servicio: archivo YAML
// opcional, luego .env y variables de entorno, defaults y validación.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       string          `yaml:"app"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	Auth      AuthConfig      `yaml:"auth"`
	Genealogy GenealogyConfig `yaml:"genealogy"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DBConfig: DSN vacío => backend in-memory.
type DBConfig struct {
	DSN string `yaml:"dsn"`
}

// AuthConfig: sin secreto se asume modo dev (X-Debug-User-ID).
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`
	DevMode   *bool  `yaml:"dev_mode"`
}

type GenealogyConfig struct {
	MaxDepth int `yaml:"max_depth"`
	MaxNodes int `yaml:"max_nodes"`
}

func (c *Config) IsDevMode() bool {
	return c.Auth.DevMode != nil && *c.Auth.DevMode
}

// Load lee .env (si existe), el YAML en path (si path != "") y aplica
// overrides del entorno.
func Load(path string) (*Config, error) {
	// .env es opcional
	_ = godotenv.Load()

	var data []byte
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		data = b
	}
	return build(data, os.LookupEnv)
}

// Parse arma la config sólo desde YAML (sin entorno).
func Parse(data []byte) (*Config, error) {
	return build(data, func(string) (string, bool) { return "", false })
}

type lookupFunc func(key string) (string, bool)

func build(data []byte, lookup lookupFunc) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []string
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("APP_NAME", &c.App)
	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		c.HTTP.Addr = ":" + strings.TrimSpace(v)
	}
	str("HTTP_ADDR", &c.HTTP.Addr)
	str("DB_DSN", &c.DB.DSN)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("JWT_ISSUER", &c.Auth.JWTIssuer)

	if v, ok := lookup("AUTH_DEV_MODE"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("AUTH_DEV_MODE: %q is not a boolean", v))
		} else {
			c.Auth.DevMode = &b
		}
	}
	if v, ok := lookup("GENEALOGY_MAX_DEPTH"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("GENEALOGY_MAX_DEPTH: %q is not an integer", v))
		} else {
			c.Genealogy.MaxDepth = n
		}
	}
	if v, ok := lookup("GENEALOGY_MAX_NODES"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("GENEALOGY_MAX_NODES: %q is not an integer", v))
		} else {
			c.Genealogy.MaxNodes = n
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: env: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App == "" {
		c.App = "livestock-ledger"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 5 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Genealogy.MaxDepth == 0 {
		c.Genealogy.MaxDepth = 50
	}
	if c.Genealogy.MaxNodes == 0 {
		c.Genealogy.MaxNodes = 10000
	}
	if c.Auth.DevMode == nil {
		dev := c.Auth.JWTSecret == ""
		c.Auth.DevMode = &dev
	}
}

func (c *Config) validate() error {
	var errs []string

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if c.HTTP.ReadTimeout < 0 || c.HTTP.WriteTimeout < 0 {
		errs = append(errs, "http timeouts must be positive")
	}
	if c.Genealogy.MaxDepth < 1 || c.Genealogy.MaxDepth > 1000 {
		errs = append(errs, fmt.Sprintf("genealogy.max_depth %d must be between 1 and 1000", c.Genealogy.MaxDepth))
	}
	if c.Genealogy.MaxNodes < 1 {
		errs = append(errs, fmt.Sprintf("genealogy.max_nodes %d must be positive", c.Genealogy.MaxNodes))
	}
	if !c.IsDevMode() && c.Auth.JWTSecret == "" {
		errs = append(errs, "auth.jwt_secret is required when dev mode is off")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
