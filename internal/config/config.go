package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PlaceholderSecret is the value shipped in config.example.yaml. Booting with
// it outside dev is a configuration error, not something to paper over at
// request time.
const PlaceholderSecret = "change-me"

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Auth struct {
		// SigningSecret firma los session tokens (HS256). Obligatorio fuera de dev.
		SigningSecret string `yaml:"signing_secret"`
		TokenTTL      string `yaml:"token_ttl"` // default 24h
		// LoginStateTTL acota la ventana entre /login y /oauth/callback.
		LoginStateTTL string `yaml:"login_state_ttl"` // default 10m
		// AllowedRedirectHosts: https hosts accepted for redirect_to.
		AllowedRedirectHosts []string `yaml:"allowed_redirect_hosts"`
		// DefaultRedirect is where unsafe or absent redirect_to values land.
		DefaultRedirect string `yaml:"default_redirect"`
	} `yaml:"auth"`

	Discord struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURI  string `yaml:"redirect_uri"`
		// APIBase is overridable for tests; empty means the public API.
		APIBase string `yaml:"api_base"`
		Timeout string `yaml:"timeout"` // default 10s

		// Well-known role IDs (opaque snowflakes, mapped by id, never by name).
		Roles struct {
			Owner          string `yaml:"owner"`
			Administrator  string `yaml:"administrator"`
			Moderator      string `yaml:"moderator"`
			Government     string `yaml:"government"`
			Military       string `yaml:"military"`
			Education      string `yaml:"education"`
			VerifiedMember string `yaml:"verified_member"`
			VerifiedUser   string `yaml:"verified_user"`
		} `yaml:"roles"`
	} `yaml:"discord"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load lee el YAML, aplica overrides de entorno y defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}
	c.applyEnv()
	c.applyDefaults()
	return &c, nil
}

// applyEnv: env vars win over YAML.
func (c *Config) applyEnv() {
	over := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	over(&c.App.Env, "APP_ENV")
	over(&c.Server.Addr, "SERVER_ADDR")
	over(&c.Storage.Driver, "STORAGE_DRIVER")
	over(&c.Storage.DSN, "DATABASE_DSN")
	over(&c.Cache.Kind, "CACHE_KIND")
	over(&c.Cache.Redis.Addr, "REDIS_ADDR")
	over(&c.Auth.SigningSecret, "AUTH_SIGNING_SECRET")
	over(&c.Auth.TokenTTL, "AUTH_TOKEN_TTL")
	over(&c.Discord.ClientID, "DISCORD_CLIENT_ID")
	over(&c.Discord.ClientSecret, "DISCORD_CLIENT_SECRET")
	over(&c.Discord.RedirectURI, "DISCORD_REDIRECT_URI")
	over(&c.Discord.APIBase, "DISCORD_API_BASE")
	over(&c.SMTP.Host, "SMTP_HOST")
	over(&c.SMTP.Username, "SMTP_USERNAME")
	over(&c.SMTP.Password, "SMTP_PASSWORD")
	over(&c.SMTP.From, "SMTP_FROM")
	over(&c.Log.Level, "LOG_LEVEL")
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Auth.TokenTTL == "" {
		c.Auth.TokenTTL = "24h"
	}
	if c.Auth.LoginStateTTL == "" {
		c.Auth.LoginStateTTL = "10m"
	}
	if c.Auth.DefaultRedirect == "" {
		c.Auth.DefaultRedirect = "/"
	}
	if c.Discord.Timeout == "" {
		c.Discord.Timeout = "10s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// IsDev reports whether the service runs in the dev environment.
func (c *Config) IsDev() bool { return strings.ToLower(c.App.Env) == "dev" }

// Validate enforces startup invariants. A missing or placeholder signing
// secret outside dev is fatal: the service must not accept traffic at all.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.Auth.SigningSecret == "" || c.Auth.SigningSecret == PlaceholderSecret {
			return fmt.Errorf("auth.signing_secret is required outside dev (env=%s)", c.App.Env)
		}
	}
	if _, err := c.TokenTTL(); err != nil {
		return fmt.Errorf("auth.token_ttl: %w", err)
	}
	if _, err := c.LoginStateTTL(); err != nil {
		return fmt.Errorf("auth.login_state_ttl: %w", err)
	}
	if _, err := c.DiscordTimeout(); err != nil {
		return fmt.Errorf("discord.timeout: %w", err)
	}
	return nil
}

func (c *Config) TokenTTL() (time.Duration, error) {
	return time.ParseDuration(c.Auth.TokenTTL)
}

func (c *Config) LoginStateTTL() (time.Duration, error) {
	return time.ParseDuration(c.Auth.LoginStateTTL)
}

func (c *Config) DiscordTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Discord.Timeout)
}

// AllowedRedirectHostSet returns the https redirect allow-list as a set.
func (c *Config) AllowedRedirectHostSet() map[string]struct{} {
	out := make(map[string]struct{}, len(c.Auth.AllowedRedirectHosts))
	for _, h := range c.Auth.AllowedRedirectHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			out[h] = struct{}{}
		}
	}
	return out
}

// SMTPEnabled reports whether link notifications can be sent.
func (c *Config) SMTPEnabled() bool { return c.SMTP.Host != "" && c.SMTP.From != "" }
