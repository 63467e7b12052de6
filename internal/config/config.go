package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr        string `yaml:"addr"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // "postgres" | "memory"
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // "memory" | "redis"
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		ClientTTL string `yaml:"client_ttl"` // TTL del cache de clients (default 30s)
	} `yaml:"cache"`

	Issuer struct {
		URL           string `yaml:"url"`            // issuer base, ej: https://id.example.com
		SigningSecret string `yaml:"signing_secret"` // HS256 secret para ID tokens
		AccessTTL     string `yaml:"access_ttl"`     // default 1h
		RefreshTTL    string `yaml:"refresh_ttl"`    // default 720h (30d)
		IDTokenTTL    string `yaml:"id_token_ttl"`   // default 1h
	} `yaml:"issuer"`

	Admin struct {
		APIKey string `yaml:"api_key"` // guarda los endpoints /admin y /oauth2/grant
	} `yaml:"admin"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
	} `yaml:"rate"`
}

// Load lee el YAML (si existe) y aplica overrides de entorno.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setStr(&c.App.Env, "APP_ENV")
	setStr(&c.Server.Addr, "SERVER_ADDR")
	setStr(&c.Server.MetricsAddr, "METRICS_ADDR")
	setStr(&c.Storage.Driver, "STORAGE_DRIVER")
	setStr(&c.Storage.DSN, "DATABASE_DSN")
	setStr(&c.Cache.Kind, "CACHE_KIND")
	setStr(&c.Cache.Redis.Addr, "REDIS_ADDR")
	setStr(&c.Issuer.URL, "ISSUER_URL")
	setStr(&c.Issuer.SigningSecret, "SIGNING_SECRET")
	setStr(&c.Admin.APIKey, "ADMIN_API_KEY")

	if v := strings.TrimSpace(os.Getenv("RATE_ENABLED")); v != "" {
		c.Rate.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := strings.TrimSpace(os.Getenv("RATE_MAX_REQUESTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Rate.MaxRequests = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Issuer.URL == "" {
		c.Issuer.URL = "http://localhost:8080"
	}
	c.Issuer.URL = strings.TrimRight(c.Issuer.URL, "/")
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
}

// AccessTTL retorna el TTL default de access tokens.
func (c *Config) AccessTTL() time.Duration { return parseDur(c.Issuer.AccessTTL, time.Hour) }

// RefreshTTL retorna el TTL default de refresh tokens.
func (c *Config) RefreshTTL() time.Duration { return parseDur(c.Issuer.RefreshTTL, 30*24*time.Hour) }

// IDTokenTTL retorna el TTL default de ID tokens.
func (c *Config) IDTokenTTL() time.Duration { return parseDur(c.Issuer.IDTokenTTL, time.Hour) }

// ClientCacheTTL retorna el TTL del cache read-mostly de clients.
func (c *Config) ClientCacheTTL() time.Duration { return parseDur(c.Cache.ClientTTL, 30*time.Second) }

// RateWindow retorna la ventana del rate limiter.
func (c *Config) RateWindow() time.Duration { return parseDur(c.Rate.Window, time.Minute) }

func parseDur(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func setStr(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
