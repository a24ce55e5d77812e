package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tilbudsavis/internal/domain/models"
)

type Root struct {
	Env   string `yaml:"env"`
	Local Config `yaml:"local"`
	Dev   Config `yaml:"dev"`
	Prod  Config `yaml:"prod"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
	TTLHours int    `yaml:"ttl_hours"`
}

type Config struct {
	Env string `yaml:"-"`

	Log struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		AddSource bool   `yaml:"add_source"`
	} `yaml:"log"`

	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Tjek struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"tjek"`

	HTTP struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
		Concurrency    int `yaml:"concurrency"`
		Workers        int `yaml:"workers"`
	} `yaml:"http"`

	Cache struct {
		Backend string      `yaml:"backend"` // file|redis
		Dir     string      `yaml:"dir"`
		Redis   RedisConfig `yaml:"redis"`
	} `yaml:"cache"`

	UserData struct {
		Path         string `yaml:"path"`
		RefreshHours int    `yaml:"refresh_hours"`
	} `yaml:"userdata"`

	Favorites []string        `yaml:"favorites"`
	Dealers   []models.Dealer `yaml:"dealers"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var root Root
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, err
	}
	return fromRoot(root)
}

// Default is the configuration used when no config file exists.
func Default() (*Config, error) {
	return fromRoot(Root{})
}

func fromRoot(root Root) (*Config, error) {
	env := root.Env
	if v, ok := os.LookupEnv("TILBUD_ENV"); ok {
		env = v
	}
	env = strings.TrimSpace(strings.ToLower(env))
	if env == "" {
		env = "local"
	}

	var p Config
	switch env {
	case "local":
		p = root.Local
	case "dev":
		p = root.Dev
	case "prod":
		p = root.Prod
	default:
		return nil, fmt.Errorf("unknown env=%q (expected local|dev|prod)", env)
	}
	p.Env = env

	applyEnv(&p)
	applyDefaults(&p)

	if p.Cache.Backend != "file" && p.Cache.Backend != "redis" {
		return nil, fmt.Errorf("unknown cache.backend=%q (expected file|redis)", p.Cache.Backend)
	}
	return &p, nil
}

func applyEnv(p *Config) {
	p.Log.Level = getStringEnvDefault("TILBUD_LOG_LEVEL", p.Log.Level)
	p.Cache.Dir = getStringEnvDefault("TILBUD_CACHE_DIR", p.Cache.Dir)
	p.Cache.Backend = getStringEnvDefault("TILBUD_CACHE_BACKEND", p.Cache.Backend)
	p.Cache.Redis.Addr = getStringEnvDefault("TILBUD_REDIS_ADDR", p.Cache.Redis.Addr)
	p.Cache.Redis.DB = getIntEnvDefault("TILBUD_REDIS_DB", p.Cache.Redis.DB)
	p.HTTP.TimeoutSeconds = getIntEnvDefault("TILBUD_HTTP_TIMEOUT_SECONDS", p.HTTP.TimeoutSeconds)
}

func applyDefaults(p *Config) {
	if p.Tjek.BaseURL == "" {
		p.Tjek.BaseURL = "https://squid-api.tjek.com/v2"
	}

	if p.Server.Host == "" {
		p.Server.Host = "127.0.0.1"
	}
	if p.Server.Port == 0 {
		p.Server.Port = 7892
	}

	if p.HTTP.TimeoutSeconds <= 0 {
		p.HTTP.TimeoutSeconds = 15
	}
	if p.HTTP.Concurrency <= 0 {
		p.HTTP.Concurrency = 8
	}
	if p.HTTP.Workers <= 0 {
		p.HTTP.Workers = 4
	}

	p.Cache.Backend = strings.ToLower(strings.TrimSpace(p.Cache.Backend))
	if p.Cache.Backend == "" {
		p.Cache.Backend = "file"
	}
	if p.Cache.Redis.Addr == "" {
		p.Cache.Redis.Addr = "localhost:6379"
	}
	if p.Cache.Redis.TTLHours < 0 {
		p.Cache.Redis.TTLHours = 0
	}

	if p.UserData.RefreshHours <= 0 {
		p.UserData.RefreshHours = 24
	}

	if len(p.Favorites) == 0 {
		p.Favorites = []string{models.Rema1000.Key, models.Netto.Key}
	}

	if p.Log.Level == "" {
		if p.Env == "prod" {
			p.Log.Level = "warn"
		} else {
			p.Log.Level = "info"
		}
	}
	if p.Log.Format == "" {
		if p.Env == "prod" {
			p.Log.Format = "json"
		} else {
			p.Log.Format = "text"
		}
	}
}

func (p *Config) Timeout() time.Duration {
	return time.Duration(p.HTTP.TimeoutSeconds) * time.Second
}

func (p *Config) RefreshInterval() time.Duration {
	return time.Duration(p.UserData.RefreshHours) * time.Hour
}

// Registry returns the built-in dealers extended by the configured ones.
func (p *Config) Registry() (*models.Registry, error) {
	r := models.DefaultRegistry()
	for _, d := range p.Dealers {
		if err := r.Add(d); err != nil {
			return nil, fmt.Errorf("config dealers: %w", err)
		}
	}
	return r, nil
}

func getStringEnvDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getIntEnvDefault(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
