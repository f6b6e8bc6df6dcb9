// Package config предоставялет структуры и функции для парсинга и загрузки конфига портала
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	Timezone        string `yaml:"timezone" env:"TIMEZONE" env-default:"Local"`
	HTTPServer      `yaml:"http_server"`
	Backend         `yaml:"backend"`
	Session         `yaml:"session"`
	RedisConnection `yaml:"redis_connection"`
	Dashboard       `yaml:"dashboard"`
	RateLimit       `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера портала
type HTTPServer struct {
	AddressHTTP string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Backend структура для настройки клиента REST API MedLink
type Backend struct {
	BaseURL        string        `yaml:"base_url" env:"BACKEND_BASE_URL" env-default:"http://localhost:5000"`
	TimeoutBackend time.Duration `yaml:"timeout" env:"BACKEND_TIMEOUT" env-default:"10s"`
}

// Session структура для настройки хранилища сессий браузера
type Session struct {
	SessionBackend string        `yaml:"backend" env:"SESSION_BACKEND" env-default:"memory"`
	SessionTTL     time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	CookieName     string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"medlink_sid"`
	CookieSecure   bool          `yaml:"cookie_secure" env:"SESSION_COOKIE_SECURE"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT"`
}

// Dashboard структура для настройки фонового опроса дашбордов
type Dashboard struct {
	PollInterval    time.Duration `yaml:"poll_interval" env:"DASHBOARD_POLL_INTERVAL" env-default:"30s"`
	DoctorsCacheTTL time.Duration `yaml:"doctors_cache_ttl" env:"DOCTORS_CACHE_TTL" env-default:"1m"`
}

// RateLimit структура для ограничения частоты попыток входа и регистрации
type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"1"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"5"`
}

const (
	// SessionMemory: хранение сессий в памяти процесса
	SessionMemory = "memory"
	// SessionRedis: хранение сессий в redis
	SessionRedis = "redis"
)

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла, переменные окружения имеют приоритет над файлом
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return errors.New("backend base_url is required")
	}
	if c.SessionBackend != SessionMemory && c.SessionBackend != SessionRedis {
		return fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
	if c.PollInterval <= 0 {
		return errors.New("dashboard poll_interval must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location возвращает часовой пояс, в котором интерпретируются даты записей
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Timezone: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Backend:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"Session:\n"+
			"  Backend: %s\n"+
			"  TTL: %s\n"+
			"  CookieName: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  DB: %d\n"+
			"Dashboard:\n"+
			"  PollInterval: %s\n",
		c.Env,
		c.Timezone,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.BaseURL,
		c.TimeoutBackend,
		c.SessionBackend,
		c.SessionTTL,
		c.CookieName,
		c.AddressRedis,
		mask(c.Password),
		c.DB,
		c.PollInterval,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "******"
}
