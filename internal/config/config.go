// Package config はサーバ設定の読み込み。
// 優先度: デフォルト < YAML ファイル < 環境変数 < CLI フラグ（cmd 側で上書き）。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreSQL    = "sql"
)

type DBConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`

	AutoMigrate     bool          `yaml:"auto_migrate"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

type Config struct {
	HTTPAddr       string `yaml:"http_addr"`
	MetricsAddr    string `yaml:"metrics_addr"`
	GRPCHealthAddr string `yaml:"grpc_health_addr"`

	// Store は memory（揮発）か sql（永続）。
	Store string   `yaml:"store"`
	DB    DBConfig `yaml:"db"`

	// RequestTimeout が 0 ならタイムアウトなし。
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	HealthInterval  time.Duration `yaml:"health_interval"`

	// Tracing は none か stdout。
	Tracing string    `yaml:"tracing"`
	Log     LogConfig `yaml:"log"`
}

// Default は何も設定しない場合の値。
func Default() Config {
	return Config{
		HTTPAddr:       ":8000",
		MetricsAddr:    ":9464",
		GRPCHealthAddr: ":50051",
		Store:          StoreMemory,
		DB: DBConfig{
			Driver:      "mysql",
			Host:        "127.0.0.1",
			Port:        "3306",
			User:        "root",
			Password:    "root",
			Name:        "todos",
			AutoMigrate: true,
		},
		RequestTimeout:  0,
		ShutdownTimeout: 5 * time.Second,
		HealthInterval:  10 * time.Second,
		Tracing:         "none",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

//----------------------
// 共通: getenv ヘルパ
//----------------------

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvDuration は parse に失敗したら warn して def に落とす（起動失敗にはしない）。
func getenvDuration(logger *zap.Logger, key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("invalid duration, fallback to default",
			zap.String("key", key),
			zap.String("raw", raw),
			zap.Duration("default", def),
			zap.Error(err),
		)
		return def
	}
	return d
}

func getenvInt(logger *zap.Logger, key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("invalid integer, fallback to default",
			zap.String("key", key),
			zap.String("raw", raw),
			zap.Int("default", def),
		)
		return def
	}
	return n
}

func getenvBool(logger *zap.Logger, key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("invalid bool, fallback to default",
			zap.String("key", key),
			zap.String("raw", raw),
			zap.Bool("default", def),
		)
		return def
	}
	return b
}

// Load は path（空ならスキップ）の YAML と環境変数から Config を組み立てる。
// CLI フラグで上書きされうるので検証はしない。上書き後に Validate を呼ぶこと。
func Load(path string, logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.MetricsAddr = getenv("METRICS_ADDR", cfg.MetricsAddr)
	cfg.GRPCHealthAddr = getenv("GRPC_HEALTH_ADDR", cfg.GRPCHealthAddr)
	cfg.Store = getenv("STORE", cfg.Store)

	cfg.DB.Driver = getenv("DB_DRIVER", cfg.DB.Driver)
	cfg.DB.DSN = getenv("DB_DSN", cfg.DB.DSN)
	cfg.DB.Host = getenv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getenv("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getenv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getenv("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getenv("DB_NAME", cfg.DB.Name)
	cfg.DB.AutoMigrate = getenvBool(logger, "DB_AUTO_MIGRATE", cfg.DB.AutoMigrate)
	cfg.DB.MaxOpenConns = getenvInt(logger, "DB_MAX_OPEN_CONNS", cfg.DB.MaxOpenConns)
	cfg.DB.MaxIdleConns = getenvInt(logger, "DB_MAX_IDLE_CONNS", cfg.DB.MaxIdleConns)
	cfg.DB.ConnMaxLifetime = getenvDuration(logger, "DB_CONN_MAX_LIFETIME", cfg.DB.ConnMaxLifetime)

	cfg.RequestTimeout = getenvDuration(logger, "REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.ShutdownTimeout = getenvDuration(logger, "SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.HealthInterval = getenvDuration(logger, "HEALTH_INTERVAL", cfg.HealthInterval)

	cfg.Tracing = getenv("TRACING", cfg.Tracing)
	cfg.Log.Level = getenv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenv("LOG_FORMAT", cfg.Log.Format)

	return cfg, nil
}

// Validate は起動できない組み合わせを弾く。
func (c *Config) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreMemory, StoreSQL:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreMemory, StoreSQL)
	}

	switch strings.ToLower(c.Tracing) {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("unknown tracing exporter %q (want none or stdout)", c.Tracing)
	}

	if c.HTTPAddr == "" {
		return fmt.Errorf("http addr must not be empty")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	return nil
}
