// Package config はサーバの設定を読み込む。
//
// 優先順位（後勝ち）:
//  1. デフォルト値
//  2. TOML ファイル（TODO_CONFIG_FILE で指定したときだけ）
//  3. 環境変数（.env があれば先に読み込む。既存の環境変数は上書きしない）
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	StorageMySQL  = "mysql"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// ErrMissingDatabaseURL は SQL ストレージなのに DATABASE_URL が無いとき。起動時に致命扱いする。
var ErrMissingDatabaseURL = errors.New("undefined [DATABASE_URL]")

type DBConfig struct {
	URL             string        `toml:"url"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	HTTPAddr    string `toml:"http_addr"`
	GRPCAddr    string `toml:"grpc_addr"`
	MetricsAddr string `toml:"metrics_addr"`

	// mysql / sqlite / memory
	Storage string   `toml:"storage"`
	DB      DBConfig `toml:"database"`

	Log LogConfig `toml:"log"`

	// 各リクエストの処理上限（HTTP / gRPC 共通）
	RequestTimeout time.Duration `toml:"request_timeout"`

	TracesEnabled   bool   `toml:"traces_enabled"`
	CORSAllowOrigin string `toml:"cors_allow_origin"`

	// 起動時に OpenAPI ドキュメントを書き出す先（空なら書かない）
	OpenAPIOutput string `toml:"openapi_output"`
}

func Default() Config {
	return Config{
		HTTPAddr:    "0.0.0.0:3005",
		GRPCAddr:    ":50051",
		MetricsAddr: ":9464",
		Storage:     StorageMySQL,
		DB: DBConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		RequestTimeout:  3 * time.Second,
		CORSAllowOrigin: "http://localhost:3000",
		OpenAPIOutput:   "openapi.json",
	}
}

// Load は設定を読み込んで検証する。
// 不正な duration / bool は起動失敗にせず、warn してその項目だけ手前の値に落とす。
func Load(logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := Default()

	if path := os.Getenv("TODO_CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// .env は無くてよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", zap.Error(err))
	}

	loadFromEnv(&cfg, logger)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config, logger *zap.Logger) {
	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.GRPCAddr = getenv("GRPC_ADDR", cfg.GRPCAddr)
	cfg.MetricsAddr = getenv("METRICS_ADDR", cfg.MetricsAddr)
	cfg.Storage = strings.ToLower(getenv("STORAGE", cfg.Storage))
	cfg.DB.URL = getenv("DATABASE_URL", cfg.DB.URL)
	cfg.DB.MaxOpenConns = getenvInt(logger, "DB_MAX_OPEN_CONNS", cfg.DB.MaxOpenConns)
	cfg.DB.MaxIdleConns = getenvInt(logger, "DB_MAX_IDLE_CONNS", cfg.DB.MaxIdleConns)
	cfg.DB.ConnMaxLifetime = getenvDuration(logger, "DB_CONN_MAX_LIFETIME", cfg.DB.ConnMaxLifetime)
	cfg.Log.Level = getenv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenv("LOG_FORMAT", cfg.Log.Format)
	cfg.RequestTimeout = getenvDuration(logger, "REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.TracesEnabled = getenvBool(logger, "OTEL_TRACES_ENABLED", cfg.TracesEnabled)
	cfg.CORSAllowOrigin = getenv("CORS_ALLOW_ORIGIN", cfg.CORSAllowOrigin)
	cfg.OpenAPIOutput = getenv("OPENAPI_OUTPUT", cfg.OpenAPIOutput)
}

// Validate は起動前に落とすべき設定ミスを検出する。
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMySQL, StorageSQLite:
		if strings.TrimSpace(c.DB.URL) == "" {
			return ErrMissingDatabaseURL
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q (want mysql, sqlite or memory)", c.Storage)
	}
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR must not be empty")
	}
	return nil
}

//----------------------
// getenv ヘルパ
//----------------------

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

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
