package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `yaml:"port"`
	Environment  string `yaml:"env"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`

	// CORSOrigins пустой означает "*" (dev).
	CORSOrigins []string `yaml:"cors_origins"`

	Storage StorageConfig `yaml:"storage"`
	Limits  LimitsConfig  `yaml:"limits"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig выбирает бэкенды хранения документов. Пустые значения
// отключают соответствующий бэкенд.
type StorageConfig struct {
	DocumentRoot  string `yaml:"document_root"`
	SQLitePath    string `yaml:"sqlite_path"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type LimitsConfig struct {
	ResultLimit           int `yaml:"result_limit"`
	MaxTextItems          int `yaml:"max_text_items"`
	MaxBoundaryCandidates int `yaml:"max_boundary_candidates"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Port:         "3003",
		Environment:  "development",
		ReadTimeout:  10,
		WriteTimeout: 10,
		Storage: StorageConfig{
			DocumentRoot: "data/documents",
		},
		Limits: LimitsConfig{
			ResultLimit:           20,
			MaxTextItems:          5000,
			MaxBoundaryCandidates: 5000,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load загружает конфигурацию: значения по умолчанию, затем YAML-файл из
// CAD_CONFIG (если задан), затем переменные окружения. Файл .env
// подхватывается автоматически, если он есть.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := Default()
	if path := os.Getenv("CAD_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENV", c.Environment)
	c.ReadTimeout = getEnvAsInt("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", c.WriteTimeout)
	c.CORSOrigins = getEnvAsList("CORS_ORIGINS", c.CORSOrigins)

	c.Storage.DocumentRoot = getEnv("DOCUMENT_ROOT", c.Storage.DocumentRoot)
	c.Storage.SQLitePath = getEnv("SQLITE_PATH", c.Storage.SQLitePath)
	c.Storage.PostgresDSN = getEnv("POSTGRES_DSN", c.Storage.PostgresDSN)
	c.Storage.RedisAddr = getEnv("REDIS_ADDR", c.Storage.RedisAddr)
	c.Storage.RedisPassword = getEnv("REDIS_PASSWORD", c.Storage.RedisPassword)
	c.Storage.RedisDB = getEnvAsInt("REDIS_DB", c.Storage.RedisDB)

	c.Limits.ResultLimit = getEnvAsInt("RESULT_LIMIT", c.Limits.ResultLimit)
	c.Limits.MaxTextItems = getEnvAsInt("MAX_TEXT_ITEMS", c.Limits.MaxTextItems)
	c.Limits.MaxBoundaryCandidates = getEnvAsInt("MAX_BOUNDARY_CANDIDATES", c.Limits.MaxBoundaryCandidates)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// getEnvAsList читает список через запятую.
func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
