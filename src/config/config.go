package config

import (
	"fmt"
	"os"

	"chat-search/src/search"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AIConfig настройки OpenAI-совместимого API для составления ответов
type AIConfig struct {
	Enabled     bool    `yaml:"enabled"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	TimeoutSecs int     `yaml:"timeout"` // число секунд
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// StorageConfig настройки хранилища бесед
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite или memory
	Path   string `yaml:"path"`
}

// Config структура конфигурации приложения
type Config struct {
	Search  search.Params `yaml:"search"`
	Storage StorageConfig `yaml:"storage"`
	Server  struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	AI      AIConfig `yaml:"ai"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Default конфигурация по умолчанию
func Default() Config {
	var cfg Config
	cfg.Search = search.DefaultParams()
	cfg.Storage = StorageConfig{Driver: "sqlite", Path: "./chat_search.db"}
	cfg.Server.Port = "8990"
	cfg.AI.TimeoutSecs = 30
	cfg.Logging.Level = "info"
	return cfg
}

// Debug включен ли подробный лог
func (c Config) Debug() bool {
	return c.Logging.Level == "debug"
}

// Load загружает конфигурацию из YAML файла и применяет переменные окружения
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}

	// .env необязателен
	_ = godotenv.Load()
	cfg.applyEnv()

	return cfg, nil
}

// LoadFile загружает конфигурацию из YAML файла поверх значений по умолчанию
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	cfg.Search = cfg.Search.WithDefaults()
	return cfg, nil
}

// applyEnv переменные окружения имеют приоритет над файлом
func (c *Config) applyEnv() {
	if apiKey := os.Getenv("AI_API_KEY"); apiKey != "" {
		c.AI.APIKey = apiKey
	}
	if model := os.Getenv("AI_MODEL"); model != "" {
		c.AI.Model = model
	}
	if baseURL := os.Getenv("AI_BASE_URL"); baseURL != "" {
		c.AI.BaseURL = baseURL
	}
	if dbPath := os.Getenv("CHAT_SEARCH_DB"); dbPath != "" {
		c.Storage.Path = dbPath
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
}
