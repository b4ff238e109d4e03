package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server Server      `yaml:"server"`
	Log    Log         `yaml:"log"`
	OpenAI ModelConfig `yaml:"openai" validate:"required"`
	MCP    MCP         `yaml:"mcp"`
}

type Server struct {
	// HTTP listen port
	Port int `yaml:"port" example:"8000"`
}

type ModelConfig struct {
	// OpenAI-compatible base url
	BaseURL string `yaml:"base_url" example:"https://api.openai.com/v1"`
	// OpenAI token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// Chat model with function-call support
	Model string `yaml:"model" example:"gpt-4o-mini" validate:"required"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

type MCP struct {
	// Serve the domain tool catalog over MCP stdio
	Enabled bool `yaml:"enabled" example:"false"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Server.Port == 0 {
		result.Server.Port = 8000
	}
	if result.OpenAI.BaseURL == "" {
		result.OpenAI.BaseURL = "https://api.openai.com/v1"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
