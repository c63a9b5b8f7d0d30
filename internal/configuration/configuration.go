package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/malonaz/specchat/internal/file"
)

// DefaultPath is where the configuration lives unless SPECCHAT_CONFIG says otherwise.
const DefaultPath = "~/.config/specchat/config.json"

var million = decimal.NewFromInt(1_000_000)

func defaultConfig() *Config {
	return &Config{
		Gateway: &GatewayConfig{
			APIKey:         "API_KEY",
			APIHost:        "https://ai-gateway.vercel.sh/v1",
			RequestTimeout: 60,
		},
		Server: &ServerConfig{
			Address:         "127.0.0.1:8081",
			MaxOutputTokens: 4096,
			RateLimit:       2,
			RateBurst:       5,
			AllowedOrigins:  []string{"*"},
		},
		Chat: &ChatConfig{
			ServerURL:    "http://127.0.0.1:8081",
			DefaultModel: "claude-sonnet-4-6",
			DatabasePath: "~/.config/specchat/chats.db",
		},
		Stream: &StreamConfig{
			MaxLineSize: 1 << 20,
		},
		Logging: &LoggingConfig{
			Level: "info",
			File:  "/tmp/specchat-debug.log",
		},
		Models: []*Model{
			{
				ID:               "claude-sonnet-4-6",
				GatewayID:        "anthropic/claude-sonnet-4.6",
				Name:             "Sonnet 4.6",
				InputTokenPrice:  decimal.NewFromInt(3),
				OutputTokenPrice: decimal.NewFromInt(15),
			},
			{
				ID:               "claude-opus-4-6",
				GatewayID:        "anthropic/claude-opus-4.6",
				Name:             "Opus 4.6",
				InputTokenPrice:  decimal.NewFromInt(5),
				OutputTokenPrice: decimal.NewFromInt(25),
			},
			{
				ID:               "claude-haiku-4-5-20251001",
				GatewayID:        "anthropic/claude-haiku-4.5",
				Name:             "Haiku 4.5",
				InputTokenPrice:  decimal.NewFromInt(1),
				OutputTokenPrice: decimal.NewFromInt(5),
			},
			{ID: "grok-3", GatewayID: "xai/grok-4.1-fast-reasoning", Name: "Grok 4.1 Fast"},
			{ID: "grok-3-latest", GatewayID: "xai/grok-4.1-fast-reasoning", Name: "Grok 4.1 Fast"},
			{ID: "grok-3-mini", GatewayID: "xai/grok-4.1-fast-non-reasoning", Name: "Grok 4.1 Fast (non-reasoning)"},
		},
	}
}

// Config holds configuration for the specchat tool.
type Config struct {
	Gateway *GatewayConfig `json:"gateway"`
	Server  *ServerConfig  `json:"server"`
	Chat    *ChatConfig    `json:"chat"`
	Stream  *StreamConfig  `json:"stream"`
	Logging *LoggingConfig `json:"logging"`
	Models  []*Model       `json:"models"`
}

// GatewayConfig points at an OpenAI-compatible model gateway.
type GatewayConfig struct {
	APIKey  string `json:"api_key"`
	APIHost string `json:"api_host"`
	// Seconds.
	RequestTimeout int `json:"request_timeout"`
}

// ServerConfig holds configuration for specchat serve.
type ServerConfig struct {
	Address         string `json:"address"`
	MaxOutputTokens int    `json:"max_output_tokens"`
	// Requests per second per client, and the burst above it. Zero means the
	// default; a negative rate disables limiting.
	RateLimit      float64  `json:"rate_limit"`
	RateBurst      int      `json:"rate_burst"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// ChatConfig holds configuration for specchat chat.
type ChatConfig struct {
	// The chat gateway the terminal client talks to.
	ServerURL string `json:"server_url"`
	// The model to be used by default.
	DefaultModel string `json:"default_model"`
	// The sqlite database where we store chats.
	DatabasePath string `json:"database_path"`
}

// StreamConfig bounds the spec compiler.
type StreamConfig struct {
	// Bytes per patch line. Zero means the default; a negative value removes
	// the bound.
	MaxLineSize int `json:"max_line_size"`
}

// LoggingConfig configures the debug logger.
type LoggingConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Model maps a client-facing model id to a gateway model.
type Model struct {
	ID        string `json:"id"`
	GatewayID string `json:"gateway_id"`
	Name      string `json:"name"`
	// USD per million tokens.
	InputTokenPrice  decimal.Decimal `json:"input_token_price"`
	OutputTokenPrice decimal.Decimal `json:"output_token_price"`
}

// Cost of a call with the given token usage.
func (m *Model) Cost(promptTokens, completionTokens int) decimal.Decimal {
	input := m.InputTokenPrice.Mul(decimal.NewFromInt(int64(promptTokens)))
	output := m.OutputTokenPrice.Mul(decimal.NewFromInt(int64(completionTokens)))
	return input.Add(output).Div(million)
}

// ResolveModel returns the configured model for id. Unknown ids resolve to an
// unpriced model whose gateway id is id itself.
func (c *Config) ResolveModel(id string) *Model {
	for _, model := range c.Models {
		if model.ID == id || model.GatewayID == id {
			return model
		}
	}
	return &Model{ID: id, GatewayID: id, Name: id}
}

// Parse a configuration file.
func Parse(path string) (*Config, error) {
	path, err := file.ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}
	if err := mergo.Merge(config, defaultConfig()); err != nil {
		return nil, errors.Wrap(err, "merging default config")
	}

	expandedDatabasePath, err := file.ExpandPath(config.Chat.DatabasePath)
	if err != nil {
		return nil, errors.Wrap(err, "expanding database path")
	}
	config.Chat.DatabasePath = expandedDatabasePath
	return config, nil
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	// Create the directories.
	dir, _ := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	if err := defaultConfig().save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}
