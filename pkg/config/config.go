package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// Environment variable names for the two mandatory credentials.
const (
	EnvGroqAPIKey   = "GROQ_API_KEY"
	EnvTavilyAPIKey = "TAVILY_API_KEY"
)

// Config defines the global application configuration structure.
// It maps directly to the config.json file and holds business-level
// settings like channel definitions and the assistant persona, while
// the two API credentials are always resolved from the environment.
type Config struct {
	// Channels contains a map of channel identifiers (e.g., "telegram", "web")
	// to their specific configuration payloads in raw JSON format.
	Channels map[string]jsoniter.RawMessage `json:"channels"`
	// LLM holds the configuration for the reasoning engine providers in raw JSON.
	// When empty, the default Groq provider group is used.
	LLM jsoniter.RawMessage `json:"llm"`
	// SystemPrompt overrides the built-in recommendation persona when set.
	SystemPrompt string `json:"system_prompt"`

	// GroqAPIKey authenticates against the Groq OpenAI-compatible endpoint.
	// Resolved from GROQ_API_KEY, never from config.json.
	GroqAPIKey string `json:"-"`
	// TavilyAPIKey authenticates against the Tavily search API.
	// Resolved from TAVILY_API_KEY, never from config.json.
	TavilyAPIKey string `json:"-"`
}

// Validate ensures both external credentials are present. A missing key is a
// fatal startup condition: the process must refuse to accept conversations
// rather than fail mid-turn on the first backend call.
func (c *Config) Validate() error {
	if c.GroqAPIKey == "" {
		return fmt.Errorf("missing %s in environment; the reasoning engine cannot start without it", EnvGroqAPIKey)
	}
	if c.TavilyAPIKey == "" {
		return fmt.Errorf("missing %s in environment; book lookups cannot start without it", EnvTavilyAPIKey)
	}
	return nil
}

// SystemConfig defines engine-level technical parameters.
// These settings are stored in system.json and control the ceilings,
// timeouts and reliability behavior of the orchestration loop.
type SystemConfig struct {
	// MaxToolSteps is the hard ceiling on Thinking<->ToolCall cycles within a
	// single user turn. Once exceeded, the loop aborts with the best
	// available partial answer.
	MaxToolSteps int `json:"max_tool_steps"`
	// RunTimeoutMs is the wall-clock budget (in milliseconds) for one full
	// orchestration run. Checked between steps, never mid-call.
	RunTimeoutMs int `json:"run_timeout_ms"`
	// LLMTimeoutMs is the hard cutoff time (in milliseconds) for a single
	// reasoning engine request.
	LLMTimeoutMs int `json:"llm_timeout_ms"`
	// SearchTimeoutMs bounds a single Tavily HTTP request.
	SearchTimeoutMs int `json:"search_timeout_ms"`
	// MaxRetries is the number of transport-level retries attempted on
	// transient reasoning engine failures.
	MaxRetries int `json:"max_retries"`
	// RetryDelayMs is the base delay (in milliseconds) between retries.
	RetryDelayMs int `json:"retry_delay_ms"`
	// Temperature controls output variance of the reasoning engine.
	Temperature float64 `json:"temperature"`
	// MaxTokens bounds the length of a single engine completion.
	MaxTokens int `json:"max_tokens"`
	// HistoryMaxTurns caps the conversation window handed back to the
	// engine. Oldest turns are evicted first once exceeded.
	HistoryMaxTurns int `json:"history_max_turns"`
	// TelegramMessageLimit is the maximum character count for a single
	// Telegram message. Longer responses are split into multiple chunks.
	TelegramMessageLimit int `json:"telegram_message_limit"`
	// EnableTools globally toggles tool calling. If false, the engine
	// answers from model knowledge alone.
	EnableTools bool `json:"enable_tools"`
	// LogLevel sets the minimum severity for log output.
	// Accepted values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `json:"log_level"`
}

// DefaultSystemConfig returns a SystemConfig pointer initialized with safe
// default values. Used as a fallback when system.json is missing or corrupt,
// ensuring the engine can always start.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		MaxToolSteps:         10,
		RunTimeoutMs:         120000,
		LLMTimeoutMs:         60000,
		SearchTimeoutMs:      10000,
		MaxRetries:           2,
		RetryDelayMs:         500,
		Temperature:          0.7,
		MaxTokens:            2048,
		HistoryMaxTurns:      20,
		TelegramMessageLimit: 4000,
		EnableTools:          true,
		LogLevel:             "info",
	}
}

// Load reads the JSON configuration files from the current working directory
// and resolves credentials from the environment. config.json is optional; a
// missing file yields an empty Config so the defaults apply. The credential
// check is not optional: Load fails if either API key is absent.
func Load() (*Config, *SystemConfig, error) {
	cfg := &Config{}

	if file, err := os.ReadFile("config.json"); err == nil {
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, cfg); err != nil {
			return nil, nil, fmt.Errorf("failed to parse config.json: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("failed to read config.json: %w", err)
	}

	cfg.GroqAPIKey = os.Getenv(EnvGroqAPIKey)
	cfg.TavilyAPIKey = os.Getenv(EnvTavilyAPIKey)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, LoadSystemConfig("system.json"), nil
}

// LoadSystemConfig attempts to load system settings, returns defaults if it fails.
func LoadSystemConfig(path string) *SystemConfig {
	cfg := DefaultSystemConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		return cfg // File not found, use defaults
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, cfg); err != nil {
		return cfg // Parse failed, use defaults
	}

	return cfg
}
