package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var pricesYAML []byte

type Config struct {
	Library LibraryConfig
	Bridge  BridgeConfig
	State   StateConfig
	OpenAI  OpenAIConfig
	Gemini  GeminiConfig
	Web     WebConfig
	Prices  PricesConfig
}

type LibraryConfig struct {
	DatabasePath string // Path to the Photos library SQLite database (read-only)
}

type BridgeConfig struct {
	OsascriptPath string        // osascript binary, defaults to /usr/bin/osascript
	SettleDelay   time.Duration // wait after a write before trusting the library database again
	CallDelay     time.Duration // pause between consecutive automation calls
}

type StateConfig struct {
	Path string // Path to the bbolt file holding suppressed tags and UI preferences
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type WebConfig struct {
	Host string
	Port int
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

type ModelPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable holding a millisecond count.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return time.Duration(n) * time.Millisecond
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	return &Config{
		Library: LibraryConfig{
			DatabasePath: os.Getenv("PHOTOS_LIBRARY_DB"),
		},
		Bridge: BridgeConfig{
			OsascriptPath: envString("BRIDGE_OSASCRIPT", "/usr/bin/osascript"),
			SettleDelay:   envDuration("BRIDGE_SETTLE_DELAY_MS", 1200*time.Millisecond),
			CallDelay:     envDuration("BRIDGE_CALL_DELAY_MS", 100*time.Millisecond),
		},
		State: StateConfig{
			Path: envString("STATE_DB_PATH", defaultStatePath()),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", "127.0.0.1"),
			Port: envInt("WEB_PORT", 8090),
		},
		Prices: prices,
	}
}

// defaultStatePath resolves the bbolt state file under the user config dir.
func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "better-photos.db"
	}
	return filepath.Join(dir, "better-photos", "state.db")
}

// GetModelPricing returns pricing for a specific model, with fallback defaults
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	// Return zero pricing if model not found
	return ModelPricing{}
}
