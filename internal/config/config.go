// Package config provides configuration loading and validation for the CLI
// and server. Values come from defaults, an optional JSON file and
// COVER_LETTER_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jonathan/cover-letter-generator/internal/crawling"
	"github.com/jonathan/cover-letter-generator/internal/fetch"
	"github.com/jonathan/cover-letter-generator/internal/llm"
	"github.com/jonathan/cover-letter-generator/internal/server"
)

// EnvPrefix is the prefix for environment overrides, e.g. COVER_LETTER_LLM_PROVIDER.
const EnvPrefix = "COVER_LETTER"

// DefaultConfigName is searched for in the working directory when no file is given.
const DefaultConfigName = "cover_letter"

// FlagBindings maps configuration keys to the command-line flags that
// override them when set.
var FlagBindings = map[string]string{
	"log_level":    "log-level",
	"llm.provider": "provider",
	"llm.api_key":  "api-key",
	"server.host":  "host",
	"server.port":  "port",
}

// Config is the full application configuration.
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	LLM      LLMSettings    `mapstructure:"llm"`
	Server   ServerSettings `mapstructure:"server"`
	Fetch    FetchSettings  `mapstructure:"fetch"`
}

// LLMSettings selects the model provider and models.
type LLMSettings struct {
	Provider      string `mapstructure:"provider"`
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	MaxTokens     int    `mapstructure:"max_tokens"`
	ModelLite     string `mapstructure:"model_lite"`
	ModelStandard string `mapstructure:"model_standard"`
	ModelAdvanced string `mapstructure:"model_advanced"`
}

// ServerSettings configures the HTTP server.
type ServerSettings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// FetchSettings configures portfolio fetching.
type FetchSettings struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	UseBrowser     bool          `mapstructure:"use_browser"`
	BrowserTimeout time.Duration `mapstructure:"browser_timeout"`
	Concurrency    int           `mapstructure:"concurrency"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("llm.provider", string(llm.ProviderOpenAI))
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_tokens", llm.DefaultMaxTokens)
	v.SetDefault("llm.model_lite", "")
	v.SetDefault("llm.model_standard", "")
	v.SetDefault("llm.model_advanced", "")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", server.DefaultPort)
	v.SetDefault("server.read_timeout", server.DefaultReadTimeout)
	v.SetDefault("server.write_timeout", server.DefaultWriteTimeout)
	v.SetDefault("server.idle_timeout", server.DefaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", server.DefaultShutdownTimeout)

	v.SetDefault("fetch.timeout", fetch.DefaultTimeout)
	v.SetDefault("fetch.user_agent", fetch.DefaultUserAgent)
	v.SetDefault("fetch.use_browser", false)
	v.SetDefault("fetch.browser_timeout", fetch.DefaultBrowserTimeout)
	v.SetDefault("fetch.concurrency", crawling.DefaultConcurrency)
}

// Load reads configuration. An explicit path must exist; with an empty path
// an optional cover_letter.json in the working directory is used. Flags named
// in FlagBindings take precedence over everything else when set; flags may
// be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		for key, name := range FlagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(APIKeyEnvVar(llm.Provider(strings.ToLower(cfg.LLM.Provider))))
	}
	return &cfg, nil
}

// APIKeyEnvVar returns the provider's conventional API key variable.
func APIKeyEnvVar(provider llm.Provider) string {
	switch provider {
	case llm.ProviderGemini:
		return "GEMINI_API_KEY"
	case llm.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// Validate checks that the configuration has valid values. The API key is
// checked separately by RequireAPIKey since not every command needs it.
func (c *Config) Validate() error {
	if _, err := llm.ParseProvider(c.LLM.Provider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config error: invalid 'log_level' %q", c.LogLevel)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("config error: 'llm.max_tokens' must be positive")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 0 and 65535")
	}
	for name, d := range map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.idle_timeout":     c.Server.IdleTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"fetch.timeout":           c.Fetch.Timeout,
		"fetch.browser_timeout":   c.Fetch.BrowserTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("config error: '%s' must be positive", name)
		}
	}

	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("config error: 'fetch.concurrency' must be at least 1")
	}
	return nil
}

// RequireAPIKey fails when no API key is configured for the provider.
func (c *Config) RequireAPIKey() error {
	if c.LLM.APIKey != "" {
		return nil
	}
	provider, err := llm.ParseProvider(c.LLM.Provider)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return fmt.Errorf("config error: API key is required (set %s, %s_LLM_API_KEY or --api-key)",
		APIKeyEnvVar(provider), EnvPrefix)
}

// LLMConfig builds the client configuration: provider defaults with any
// configured model overrides applied.
func (c *Config) LLMConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.LLM.Provider)
	if err != nil {
		return nil, err
	}
	cfg, err := llm.ConfigFor(provider)
	if err != nil {
		return nil, err
	}
	if c.LLM.ModelLite != "" {
		cfg = cfg.WithModel(llm.TierLite, c.LLM.ModelLite)
	}
	if c.LLM.ModelStandard != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.LLM.ModelStandard)
	}
	if c.LLM.ModelAdvanced != "" {
		cfg = cfg.WithModel(llm.TierAdvanced, c.LLM.ModelAdvanced)
	}
	cfg.BaseURL = c.LLM.BaseURL
	if c.LLM.MaxTokens > 0 {
		cfg.MaxTokens = c.LLM.MaxTokens
	}
	return cfg, nil
}

// FetchOptions builds the page fetcher options.
func (c *Config) FetchOptions() *fetch.Options {
	return &fetch.Options{
		Timeout:        c.Fetch.Timeout,
		UserAgent:      c.Fetch.UserAgent,
		UseBrowser:     c.Fetch.UseBrowser,
		BrowserTimeout: c.Fetch.BrowserTimeout,
	}
}

// ServerConfig builds the HTTP server configuration.
func (c *Config) ServerConfig() server.Config {
	return server.Config{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		IdleTimeout:     c.Server.IdleTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
	}
}
