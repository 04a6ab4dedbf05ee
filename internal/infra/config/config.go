package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	LLM     LLMConfig     `yaml:"llm"`
	Runtime RuntimeConfig `yaml:"runtime"`
	Search  SearchConfig  `yaml:"search"`
	Journal JournalConfig `yaml:"journal"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
}

// StoreConfig holds community backend settings.
type StoreConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LLMConfig holds provider selection and credentials.
type LLMConfig struct {
	// Preference is "auto" or an explicit provider name. Auto walks the
	// fixed failover order over configured providers.
	Preference string `yaml:"preference"`

	// ProviderCooldown is how long a rate-limited provider or model stays
	// out of rotation.
	ProviderCooldown time.Duration `yaml:"provider_cooldown"`
	// DailyWindow bounds daily-quota accounting for providers that meter
	// per calendar day.
	DailyWindow time.Duration `yaml:"daily_window"`
	// PaceInterval throttles outbound calls per provider when > 0.
	PaceInterval time.Duration `yaml:"pace_interval"`

	Cloudflare  CloudflareConfig `yaml:"cloudflare"`
	Groq        APIKeyConfig     `yaml:"groq"`
	Gemini      APIKeyConfig     `yaml:"gemini"`
	Together    APIKeyConfig     `yaml:"together"`
	HuggingFace APIKeyConfig     `yaml:"huggingface"`
	Ollama      OllamaConfig     `yaml:"ollama"`
}

// CloudflareConfig holds Workers AI credentials.
type CloudflareConfig struct {
	AccountID string `yaml:"account_id"`
	APIToken  string `yaml:"api_token"`
}

// APIKeyConfig holds a single bearer-token credential.
type APIKeyConfig struct {
	APIKey string `yaml:"api_key"`
}

// OllamaConfig holds local model settings. Ollama needs no credentials and
// is always considered configured.
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// RuntimeConfig holds agent loop timing.
type RuntimeConfig struct {
	// StartDelayBase and StartDelayJitter stagger agent startup:
	// base + rand(jitter).
	StartDelayBase   time.Duration `yaml:"start_delay_base"`
	StartDelayJitter time.Duration `yaml:"start_delay_jitter"`
	// RetryDelay applies when no decision could be generated.
	RetryDelay time.Duration `yaml:"retry_delay"`
	// ErrorBackoff applies after a cycle fails unexpectedly.
	ErrorBackoff time.Duration `yaml:"error_backoff"`
	// InitialAgents is the community size to bootstrap when the store
	// has no agents yet.
	InitialAgents int `yaml:"initial_agents"`
}

// SearchConfig holds web research settings.
type SearchConfig struct {
	Enabled bool `yaml:"enabled"`
	// MinInterval spaces consecutive search requests.
	MinInterval time.Duration `yaml:"min_interval"`
	UserAgent   string        `yaml:"user_agent"`
}

// JournalConfig holds the local action journal settings.
type JournalConfig struct {
	Path string `yaml:"path"`
	// Retain bounds how long journal rows are kept before pruning.
	Retain time.Duration `yaml:"retain"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Store: StoreConfig{
			URL:     "http://localhost:3000",
			Timeout: 15 * time.Second,
		},
		LLM: LLMConfig{
			Preference:       "auto",
			ProviderCooldown: time.Hour,
			DailyWindow:      24 * time.Hour,
			Ollama: OllamaConfig{
				URL:   "http://localhost:11434",
				Model: "llama3.2:3b",
			},
		},
		Runtime: RuntimeConfig{
			StartDelayBase:   5 * time.Second,
			StartDelayJitter: 30 * time.Second,
			RetryDelay:       60 * time.Second,
			ErrorBackoff:     30 * time.Second,
			InitialAgents:    5,
		},
		Search: SearchConfig{
			Enabled:     true,
			MinInterval: 5 * time.Second,
			UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
		},
		Journal: JournalConfig{
			Path:   "./data/journal.db",
			Retain: 7 * 24 * time.Hour,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file and applies env var overrides. A missing
// file is not an error; env vars alone can configure the process.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps AGORA_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGORA_STORE_URL"); v != "" {
		cfg.Store.URL = v
	}
	if v := os.Getenv("AGORA_LLM_PREFERENCE"); v != "" {
		cfg.LLM.Preference = v
	}
	if v := os.Getenv("AGORA_LLM_PROVIDER_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.LLM.ProviderCooldown = d
		}
	}
	if v := os.Getenv("AGORA_LLM_DAILY_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.LLM.DailyWindow = d
		}
	}
	if v := os.Getenv("AGORA_CLOUDFLARE_ACCOUNT_ID"); v != "" {
		cfg.LLM.Cloudflare.AccountID = v
	}
	if v := os.Getenv("AGORA_CLOUDFLARE_API_TOKEN"); v != "" {
		cfg.LLM.Cloudflare.APIToken = v
	}
	if v := os.Getenv("AGORA_GROQ_API_KEY"); v != "" {
		cfg.LLM.Groq.APIKey = v
	}
	if v := os.Getenv("AGORA_GEMINI_API_KEY"); v != "" {
		cfg.LLM.Gemini.APIKey = v
	}
	if v := os.Getenv("AGORA_TOGETHER_API_KEY"); v != "" {
		cfg.LLM.Together.APIKey = v
	}
	if v := os.Getenv("AGORA_HUGGINGFACE_API_KEY"); v != "" {
		cfg.LLM.HuggingFace.APIKey = v
	}
	if v := os.Getenv("AGORA_OLLAMA_URL"); v != "" {
		cfg.LLM.Ollama.URL = v
	}
	if v := os.Getenv("AGORA_OLLAMA_MODEL"); v != "" {
		cfg.LLM.Ollama.Model = v
	}
	if v := os.Getenv("AGORA_SEARCH_ENABLED"); v == "false" {
		cfg.Search.Enabled = false
	}
	if v := os.Getenv("AGORA_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("AGORA_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("AGORA_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("AGORA_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("AGORA_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("AGORA_AGENT_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Runtime.InitialAgents = n
		}
	}
}

// Validate checks cross-field invariants.
func Validate(cfg *Config) error {
	if cfg.Store.URL == "" {
		return fmt.Errorf("store.url is required")
	}
	switch cfg.LLM.Preference {
	case "auto", "cloudflare", "groq", "gemini", "together", "huggingface", "ollama":
	default:
		return fmt.Errorf("llm.preference %q is not a known provider", cfg.LLM.Preference)
	}
	if cfg.LLM.Ollama.URL == "" {
		return fmt.Errorf("llm.ollama.url is required")
	}
	if cfg.LLM.ProviderCooldown <= 0 {
		return fmt.Errorf("llm.provider_cooldown must be positive")
	}
	if cfg.LLM.DailyWindow <= 0 {
		return fmt.Errorf("llm.daily_window must be positive")
	}
	return nil
}
