package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/nikogura/portfolio-assistant/pkg/llm"
	"github.com/pkg/errors"
)

// Providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Defaults.
const (
	DefaultPortfolioPath      = "./portfolio-config.json"
	DefaultListenAddr         = ":8080"
	DefaultMaxDurationSeconds = 30
	DefaultResumeFile         = "resume.pdf"
	DotEnvFile                = ".env"
)

// Config represents the application settings.
type Config struct {
	PortfolioPath   string       `json:"portfolio_path"`
	ListenAddr      string       `json:"listen_addr"`
	Provider        string       `json:"provider"`
	GoogleAPIKey    string       `json:"google_api_key,omitempty"`
	AnthropicAPIKey string       `json:"anthropic_api_key,omitempty"`
	Models          ModelsConfig `json:"models,omitempty"`
	Chat            ChatConfig   `json:"chat"`
	Resume          ResumeConfig `json:"resume"`
}

// ModelsConfig holds model selection per provider.
type ModelsConfig struct {
	Gemini    string `json:"gemini,omitempty"`
	Anthropic string `json:"anthropic,omitempty"`
}

// ChatConfig bounds a single chat request.
type ChatConfig struct {
	MaxDurationSeconds int `json:"max_duration_seconds"`
	MaxSteps           int `json:"max_steps"`
	MaxTokens          int `json:"max_tokens"`
}

// ResumeConfig locates the downloadable resume. S3 takes precedence over Dir
// when a bucket is set.
type ResumeConfig struct {
	Dir  string   `json:"dir,omitempty"`
	File string   `json:"file,omitempty"`
	S3   S3Config `json:"s3,omitempty"`
}

// S3Config addresses the resume in an S3-compatible bucket (AWS or R2).
type S3Config struct {
	Bucket    string `json:"bucket,omitempty"`
	Key       string `json:"key,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
}

// GetGeminiModel returns the Gemini model or default if not specified.
func (c *Config) GetGeminiModel() (model string) {
	if c.Models.Gemini != "" {
		model = c.Models.Gemini
		return model
	}
	model = llm.GeminiModel
	return model
}

// GetAnthropicModel returns the Claude model or default if not specified.
func (c *Config) GetAnthropicModel() (model string) {
	if c.Models.Anthropic != "" {
		model = c.Models.Anthropic
		return model
	}
	model = llm.ClaudeModel
	return model
}

// MaxDuration returns the per-request chat ceiling.
func (c *Config) MaxDuration() (d time.Duration) {
	d = time.Duration(c.Chat.MaxDurationSeconds) * time.Second
	return d
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() (key string) {
	if c.Provider == ProviderAnthropic {
		key = c.AnthropicAPIKey
		return key
	}
	key = c.GoogleAPIKey
	return key
}

// DefaultPath returns $HOME/.portfolio-assistant/settings.json.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, ".portfolio-assistant", "settings.json")
	return path, err
}

// Load reads settings from file with .env and environment variable overrides.
// An explicit path must exist; a missing file at the default location yields
// defaults.
func Load(configPath string) (cfg Config, err error) {
	// Variables already in the environment win over .env entries.
	_ = godotenv.Load(DotEnvFile)

	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	var data []byte
	data, err = os.ReadFile(path)
	switch {
	case err == nil:
		err = json.Unmarshal(data, &cfg)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse settings file: %s", path)
			return cfg, err
		}
	case os.IsNotExist(err) && configPath == "":
		err = nil
	case os.IsNotExist(err):
		err = errors.Errorf("settings file not found: %s (run 'portfolio-assistant init' to create)", path)
		return cfg, err
	default:
		err = errors.Wrapf(err, "failed to read settings file: %s", path)
		return cfg, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "settings validation failed")
		return cfg, err
	}

	return cfg, err
}

func (c *Config) applyEnv() {
	if apiKey := os.Getenv("GOOGLE_GENERATIVE_AI_API_KEY"); apiKey != "" {
		c.GoogleAPIKey = apiKey
	}

	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		c.AnthropicAPIKey = apiKey
	}

	if provider := os.Getenv("PORTFOLIO_PROVIDER"); provider != "" {
		c.Provider = provider
	}

	if path := os.Getenv("PORTFOLIO_CONFIG"); path != "" {
		c.PortfolioPath = path
	}

	if port := os.Getenv("PORT"); port != "" {
		c.ListenAddr = ":" + port
	}
}

func (c *Config) applyDefaults() {
	if c.PortfolioPath == "" {
		c.PortfolioPath = DefaultPortfolioPath
	}

	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	if c.Provider == "" {
		c.Provider = ProviderGemini
	}

	if c.Chat.MaxDurationSeconds == 0 {
		c.Chat.MaxDurationSeconds = DefaultMaxDurationSeconds
	}

	if c.Chat.MaxSteps == 0 {
		c.Chat.MaxSteps = llm.DefaultMaxSteps
	}

	if c.Chat.MaxTokens == 0 {
		c.Chat.MaxTokens = llm.DefaultMaxTokens
	}

	if c.Resume.File == "" {
		c.Resume.File = DefaultResumeFile
	}
}

// Validate checks the settings. A missing API key is not an error here: the
// chat endpoint reports it per request.
func (c *Config) Validate() (err error) {
	if c.Provider != ProviderGemini && c.Provider != ProviderAnthropic {
		err = errors.Errorf("unknown provider %q (expected %s or %s)", c.Provider, ProviderGemini, ProviderAnthropic)
		return err
	}

	if c.Chat.MaxDurationSeconds <= 0 {
		err = errors.New("chat.max_duration_seconds must be positive")
		return err
	}

	if c.Chat.MaxSteps <= 0 {
		err = errors.New("chat.max_steps must be positive")
		return err
	}

	if c.Chat.MaxTokens <= 0 {
		err = errors.New("chat.max_tokens must be positive")
		return err
	}

	if c.Resume.S3.Bucket != "" && c.Resume.S3.Key == "" {
		err = errors.New("resume.s3.key is required when resume.s3.bucket is set")
		return err
	}

	return err
}

// InitConfig creates a default settings file.
func InitConfig(configPath string) (err error) {
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create settings directory: %s", dir)
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("settings file already exists: %s", path)
		return err
	}

	defaultConfig := Config{
		PortfolioPath: DefaultPortfolioPath,
		ListenAddr:    DefaultListenAddr,
		Provider:      ProviderGemini,
		GoogleAPIKey:  "your-google-api-key",
		Models: ModelsConfig{
			Gemini:    llm.GeminiModel,
			Anthropic: llm.ClaudeModel,
		},
		Chat: ChatConfig{
			MaxDurationSeconds: DefaultMaxDurationSeconds,
			MaxSteps:           llm.DefaultMaxSteps,
			MaxTokens:          llm.DefaultMaxTokens,
		},
		Resume: ResumeConfig{
			Dir:  "./public",
			File: DefaultResumeFile,
		},
	}

	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default settings")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write settings file: %s", path)
		return err
	}

	return err
}
