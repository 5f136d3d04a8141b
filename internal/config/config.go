package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no --config path is given and the file exists.
const DefaultFile = "seance.yaml"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Archive  ArchiveConfig  `yaml:"archive"`
	LLM      LLMConfig      `yaml:"llm"`
	Medium   MediumConfig   `yaml:"medium"`
	Milvus   MilvusConfig   `yaml:"milvus"`
	Embedder EmbedderConfig `yaml:"embedder"`
	App      AppConfig      `yaml:"app"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ArchiveConfig struct {
	Path           string `yaml:"path"`
	PersonaPath    string `yaml:"persona_path"`
	DefaultKeyword string `yaml:"default_keyword"`
}

// LLMConfig selects the generation provider. The API key for the selected
// provider comes from GEMINI_API_KEY or OPENAI_API_KEY.
type LLMConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
	GeminiAPIKey string `yaml:"-"`
	OpenAIAPIKey string `yaml:"-"`
}

type MediumConfig struct {
	OpeningPhrase string `yaml:"opening_phrase"`
	MaxWords      int    `yaml:"max_words"`
}

type MilvusConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
}

type EmbedderConfig struct {
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

type AppConfig struct {
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// APIKey returns the key for the configured provider, or "" if unset.
func (c LLMConfig) APIKey() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "5000",
			AllowedOrigins: []string{"*"},
		},
		Archive: ArchiveConfig{
			Path:           "gopher_archive.json",
			PersonaPath:    "../.kiro/steering_docs/medium_persona.md",
			DefaultKeyword: "connection",
		},
		LLM: LLMConfig{
			Provider: ProviderGemini,
		},
		Medium: MediumConfig{
			OpeningPhrase: "Hark, the Gopher nexus coughs up a cipher...",
			MaxWords:      85,
		},
		Milvus: MilvusConfig{
			Address:    "localhost:19530",
			Collection: "gopher_archive",
		},
		Embedder: EmbedderConfig{
			Model:     "text-embedding-3-small",
			Dimension: 1536,
		},
		App: AppConfig{
			Environment: "development",
			Version:     "1.0.0",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of increasing precedence. path may be empty, in
// which case seance.yaml is used if present.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	applyModelDefault(&cfg.LLM)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}

	cfg.Archive.Path = getEnv("ARCHIVE_PATH", cfg.Archive.Path)
	cfg.Archive.PersonaPath = getEnv("PERSONA_PATH", cfg.Archive.PersonaPath)
	cfg.Archive.DefaultKeyword = getEnv("DEFAULT_KEYWORD", cfg.Archive.DefaultKeyword)

	cfg.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", cfg.LLM.Provider))
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.LLM.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	cfg.Medium.OpeningPhrase = getEnv("OPENING_PHRASE", cfg.Medium.OpeningPhrase)
	cfg.Medium.MaxWords = getEnvAsInt("MAX_WORDS", cfg.Medium.MaxWords)

	cfg.Milvus.Address = getEnv("MILVUS_ADDRESS", cfg.Milvus.Address)
	cfg.Milvus.Collection = getEnv("MILVUS_COLLECTION", cfg.Milvus.Collection)

	cfg.Embedder.Model = getEnv("EMBEDDING_MODEL", cfg.Embedder.Model)
	cfg.Embedder.Dimension = getEnvAsInt("EMBEDDING_DIMENSION", cfg.Embedder.Dimension)

	cfg.App.Environment = getEnv("APP_ENV", cfg.App.Environment)
	cfg.App.Version = getEnv("APP_VERSION", cfg.App.Version)
}

func applyModelDefault(c *LLMConfig) {
	if c.Model != "" {
		return
	}
	switch c.Provider {
	case ProviderOpenAI:
		c.Model = "gpt-4o"
	default:
		c.Model = "gemini-2.5-flash"
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("%w: PORT is required", ErrInvalidConfig)
	}
	if c.Archive.Path == "" {
		return fmt.Errorf("%w: ARCHIVE_PATH is required", ErrInvalidConfig)
	}
	if c.Medium.MaxWords <= 0 {
		return fmt.Errorf("%w: MAX_WORDS must be positive, got %d", ErrInvalidConfig, c.Medium.MaxWords)
	}
	if c.Medium.OpeningPhrase == "" {
		return fmt.Errorf("%w: OPENING_PHRASE is required", ErrInvalidConfig)
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unknown LLM_PROVIDER %q (supported: gemini, openai)", ErrInvalidConfig, c.LLM.Provider)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
