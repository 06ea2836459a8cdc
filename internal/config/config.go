package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/buildwise-ai/buildwise/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAttemptTimeoutMs = 30000
	defaultCooldownMs       = 15000
	defaultMaxConcurrency   = 8
	defaultCacheTTLSeconds  = 24 * 60 * 60
	defaultMemoryCapacity   = 1000
)

// Config represents the complete decision-core configuration
type Config struct {
	Providers map[string]models.ProviderConfig `yaml:"providers"`
	Fallback  models.FallbackConfig            `yaml:"fallback"`
	Cache     models.CacheConfig               `yaml:"cache"`
	LogLevel  string                           `yaml:"log_level,omitempty"`
}

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	// Validate and clean the file path to prevent directory traversal
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadEnvFiles loads environment variables from .env files in order of precedence
// Loads files in the order provided (first has highest priority)
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err == nil {
				fmt.Printf("Loaded environment variables from %s\n", envFile)
			}
		}
	}
}

// New creates a new Config instance by loading from the specified config file path
func New(configPath string) (*Config, error) {
	return LoadFromFile(configPath)
}

// normalize lowercases provider map keys for case-insensitive lookups and
// fills in defaults for optional fields.
func (c *Config) normalize() {
	if c.Providers != nil {
		normalized := make(map[string]models.ProviderConfig, len(c.Providers))
		for key, value := range c.Providers {
			name := strings.ToLower(key)
			if value.Type == "" {
				value.Type = name
			}
			if len(value.Capabilities) == 0 {
				value.Capabilities = []models.Capability{models.CapabilityTextCompletion}
			}
			normalized[name] = value
		}
		c.Providers = normalized
	}

	if c.Fallback.AttemptTimeoutMs <= 0 {
		c.Fallback.AttemptTimeoutMs = defaultAttemptTimeoutMs
	}
	if c.Fallback.CooldownMs <= 0 {
		c.Fallback.CooldownMs = defaultCooldownMs
	}
	if c.Fallback.MaxConcurrency <= 0 {
		c.Fallback.MaxConcurrency = defaultMaxConcurrency
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = models.CacheBackendMemory
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = defaultCacheTTLSeconds
	}
	if c.Cache.Backend == models.CacheBackendMemory && c.Cache.Capacity <= 0 {
		c.Cache.Capacity = defaultMemoryCapacity
	}
}

// Validate checks the configuration for unusable combinations.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("no providers configured")
	}

	for name, pc := range c.Providers {
		switch pc.Type {
		case "openai", "anthropic", "gemini":
		default:
			return fmt.Errorf("provider %s: unsupported type %q (supported: openai, anthropic, gemini)", name, pc.Type)
		}
	}

	switch c.Cache.Backend {
	case models.CacheBackendMemory:
	case models.CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache backend redis requires redis_url")
		}
	case models.CacheBackendSQL:
		if c.Cache.Database == nil {
			return fmt.Errorf("cache backend sql requires a database block")
		}
	default:
		return fmt.Errorf("unsupported cache backend: %s (supported: memory, redis, sql)", c.Cache.Backend)
	}

	return nil
}

// GetProviderConfig returns the configuration for a specific provider
func (c *Config) GetProviderConfig(provider string) (models.ProviderConfig, bool) {
	pc, exists := c.Providers[strings.ToLower(provider)]
	return pc, exists
}

// GetProviderAPIKey returns the API key for a specific provider
func (c *Config) GetProviderAPIKey(provider string) string {
	if pc, exists := c.GetProviderConfig(provider); exists {
		return pc.APIKey
	}
	return ""
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	// Pattern matches ${VAR_NAME} or ${VAR_NAME:-default_value}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		submatches := re.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""

		if len(submatches) > 2 && submatches[2] != "" {
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
