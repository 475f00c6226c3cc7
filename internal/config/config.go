package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/david-caro/inspire-matcher/internal/compiler"
	"github.com/david-caro/inspire-matcher/internal/domain/match"
)

// Config holds the matcher configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Matcher MatcherConfig `yaml:"matcher"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// MatcherConfig holds the match algorithms catalogue.
type MatcherConfig struct {
	CollectionsField string            `yaml:"collections_field"`
	Algorithms       []AlgorithmConfig `yaml:"algorithms"`
}

// AlgorithmConfig is one named algorithm: an ordered list of match specifications
// in their raw form, e.g. {type: exact, path: ..., search_path: ...}.
type AlgorithmConfig struct {
	Name    string           `yaml:"name"`
	Queries []map[string]any `yaml:"queries"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML file.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates configuration data.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Matcher.CollectionsField == "" {
		c.Matcher.CollectionsField = compiler.DefaultCollectionsField
	}
}

// Validate checks the configuration for correctness, including every match specification.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	seen := make(map[string]struct{}, len(c.Matcher.Algorithms))
	for i, a := range c.Matcher.Algorithms {
		if a.Name == "" {
			return fmt.Errorf("matcher.algorithms[%d].name is required", i)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("matcher.algorithms[%d]: duplicate algorithm name %q", i, a.Name)
		}
		seen[a.Name] = struct{}{}
		if _, err := match.DecodeAlgorithm(a.Name, a.Queries); err != nil {
			return fmt.Errorf("matcher.algorithms[%d]: %w", i, err)
		}
	}
	return nil
}

// Options returns the compiler options.
func (c *Config) Options() compiler.Options {
	return compiler.Options{CollectionsField: c.Matcher.CollectionsField}
}

// Algorithms decodes the configured algorithms.
func (c *Config) Algorithms() ([]match.Algorithm, error) {
	out := make([]match.Algorithm, 0, len(c.Matcher.Algorithms))
	for _, a := range c.Matcher.Algorithms {
		alg, err := match.DecodeAlgorithm(a.Name, a.Queries)
		if err != nil {
			return nil, err
		}
		out = append(out, alg)
	}
	return out, nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(m []byte) []byte {
		expr := string(m[2 : len(m)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
