package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is looked up in the working directory when no explicit
	// path is given.
	ConfigFileName = "storage.yml"

	// StorageAPIPath is appended to the project URL to reach the storage
	// service.
	StorageAPIPath = "/storage/v1"
)

// Config holds everything the CLI and test suites need to reach a storage
// project: the project URL and API key, the pre-created test bucket, and
// the direct database connection used for policy management.
type Config struct {
	// SupabaseURL is the project base URL, without the /storage/v1 suffix.
	SupabaseURL string `yaml:"supabase_url"`

	// SupabaseKey is the project API key (a JWT; see pkg/keys).
	SupabaseKey string `yaml:"supabase_key"`

	// TestBucket names the bucket the test suites upload into.
	TestBucket string `yaml:"test_bucket"`

	// DatabaseURL is the Postgres connection string for policy management.
	DatabaseURL string `yaml:"database_url"`

	// LogLevel is "debug" for verbose output, empty otherwise.
	LogLevel string `yaml:"log_level"`

	// sources tracks where each value came from: default, file, or env.
	sources map[string]string
}

// envVars maps attribute names to the environment variables that set them.
var envVars = map[string]string{
	"supabase_url": "SUPABASE_URL",
	"supabase_key": "SUPABASE_KEY",
	"test_bucket":  "TEST_BUCKET",
	"database_url": "DATABASE_URL",
	"log_level":    "STORAGE_LOG_LEVEL",
}

// Attribute reports a configuration value and where it came from.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Load reads configuration in ascending precedence: a .env file in the
// working directory, then the optional YAML config file at path (or
// ./storage.yml when path is empty), then process environment variables.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env file is the common case.
	_ = godotenv.Load()

	cfg := &Config{sources: map[string]string{}}

	if path == "" {
		path = ConfigFileName
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		for name := range envVars {
			if cfg.attr(name) != "" {
				cfg.sources[name] = "file"
			}
		}
	case os.IsNotExist(err):
		// No config file; env only.
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	for name, env := range envVars {
		if value, ok := os.LookupEnv(env); ok && value != "" {
			cfg.set(name, value)
			cfg.sources[name] = "env"
		}
	}

	return cfg, nil
}

// Validate reports every missing or malformed required value at once.
func (c *Config) Validate() error {
	var problems []string

	if c.SupabaseURL == "" {
		problems = append(problems, "SUPABASE_URL is required")
	} else if u, err := url.Parse(c.SupabaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		problems = append(problems, fmt.Sprintf("SUPABASE_URL %q is not an http(s) URL", c.SupabaseURL))
	}

	if c.SupabaseKey == "" {
		problems = append(problems, "SUPABASE_KEY is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// StorageEndpoint returns the storage API root for pkg/storage.New.
func (c *Config) StorageEndpoint() string {
	return strings.TrimRight(c.SupabaseURL, "/") + StorageAPIPath
}

// Attributes lists all known attributes with their effective values and
// sources, secrets redacted.
func (c *Config) Attributes() []Attribute {
	names := []string{"supabase_url", "supabase_key", "test_bucket", "database_url", "log_level"}
	attrs := make([]Attribute, 0, len(names))
	for _, name := range names {
		value := c.attr(name)
		if value != "" && (name == "supabase_key" || name == "database_url") {
			value = redact(value)
		}
		source := c.sources[name]
		if source == "" {
			source = "default"
		}
		attrs = append(attrs, Attribute{Name: name, Value: value, Source: source})
	}
	return attrs
}

// FormatText returns a plain-text table of attributes, values and sources.
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"attributes": c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Config) attr(name string) string {
	switch name {
	case "supabase_url":
		return c.SupabaseURL
	case "supabase_key":
		return c.SupabaseKey
	case "test_bucket":
		return c.TestBucket
	case "database_url":
		return c.DatabaseURL
	case "log_level":
		return c.LogLevel
	}
	return ""
}

func (c *Config) set(name, value string) {
	switch name {
	case "supabase_url":
		c.SupabaseURL = value
	case "supabase_key":
		c.SupabaseKey = value
	case "test_bucket":
		c.TestBucket = value
	case "database_url":
		c.DatabaseURL = value
	case "log_level":
		c.LogLevel = value
	}
}

// redact keeps just enough of a secret to recognize it.
func redact(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
