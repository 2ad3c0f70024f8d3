// Package config loads gateway configuration from TOML files, environment
// variables and command-line flags, in that priority order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/lightrag-gateway/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	Gateway GatewayConfig        `toml:"gateway"`
	Logging common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// GatewayConfig contains the LightRAG backend routing settings.
//
// Single-instance mode uses BaseURL/APIKey/ToolPrefix. Multi-instance mode
// uses Backends, a comma-separated list of namespace:url:key triples (the key
// is optional). When Backends is set it takes precedence over BaseURL.
type GatewayConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	ToolPrefix     string `toml:"tool_prefix"`
	Backends       string `toml:"backends"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Backend is one parsed routing entry: a namespace bound to a LightRAG
// instance URL and optional API key.
type Backend struct {
	Namespace string
	BaseURL   string
	APIKey    string
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "LightRAG-Gateway",
			Host: "0.0.0.0",
			Port: 9626,
		},
		Gateway: GatewayConfig{
			BaseURL:        "http://localhost:9621",
			TimeoutSeconds: 30,
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/lightrag-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// A missing file is not an error; a malformed one is.
func LoadFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			// File not found — use defaults
		} else {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies LIGHTRAG_* environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIGHTRAG_BASE_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("LIGHTRAG_API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := os.Getenv("LIGHTRAG_TOOL_PREFIX"); v != "" {
		cfg.Gateway.ToolPrefix = v
	}
	if v := os.Getenv("LIGHTRAG_BACKENDS"); v != "" {
		cfg.Gateway.Backends = v
	}
	if v := os.Getenv("LIGHTRAG_TIMEOUT_SECONDS"); v != "" {
		if t, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.TimeoutSeconds = t
		}
	}
	if v := os.Getenv("LIGHTRAG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIGHTRAG_SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("LIGHTRAG_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(cfg *Config, port int, host string) {
	if port > 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
}

// Validate checks that the configuration can produce a usable route table.
// Called at startup so malformed configuration fails fast.
func (c *Config) Validate() error {
	if c.Gateway.TimeoutSeconds <= 0 {
		return fmt.Errorf("gateway timeout_seconds must be positive, got %d", c.Gateway.TimeoutSeconds)
	}
	if _, err := c.Backends(); err != nil {
		return err
	}
	return nil
}

// Backends returns the parsed routing entries. Multi-instance configuration
// (Gateway.Backends) wins over the single-instance fields. In single-instance
// mode the entry's namespace is the configured tool prefix, or "default" when
// no prefix is set.
func (c *Config) Backends() ([]Backend, error) {
	if strings.TrimSpace(c.Gateway.Backends) != "" {
		return parseBackends(c.Gateway.Backends)
	}

	if err := validateBaseURL(c.Gateway.BaseURL); err != nil {
		return nil, fmt.Errorf("gateway base_url: %w", err)
	}
	ns := c.Gateway.ToolPrefix
	if ns == "" {
		ns = "default"
	}
	if err := validateNamespace(ns); err != nil {
		return nil, fmt.Errorf("gateway tool_prefix: %w", err)
	}
	return []Backend{{
		Namespace: ns,
		BaseURL:   strings.TrimRight(c.Gateway.BaseURL, "/"),
		APIKey:    c.Gateway.APIKey,
	}}, nil
}

// parseBackends parses a comma-separated list of namespace:url:key triples.
// URLs themselves contain colons (scheme, port), so the key is only split off
// when the remainder is not a valid URL on its own.
func parseBackends(s string) ([]Backend, error) {
	var backends []Backend
	seen := make(map[string]bool)

	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		b, err := parseBackendTriple(item)
		if err != nil {
			return nil, err
		}
		if seen[b.Namespace] {
			return nil, fmt.Errorf("duplicate backend namespace %q", b.Namespace)
		}
		seen[b.Namespace] = true
		backends = append(backends, b)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("backends list %q contains no entries", s)
	}
	return backends, nil
}

func parseBackendTriple(item string) (Backend, error) {
	i := strings.Index(item, ":")
	if i <= 0 {
		return Backend{}, fmt.Errorf("backend entry %q must be namespace:url[:key]", item)
	}

	ns := item[:i]
	rest := item[i+1:]
	if err := validateNamespace(ns); err != nil {
		return Backend{}, fmt.Errorf("backend entry %q: %w", item, err)
	}

	// No key: the whole remainder is the URL.
	if validateBaseURL(rest) == nil {
		return Backend{Namespace: ns, BaseURL: strings.TrimRight(rest, "/")}, nil
	}

	// Otherwise the key follows the last colon.
	if j := strings.LastIndex(rest, ":"); j > 0 {
		urlPart, key := rest[:j], rest[j+1:]
		if validateBaseURL(urlPart) == nil {
			return Backend{Namespace: ns, BaseURL: strings.TrimRight(urlPart, "/"), APIKey: key}, nil
		}
	}

	return Backend{}, fmt.Errorf("backend entry %q has no valid URL", item)
}

func validateNamespace(ns string) error {
	if ns == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	for _, r := range ns {
		if unicode.IsSpace(r) {
			return fmt.Errorf("namespace %q must not contain whitespace", ns)
		}
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("URL %q must be absolute http(s)", raw)
	}
	return nil
}
