package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file, applies defaults and
// environment variable overrides. A missing file is not an error: the
// defaults plus environment overrides are a valid configuration on their own,
// since the webhook secret and both forward URLs are optional.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if configPath == "" {
		configPath = DiscoverConfigPath()
	}

	if configPath != "" {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("config file not found: %s\n"+
				"Hint: Check the path or run with --config flag", absPath)
		}
		if info.IsDir() {
			absPath = filepath.Join(absPath, "config.yaml")
			if _, err := os.Stat(absPath); err != nil {
				return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
			}
		}

		if err := loadConfigFile(absPath, cfg); err != nil {
			return nil, err
		}

		// Hash-verify the config file when a .checksums manifest is present.
		if err := verifyConfigHash(absPath); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DiscoverConfigPath finds the config file by checking standard locations.
// Priority order: $WHATSGW_CONFIG, ~/.config/whatsgw/config.yaml,
// /etc/whatsgw/config.yaml, ./config.yaml. Returns "" when none exists.
func DiscoverConfigPath() string {
	if p := os.Getenv("WHATSGW_CONFIG"); p != "" {
		return p
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userConfig := filepath.Join(homeDir, ".config", "whatsgw", "config.yaml")
		if _, err := os.Stat(userConfig); err == nil {
			return userConfig
		}
	}

	systemConfig := "/etc/whatsgw/config.yaml"
	if _, err := os.Stat(systemConfig); err == nil {
		return systemConfig
	}

	legacyConfig := "./config.yaml"
	if _, err := os.Stat(legacyConfig); err == nil {
		return legacyConfig
	}

	return ""
}

// loadConfigFile loads and parses a single config file into cfg.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Apply environment variable interpolation
	interpolated := interpolateEnv(string(data))

	if err := yaml.Unmarshal([]byte(interpolated), cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// applyEnv applies environment variable overrides. Env vars always win over
// file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("WHATSGW_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("WHATSGW_LOG_LEVEL"); v != "" {
		cfg.Service.LogLevel = v
	}
	if v := os.Getenv("WHATSAPP_WEBHOOK_SECRET"); v != "" {
		cfg.Webhook.Secret = v
	}
	if v := os.Getenv("N8N_WHATSAPP_MESSAGE_WEBHOOK_URL"); v != "" {
		cfg.Forward.MessageURL = v
	}
	if v := os.Getenv("N8N_ALERT_WEBHOOK_URL"); v != "" {
		cfg.Forward.AlertURL = v
	}
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables resolve to empty strings: the secret and forward URLs
// are optional, so an unset variable means "feature disabled", not an error.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return ""
	})
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(cfg.Service.LogLevel)] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}

	if cfg.Listen == "" {
		return fmt.Errorf("listen is required")
	}

	if !strings.HasPrefix(cfg.Webhook.Path, "/") {
		return fmt.Errorf("webhook.path must start with / (got %q)", cfg.Webhook.Path)
	}

	if cfg.Webhook.SignatureHeader == "" {
		return fmt.Errorf("webhook.signature_header is required")
	}

	if _, err := ParseBodySize(cfg.Webhook.MaxBodySize); err != nil {
		return fmt.Errorf("webhook.max_body_size %q: %w", cfg.Webhook.MaxBodySize, err)
	}

	if _, err := ParseTimeout(cfg.Forward.Timeout); err != nil {
		return fmt.Errorf("forward.timeout %q: %w", cfg.Forward.Timeout, err)
	}

	return nil
}

// ParseBodySize parses size strings like "1MB", "2048576", "1048576" to bytes.
// Returns DefaultMaxBodySize if empty.
func ParseBodySize(size string) (int64, error) {
	if size == "" {
		return DefaultMaxBodySize, nil
	}

	// Handle unit suffixes (KB, MB, GB)
	upper := strings.ToUpper(size)
	multiplier := int64(1)

	if strings.HasSuffix(upper, "KB") {
		multiplier = 1024
		size = strings.TrimSuffix(upper, "KB")
	} else if strings.HasSuffix(upper, "MB") {
		multiplier = 1024 * 1024
		size = strings.TrimSuffix(upper, "MB")
	} else if strings.HasSuffix(upper, "GB") {
		multiplier = 1024 * 1024 * 1024
		size = strings.TrimSuffix(upper, "GB")
	}

	// Parse numeric value
	value, err := strconv.ParseInt(strings.TrimSpace(size), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}

	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	result := value * multiplier
	if result < 0 { // Check for overflow
		return 0, fmt.Errorf("size too large")
	}

	return result, nil
}

// ParseTimeout parses duration strings like "10s" or "1m30s".
// Returns DefaultForwardTimeout if empty.
func ParseTimeout(timeout string) (time.Duration, error) {
	if timeout == "" {
		return DefaultForwardTimeout, nil
	}

	d, err := time.ParseDuration(timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}

	return d, nil
}
