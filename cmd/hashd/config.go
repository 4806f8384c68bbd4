// config.go - Configuration management for the hashing daemon
package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"gopkg.in/yaml.v3"

	"honkdrop/internal/hashsvc"
)

// Config represents the application configuration
type Config struct {
	// Server settings
	ListenAddr             string `json:"listen_addr" yaml:"listen_addr"`
	ReadTimeoutSeconds     int    `json:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `json:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`

	// Logging
	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file" yaml:"log_file"`

	// Request limits
	MaxInputs      int   `json:"max_inputs" yaml:"max_inputs"`
	MaxOutLen      int   `json:"max_out_len" yaml:"max_out_len"`
	MaxBatch       int   `json:"max_batch" yaml:"max_batch"`
	MaxBodyBytes   int64 `json:"max_body_bytes" yaml:"max_body_bytes"`
	MaxConcurrency int   `json:"max_concurrency" yaml:"max_concurrency"`

	// Rate limiting, per client address. A zero burst disables it.
	RateLimitBurst    int `json:"rate_limit_burst" yaml:"rate_limit_burst"`
	RateLimitRefill   int `json:"rate_limit_refill" yaml:"rate_limit_refill"`
	RateLimitPeriodMs int `json:"rate_limit_period_ms" yaml:"rate_limit_period_ms"`

	// Security
	EnableAudit  bool   `json:"enable_audit" yaml:"enable_audit"`
	AuditLogPath string `json:"audit_log_path" yaml:"audit_log_path"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	opts := hashsvc.DefaultOptions()
	return &Config{
		ListenAddr:             "127.0.0.1:8545",
		ReadTimeoutSeconds:     10,
		WriteTimeoutSeconds:    30,
		ShutdownTimeoutSeconds: 15,
		LogLevel:               "info",
		LogFile:                "",
		MaxInputs:              opts.MaxInputs,
		MaxOutLen:              opts.MaxOutLen,
		MaxBatch:               opts.MaxBatch,
		MaxBodyBytes:           opts.MaxBodyBytes,
		MaxConcurrency:         opts.MaxConcurrency,
		RateLimitBurst:         opts.RateLimit.Burst,
		RateLimitRefill:        opts.RateLimit.Refill,
		RateLimitPeriodMs:      int(opts.RateLimit.Period / time.Millisecond),
		EnableAudit:            false,
		AuditLogPath:           "audit.log",
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig loads configuration from file or creates default. Fields missing
// from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, errors.WrapPrefix(err, "failed to open config file", 0)
		}
		defer file.Close()

		config := DefaultConfig()
		if err := decodeConfig(file, isYAML(configPath), config); err != nil {
			return nil, errors.WrapPrefix(err, "failed to decode config file", 0)
		}
		return config, nil
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, errors.WrapPrefix(err, "failed to save default config", 0)
	}
	return config, nil
}

func decodeConfig(r io.Reader, yamlFormat bool, config *Config) error {
	if yamlFormat {
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(config); err != nil && err != io.EOF {
			return err
		}
		return nil
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(config)
}

// SaveConfig saves configuration to file, as YAML when the path ends in .yaml or .yml
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapPrefix(err, "failed to create config directory", 0)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return errors.WrapPrefix(err, "failed to create config file", 0)
	}
	defer file.Close()

	if isYAML(configPath) {
		enc := yaml.NewEncoder(file)
		enc.SetIndent(2)
		if err := enc.Encode(config); err != nil {
			return errors.WrapPrefix(err, "failed to encode config", 0)
		}
		return enc.Close()
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return errors.WrapPrefix(err, "failed to encode config", 0)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.Errorf("listen_addr must be set")
	}
	if c.ReadTimeoutSeconds <= 0 || c.WriteTimeoutSeconds <= 0 || c.ShutdownTimeoutSeconds <= 0 {
		return errors.Errorf("timeouts must be positive")
	}
	if c.EnableAudit && c.AuditLogPath == "" {
		return errors.Errorf("audit_log_path must be set when audit is enabled")
	}
	if c.RateLimitPeriodMs < 0 {
		return errors.Errorf("rate_limit_period_ms must not be negative")
	}
	return c.Options("").Validate()
}

// Options converts the request limits to service options.
func (c *Config) Options(version string) hashsvc.Options {
	return hashsvc.Options{
		Version:        version,
		MaxInputs:      c.MaxInputs,
		MaxOutLen:      c.MaxOutLen,
		MaxBatch:       c.MaxBatch,
		MaxConcurrency: c.MaxConcurrency,
		MaxBodyBytes:   c.MaxBodyBytes,
		RateLimit: hashsvc.RateLimitOptions{
			Burst:  c.RateLimitBurst,
			Refill: c.RateLimitRefill,
			Period: time.Duration(c.RateLimitPeriodMs) * time.Millisecond,
		},
	}
}

func (c *Config) auditPath() string {
	if !c.EnableAudit {
		return ""
	}
	return c.AuditLogPath
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
