package daylog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"
	"github.com/lixenwraith/daylog/formatter"
	"github.com/lixenwraith/daylog/sanitizer"
)

// Config holds all sink configuration values
type Config struct {
	// Files
	Directory      string `toml:"directory"`        // Folder holding one file per calendar day
	FileDateFormat string `toml:"file_date_format"` // Go layout for the day file base name
	Extension      string `toml:"extension"`        // Day file extension, without dot

	// History
	MaxLines     int64 `toml:"max_lines"`     // Capacity of the newest-first history buffer
	NotifyBuffer int64 `toml:"notify_buffer"` // Default subscriber channel size

	// Formatting
	TimestampFormat string `toml:"timestamp_format"` // Layout inside the line's brackets
	Sanitization    string `toml:"sanitization"`     // "raw", "txt", "json", "shell", or "single"

	// Consumer
	FlushIntervalMs    int64 `toml:"flush_interval_ms"`    // Consumer polling interval
	AppendRetries      int64 `toml:"append_retries"`       // Attempts per line before it is dropped
	EnablePeriodicSync bool  `toml:"enable_periodic_sync"` // fsync the day file after each non-empty cycle
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s"` // Stats line interval, 0 disables

	// Console mirror
	EnableStdout bool   `toml:"enable_stdout"` // Mirror written lines to stdout/stderr
	StdoutTarget string `toml:"stdout_target"` // "stdout" or "stderr"

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"` // Report append failures to stderr
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Directory:      "./logs",
	FileDateFormat: "2006-01-02",
	Extension:      "txt",

	MaxLines:     100,
	NotifyBuffer: 256,

	TimestampFormat: formatter.DefaultTimestampFormat,
	Sanitization:    string(sanitizer.PolicyRaw),

	FlushIntervalMs:    100,
	AppendRetries:      3,
	EnablePeriodicSync: false,
	HeartbeatIntervalS: 0,

	EnableStdout: false,
	StdoutTarget: "stdout",

	InternalErrorsToStderr: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from the [daylog] table of a TOML file
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	if err := loader.RegisterStruct("daylog.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	// A missing file leaves the registered defaults in place
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "daylog.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides keyed by toml tag
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig copies loader values into the struct fields named by their toml tags
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			// TOML decoders may hand back whole numbers as floats
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Directory) == "" {
		return fmtErrorf("directory cannot be empty")
	}

	if strings.TrimSpace(c.FileDateFormat) == "" {
		return fmtErrorf("file_date_format cannot be empty")
	}
	if strings.ContainsAny(c.FileDateFormat, `/\`) {
		return fmtErrorf("file_date_format must not contain path separators: %s", c.FileDateFormat)
	}

	if strings.HasPrefix(c.Extension, ".") {
		return fmtErrorf("extension should not start with dot: %s", c.Extension)
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	if !sanitizer.IsPolicy(c.Sanitization) {
		return fmtErrorf("invalid sanitization: '%s' (use raw, txt, json, shell, or single)", c.Sanitization)
	}

	if c.StdoutTarget != "stdout" && c.StdoutTarget != "stderr" {
		return fmtErrorf("invalid stdout_target: '%s' (use stdout or stderr)", c.StdoutTarget)
	}

	if c.MaxLines <= 0 {
		return fmtErrorf("max_lines must be positive: %d", c.MaxLines)
	}

	if c.NotifyBuffer <= 0 {
		return fmtErrorf("notify_buffer must be positive: %d", c.NotifyBuffer)
	}

	if c.FlushIntervalMs <= 0 {
		return fmtErrorf("flush_interval_ms must be positive: %d", c.FlushIntervalMs)
	}

	if c.AppendRetries <= 0 {
		return fmtErrorf("append_retries must be positive: %d", c.AppendRetries)
	}

	if c.HeartbeatIntervalS < 0 {
		return fmtErrorf("heartbeat_interval_s cannot be negative: %d", c.HeartbeatIntervalS)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// newFormatter builds the line formatter described by the configuration
func (c *Config) newFormatter() *formatter.Formatter {
	// Validate guarantees a known policy
	san, err := sanitizer.ForPolicy(c.Sanitization)
	if err != nil {
		san = sanitizer.New()
	}
	return formatter.New(san).TimestampFormat(c.TimestampFormat)
}

// locationChanged reports whether switching from old to c moves where day files are written
func (c *Config) locationChanged(old *Config) bool {
	return old.Directory != c.Directory ||
		old.FileDateFormat != c.FileDateFormat ||
		old.Extension != c.Extension
}
