package daylog

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyConfigString applies string key-value overrides to the sink's current configuration.
// Each override should be in the format "key=value".
// The configuration is cloned before modification.
//
// Example:
//
//	sink := daylog.NewSink()
//	err := sink.ApplyConfigString(
//	    "directory=/var/log/detector",
//	    "max_lines=200",
//	    "sanitization=txt",
//	)
func (s *Sink) ApplyConfigString(overrides ...string) error {
	cfg := s.getConfig().Clone()

	var errs []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return combineConfigErrors(errs)
	}

	return s.ApplyConfig(cfg)
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var sb strings.Builder
	sb.WriteString("daylog: multiple configuration errors:")
	for i, err := range errs {
		errMsg := strings.TrimPrefix(err.Error(), "daylog: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	// Files
	case "directory":
		cfg.Directory = value
	case "file_date_format":
		cfg.FileDateFormat = value
	case "extension":
		cfg.Extension = value

	// History
	case "max_lines":
		return parseInt(&cfg.MaxLines, key, value)
	case "notify_buffer":
		return parseInt(&cfg.NotifyBuffer, key, value)

	// Formatting
	case "timestamp_format":
		cfg.TimestampFormat = value
	case "sanitization":
		cfg.Sanitization = value

	// Consumer
	case "flush_interval_ms":
		return parseInt(&cfg.FlushIntervalMs, key, value)
	case "append_retries":
		return parseInt(&cfg.AppendRetries, key, value)
	case "enable_periodic_sync":
		return parseBool(&cfg.EnablePeriodicSync, key, value)
	case "heartbeat_interval_s":
		return parseInt(&cfg.HeartbeatIntervalS, key, value)

	// Console mirror
	case "enable_stdout":
		return parseBool(&cfg.EnableStdout, key, value)
	case "stdout_target":
		cfg.StdoutTarget = value

	// Internal error handling
	case "internal_errors_to_stderr":
		return parseBool(&cfg.InternalErrorsToStderr, key, value)

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}

func parseInt(dst *int64, key, value string) error {
	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
	}
	*dst = intVal
	return nil
}

func parseBool(dst *bool, key, value string) error {
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
	}
	*dst = boolVal
	return nil
}
