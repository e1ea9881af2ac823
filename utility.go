package daylog

import (
	"fmt"
	"os"
	"strings"
)

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "daylog: ") {
		format = "daylog: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// internalLog writes sink diagnostics to stderr, if enabled
func (s *Sink) internalLog(format string, args ...any) {
	if !s.getConfig().InternalErrorsToStderr {
		return
	}

	if !strings.HasPrefix(format, "daylog: ") {
		format = "daylog: " + format
	}

	fmt.Fprintf(os.Stderr, format, args...)
}

// reportError routes a consumer-side failure to stderr and the registered handler
func (s *Sink) reportError(err error) {
	s.internalLog("%v\n", err)
	if h := s.errorHandler.Load(); h != nil {
		(*h)(err)
	}
}
