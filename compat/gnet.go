package compat

import (
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/daylog"
	"github.com/panjf2000/gnet/v2/pkg/logging"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter wraps a daylog.Sink to implement the gnet logging.Logger interface
type GnetAdapter struct {
	sink         *daylog.Sink
	minLevel     Level
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(sink *daylog.Sink, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		sink:     sink,
		minLevel: LevelDebug,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// WithMinLevel discards gnet lines below level
func WithMinLevel(level Level) GnetOption {
	return func(a *GnetAdapter) {
		a.minLevel = level
	}
}

func (a *GnetAdapter) write(level Level, format string, args []any) {
	if level < a.minLevel {
		return
	}
	_ = a.sink.Write(line(level, "gnet", fmt.Sprintf(format, args...)))
}

// Debugf writes a debug line with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.write(LevelDebug, format, args)
}

// Infof writes an info line with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.write(LevelInfo, format, args)
}

// Warnf writes a warn line with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.write(LevelWarn, format, args)
}

// Errorf writes an error line with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.write(LevelError, format, args)
}

// Fatalf writes an error line and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_ = a.sink.Write(line(LevelError, "gnet", "fatal: "+msg))

	// Ensure the line is on disk before exit
	_ = a.sink.Flush(100 * time.Millisecond)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
