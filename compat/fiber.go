package compat

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lixenwraith/daylog"
)

var _ io.Writer = (*FiberAdapter)(nil)

// FiberAdapter wraps a daylog.Sink with the method set of Fiber's AllLogger
// (plain, printf-style and key/value variants). Fiber is matched structurally,
// so the adapter needs no Fiber import.
type FiberAdapter struct {
	sink         *daylog.Sink
	minLevel     Level
	fatalHandler func(msg string)
	panicHandler func(msg string)
}

// NewFiberAdapter creates a new Fiber-compatible logger adapter
func NewFiberAdapter(sink *daylog.Sink, opts ...FiberOption) *FiberAdapter {
	adapter := &FiberAdapter{
		sink:     sink,
		minLevel: LevelDebug,
		fatalHandler: func(msg string) {
			os.Exit(1)
		},
		panicHandler: func(msg string) {
			panic(msg)
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FiberOption allows customizing adapter behavior
type FiberOption func(*FiberAdapter)

// WithFiberFatalHandler sets a custom fatal handler
func WithFiberFatalHandler(handler func(string)) FiberOption {
	return func(a *FiberAdapter) {
		a.fatalHandler = handler
	}
}

// WithFiberPanicHandler sets a custom panic handler
func WithFiberPanicHandler(handler func(string)) FiberOption {
	return func(a *FiberAdapter) {
		a.panicHandler = handler
	}
}

// WithFiberMinLevel discards fiber lines below level
func WithFiberMinLevel(level Level) FiberOption {
	return func(a *FiberAdapter) {
		a.minLevel = level
	}
}

func (a *FiberAdapter) write(level Level, msg string) {
	if level < a.minLevel {
		return
	}
	_ = a.sink.Write(line(level, "fiber", msg))
}

// terminate writes unconditionally, flushes, then hands msg to handler
func (a *FiberAdapter) terminate(kind, msg string, handler func(string)) {
	_ = a.sink.Write(line(LevelError, "fiber", kind+": "+msg))
	_ = a.sink.Flush(100 * time.Millisecond)
	if handler != nil {
		handler(msg)
	}
}

// withFields appends "key=value" pairs to msg; a dangling key gets no value
func withFields(msg string, keysAndValues []any) string {
	if len(keysAndValues) == 0 {
		return msg
	}
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		sb.WriteByte(' ')
		sb.WriteString(fmt.Sprint(keysAndValues[i]))
		if i+1 < len(keysAndValues) {
			sb.WriteByte('=')
			sb.WriteString(fmt.Sprint(keysAndValues[i+1]))
		}
	}
	return sb.String()
}

func (a *FiberAdapter) Trace(v ...any) { a.write(LevelDebug, "trace: "+fmt.Sprint(v...)) }
func (a *FiberAdapter) Debug(v ...any) { a.write(LevelDebug, fmt.Sprint(v...)) }
func (a *FiberAdapter) Info(v ...any) { a.write(LevelInfo, fmt.Sprint(v...)) }
func (a *FiberAdapter) Warn(v ...any) { a.write(LevelWarn, fmt.Sprint(v...)) }
func (a *FiberAdapter) Error(v ...any) { a.write(LevelError, fmt.Sprint(v...)) }
func (a *FiberAdapter) Fatal(v ...any) { a.terminate("fatal", fmt.Sprint(v...), a.fatalHandler) }
func (a *FiberAdapter) Panic(v ...any) { a.terminate("panic", fmt.Sprint(v...), a.panicHandler) }

func (a *FiberAdapter) Tracef(format string, v ...any) {
	a.write(LevelDebug, "trace: "+fmt.Sprintf(format, v...))
}
func (a *FiberAdapter) Debugf(format string, v ...any) { a.write(LevelDebug, fmt.Sprintf(format, v...)) }
func (a *FiberAdapter) Infof(format string, v ...any) { a.write(LevelInfo, fmt.Sprintf(format, v...)) }
func (a *FiberAdapter) Warnf(format string, v ...any) { a.write(LevelWarn, fmt.Sprintf(format, v...)) }
func (a *FiberAdapter) Errorf(format string, v ...any) { a.write(LevelError, fmt.Sprintf(format, v...)) }
func (a *FiberAdapter) Fatalf(format string, v ...any) {
	a.terminate("fatal", fmt.Sprintf(format, v...), a.fatalHandler)
}
func (a *FiberAdapter) Panicf(format string, v ...any) {
	a.terminate("panic", fmt.Sprintf(format, v...), a.panicHandler)
}

func (a *FiberAdapter) Tracew(msg string, keysAndValues ...any) {
	a.write(LevelDebug, "trace: "+withFields(msg, keysAndValues))
}
func (a *FiberAdapter) Debugw(msg string, keysAndValues ...any) {
	a.write(LevelDebug, withFields(msg, keysAndValues))
}
func (a *FiberAdapter) Infow(msg string, keysAndValues ...any) {
	a.write(LevelInfo, withFields(msg, keysAndValues))
}
func (a *FiberAdapter) Warnw(msg string, keysAndValues ...any) {
	a.write(LevelWarn, withFields(msg, keysAndValues))
}
func (a *FiberAdapter) Errorw(msg string, keysAndValues ...any) {
	a.write(LevelError, withFields(msg, keysAndValues))
}
func (a *FiberAdapter) Fatalw(msg string, keysAndValues ...any) {
	a.terminate("fatal", withFields(msg, keysAndValues), a.fatalHandler)
}
func (a *FiberAdapter) Panicw(msg string, keysAndValues ...any) {
	a.terminate("panic", withFields(msg, keysAndValues), a.panicHandler)
}

// Write lets the adapter stand in as an io.Writer, e.g. for Fiber's logger
// middleware output. Each call becomes one INFO line.
func (a *FiberAdapter) Write(p []byte) (n int, err error) {
	a.write(LevelInfo, strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
