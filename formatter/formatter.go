// Package formatter renders day-file lines and turns loosely typed arguments
// into message text.
package formatter

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/lixenwraith/daylog/sanitizer"
)

// DefaultTimestampFormat renders HH:mm:ss plus tenths of a second
const DefaultTimestampFormat = "15:04:05.0"

// Formatter builds "[<timestamp>] <message>\n" lines.
// Configuration methods return the receiver for chaining; once configured a
// Formatter holds no mutable state and is safe for concurrent use.
type Formatter struct {
	sanitizer       *sanitizer.Sanitizer
	timestampFormat string
}

// New creates a formatter with the provided sanitizer, passthrough when omitted
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else {
		san = sanitizer.New()
	}
	return &Formatter{
		sanitizer:       san,
		timestampFormat: DefaultTimestampFormat,
	}
}

// TimestampFormat sets the time layout used inside the brackets
func (f *Formatter) TimestampFormat(format string) *Formatter {
	if format != "" {
		f.timestampFormat = format
	}
	return f
}

// Line formats a single day-file line including the trailing newline
func (f *Formatter) Line(timestamp time.Time, message string) string {
	msg := f.sanitizer.Sanitize(message)

	buf := make([]byte, 0, len(msg)+len(f.timestampFormat)+4)
	buf = append(buf, '[')
	buf = timestamp.AppendFormat(buf, f.timestampFormat)
	buf = append(buf, ']', ' ')
	buf = append(buf, msg...)
	buf = append(buf, '\n')
	return string(buf)
}

// Args formats multiple arguments as space-separated values
func (f *Formatter) Args(args ...any) string {
	var buf []byte
	for i, arg := range args {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = f.appendValue(buf, arg)
	}
	return string(buf)
}

// appendValue converts one argument without quoting, complex values via spew
func (f *Formatter) appendValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return append(buf, val...)
	case []byte:
		return append(buf, val...)
	case rune:
		return utf8.AppendRune(buf, val)
	case int:
		return strconv.AppendInt(buf, int64(val), 10)
	case int64:
		return strconv.AppendInt(buf, val, 10)
	case uint:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(buf, val, 10)
	case float32:
		return strconv.AppendFloat(buf, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(buf, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, val)
	case nil:
		return append(buf, "nil"...)
	case time.Time:
		return val.AppendFormat(buf, time.RFC3339Nano)
	case time.Duration:
		return append(buf, val.String()...)
	case error:
		return append(buf, val.Error()...)
	case fmt.Stringer:
		return append(buf, val.String()...)
	default:
		return append(buf, sanitizer.Dump(val)...)
	}
}
