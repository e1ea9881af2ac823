package formatter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/daylog/sanitizer"
	"github.com/stretchr/testify/assert"
)

func TestFormatterLine(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 9, 5, 7, 430_000_000, time.Local)

	t.Run("default layout", func(t *testing.T) {
		f := New()
		assert.Equal(t, "[09:05:07.4] loaded model.zip\n", f.Line(timestamp, "loaded model.zip"))
	})

	t.Run("empty message", func(t *testing.T) {
		f := New()
		assert.Equal(t, "[09:05:07.4] \n", f.Line(timestamp, ""))
	})

	t.Run("raw keeps embedded newlines", func(t *testing.T) {
		f := New(sanitizer.New().Policy(sanitizer.PolicyRaw))
		line := f.Line(timestamp, "fail load\nbad header")
		assert.Equal(t, "[09:05:07.4] fail load\nbad header\n", line)
	})

	t.Run("txt policy keeps one line per message", func(t *testing.T) {
		f := New(sanitizer.New().Policy(sanitizer.PolicyTxt))
		line := f.Line(timestamp, "fail load\nbad header")
		assert.Equal(t, 1, strings.Count(line, "\n"))
		assert.Contains(t, line, "fail load<0a>bad header")
	})

	t.Run("custom layout", func(t *testing.T) {
		f := New().TimestampFormat("15:04")
		assert.Equal(t, "[09:05] x\n", f.Line(timestamp, "x"))

		// Empty layout is ignored
		f.TimestampFormat("")
		assert.Equal(t, "[09:05] x\n", f.Line(timestamp, "x"))
	})
}

func TestFormatterArgs(t *testing.T) {
	f := New()

	type box struct {
		X, Y int
	}

	tests := []struct {
		name     string
		args     []any
		contains []string
		exact    string
	}{
		{
			name:  "scalars",
			args:  []any{"SearchCount=", 3, int64(-1), uint(7), 0.25, true, nil},
			exact: "SearchCount= 3 -1 7 0.25 true nil",
		},
		{
			name:  "error and duration",
			args:  []any{"fail predict", errors.New("tensor shape"), 1500 * time.Millisecond},
			exact: "fail predict tensor shape 1.5s",
		},
		{
			name:  "bytes and rune",
			args:  []any{[]byte("raw"), 'x'},
			exact: "raw x",
		},
		{
			name:     "struct via dump",
			args:     []any{"box", box{X: 1, Y: 2}},
			contains: []string{"box", "X: (int) 1", "Y: (int) 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := f.Args(tt.args...)
			if tt.exact != "" {
				assert.Equal(t, tt.exact, out)
			}
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			assert.NotContains(t, out, "\n")
		})
	}
}
