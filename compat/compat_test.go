package compat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/daylog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestCompatBuilder creates a standard setup for compatibility adapter tests
func createTestCompatBuilder(t *testing.T) (*Builder, *daylog.Sink, string) {
	t.Helper()
	tmpDir := t.TempDir()
	sink, err := daylog.NewBuilder().
		Directory(tmpDir).
		FlushIntervalMs(10).
		InternalErrorsToStderr(false).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Shutdown() })

	builder := NewBuilder().WithSink(sink)
	return builder, sink, tmpDir
}

// readMessages flushes the sink and returns the day file lines without timestamps
func readMessages(t *testing.T, sink *daylog.Sink) []string {
	t.Helper()
	require.NoError(t, sink.Flush(time.Second))

	data, err := os.ReadFile(sink.Stats().CurrentFile)
	require.NoError(t, err)

	var msgs []string
	for _, l := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
		if idx := strings.Index(l, "] "); idx >= 0 {
			l = l[idx+2:]
		}
		msgs = append(msgs, l)
	}
	return msgs
}

// TestCompatBuilder verifies the compatibility builder can be initialized correctly
func TestCompatBuilder(t *testing.T) {
	t.Run("with existing sink", func(t *testing.T) {
		builder, sink, _ := createTestCompatBuilder(t)

		gnetAdapter, err := builder.BuildGnet()
		require.NoError(t, err)
		assert.Same(t, sink, gnetAdapter.sink)
	})

	t.Run("with config", func(t *testing.T) {
		cfg := daylog.DefaultConfig()
		cfg.Directory = filepath.Join(t.TempDir(), "logs")

		builder := NewBuilder().WithConfig(cfg)
		fasthttpAdapter, err := builder.BuildFastHTTP()
		require.NoError(t, err)

		sink, err := builder.GetSink()
		require.NoError(t, err)
		defer sink.Shutdown()

		assert.Same(t, sink, fasthttpAdapter.sink, "builder caches the sink it created")
		assert.Equal(t, cfg.Directory, sink.GetConfig().Directory)
	})

	t.Run("nil sink", func(t *testing.T) {
		_, err := NewBuilder().WithSink(nil).BuildGnet()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sink cannot be nil")
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := daylog.DefaultConfig()
		cfg.MaxLines = 0
		_, err := NewBuilder().WithConfig(cfg).BuildFastHTTP()
		require.Error(t, err)
	})
}

// TestGnetAdapter tests the gnet adapter's output lines
func TestGnetAdapter(t *testing.T) {
	builder, sink, _ := createTestCompatBuilder(t)

	var fatalMsg string
	adapter, err := builder.BuildGnet(WithFatalHandler(func(msg string) {
		fatalMsg = msg
	}))
	require.NoError(t, err)

	adapter.Debugf("gnet debug id=%d", 1)
	adapter.Infof("gnet info id=%d", 2)
	adapter.Warnf("gnet warn id=%d", 3)
	adapter.Errorf("gnet error id=%d", 4)
	adapter.Fatalf("gnet fatal id=%d", 5)

	assert.Equal(t, []string{
		"DEBUG gnet: gnet debug id=1",
		"INFO gnet: gnet info id=2",
		"WARN gnet: gnet warn id=3",
		"ERROR gnet: gnet error id=4",
		"ERROR gnet: fatal: gnet fatal id=5",
	}, readMessages(t, sink))
	assert.Equal(t, "gnet fatal id=5", fatalMsg, "custom fatal handler should have been called")
}

func TestGnetAdapterMinLevel(t *testing.T) {
	builder, sink, _ := createTestCompatBuilder(t)

	adapter, err := builder.BuildGnet(WithMinLevel(LevelWarn))
	require.NoError(t, err)

	adapter.Debugf("hidden")
	adapter.Infof("hidden")
	adapter.Warnf("slow loop")

	assert.Equal(t, []string{"WARN gnet: slow loop"}, readMessages(t, sink))
}

// TestFastHTTPAdapter tests the fasthttp adapter's output and level detection
func TestFastHTTPAdapter(t *testing.T) {
	builder, sink, _ := createTestCompatBuilder(t)

	adapter, err := builder.BuildFastHTTP()
	require.NoError(t, err)

	testMessages := []string{
		"this is some informational message",
		"a debug message for the developers",
		"warning: something might be wrong",
		"an error occurred while processing",
	}
	for _, msg := range testMessages {
		adapter.Printf("%s", msg)
	}

	expectedLevels := []string{"INFO", "DEBUG", "WARN", "ERROR"}
	msgs := readMessages(t, sink)
	require.Len(t, msgs, 4)
	for i, msg := range msgs {
		assert.Equal(t, expectedLevels[i]+" fasthttp: "+testMessages[i], msg)
	}
}

func TestFastHTTPAdapterCustomDetector(t *testing.T) {
	builder, sink, _ := createTestCompatBuilder(t)

	adapter, err := builder.BuildFastHTTP(
		WithDefaultLevel(LevelWarn),
		WithLevelDetector(func(msg string) Level {
			if strings.Contains(msg, "connection cannot be served") {
				return LevelError
			}
			return 0
		}),
	)
	require.NoError(t, err)

	adapter.Printf("connection cannot be served: %s", "limit")
	adapter.Printf("plain")

	assert.Equal(t, []string{
		"ERROR fasthttp: connection cannot be served: limit",
		"WARN fasthttp: plain",
	}, readMessages(t, sink))
}

func TestDetectLogLevel(t *testing.T) {
	tests := []struct {
		msg  string
		want Level
	}{
		{"request failed", LevelError},
		{"PANIC recovered", LevelError},
		{"deprecated option", LevelWarn},
		{"trace id 7", LevelDebug},
		{"served", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLogLevel(tt.msg))
		})
	}

	assert.Equal(t, "INFO", Level(42).String())
}

func TestFiberAdapter(t *testing.T) {
	builder, sink, _ := createTestCompatBuilder(t)

	var fatalMsg, panicMsg string
	adapter, err := builder.BuildFiber(
		WithFiberFatalHandler(func(msg string) { fatalMsg = msg }),
		WithFiberPanicHandler(func(msg string) { panicMsg = msg }),
	)
	require.NoError(t, err)

	adapter.Trace("route", " /x")
	adapter.Infof("listening on %s", ":3000")
	adapter.Warnw("slow request", "path", "/predict", "ms", 812)
	adapter.Errorw("dangling", "key")
	_, err = adapter.Write([]byte("200 GET /\n"))
	require.NoError(t, err)
	adapter.Fatalw("bind failed", "port", 3000)
	adapter.Panic("boom")

	assert.Equal(t, []string{
		"DEBUG fiber: trace: route /x",
		"INFO fiber: listening on :3000",
		"WARN fiber: slow request path=/predict ms=812",
		"ERROR fiber: dangling key",
		"INFO fiber: 200 GET /",
		"ERROR fiber: fatal: bind failed port=3000",
		"ERROR fiber: panic: boom",
	}, readMessages(t, sink))
	assert.Equal(t, "bind failed port=3000", fatalMsg)
	assert.Equal(t, "boom", panicMsg)
}

func TestFiberAdapterMinLevel(t *testing.T) {
	builder, sink, _ := createTestCompatBuilder(t)

	adapter, err := builder.BuildFiber(WithFiberMinLevel(LevelError))
	require.NoError(t, err)

	adapter.Info("hidden")
	adapter.Warnf("hidden %d", 1)
	adapter.Error("shown")

	assert.Equal(t, []string{"ERROR fiber: shown"}, readMessages(t, sink))
}
