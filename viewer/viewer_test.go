package viewer

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/lixenwraith/daylog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type staticSource struct {
	lines []string
	stats daylog.Stats
}

func (s staticSource) History() []string   { return append([]string(nil), s.lines...) }
func (s staticSource) Stats() daylog.Stats { return s.stats }

func serve(t *testing.T, h fasthttp.RequestHandler, method, uri string) *fasthttp.RequestCtx {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	h(&ctx)
	return &ctx
}

func TestHistoryEndpoints(t *testing.T) {
	src := staticSource{lines: []string{"[10:00:02.0] c", "[10:00:01.0] b", "[10:00:00.0] a"}}
	h := New(src).Handler()

	t.Run("json newest first", func(t *testing.T) {
		ctx := serve(t, h, fasthttp.MethodGet, "/history")
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))

		var lines []string
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &lines))
		assert.Equal(t, src.lines, lines)
	})

	t.Run("limit", func(t *testing.T) {
		ctx := serve(t, h, fasthttp.MethodGet, "/history?limit=2")
		var lines []string
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &lines))
		assert.Equal(t, src.lines[:2], lines)
	})

	t.Run("text", func(t *testing.T) {
		ctx := serve(t, h, fasthttp.MethodGet, "/history.txt")
		assert.Equal(t, "[10:00:02.0] c\n[10:00:01.0] b\n[10:00:00.0] a\n", string(ctx.Response.Body()))
	})

	t.Run("unknown path", func(t *testing.T) {
		ctx := serve(t, h, fasthttp.MethodGet, "/nope")
		assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	})

	t.Run("wrong method", func(t *testing.T) {
		ctx := serve(t, h, fasthttp.MethodPost, "/history")
		assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
	})
}

func TestStatsEndpoint(t *testing.T) {
	src := staticSource{stats: daylog.Stats{LinesWritten: 7, CurrentFile: "/logs/2024-01-01.txt"}}
	ctx := serve(t, New(src).Handler(), fasthttp.MethodGet, "/stats")

	var got map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &got))
	assert.Equal(t, 7.0, got["lines_written"])
	assert.Equal(t, "/logs/2024-01-01.txt", got["current_file"])
}

func TestViewerOverListener(t *testing.T) {
	sink, err := daylog.NewBuilder().
		Directory(t.TempDir()).
		FlushIntervalMs(10).
		MaxLines(2).
		InternalErrorsToStderr(false).
		Build()
	require.NoError(t, err)
	defer sink.Shutdown()

	for _, msg := range []string{"load", "predict", "done"} {
		require.NoError(t, sink.Write(msg))
	}
	require.NoError(t, sink.Flush(time.Second))

	ln := fasthttputil.NewInmemoryListener()
	server := New(sink).Server(nil)
	go func() { _ = server.Serve(ln) }()
	defer server.Shutdown()

	client := &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) { return ln.Dial() },
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://viewer/history")
	require.NoError(t, client.DoTimeout(req, resp, time.Second))

	var lines []string
	require.NoError(t, json.Unmarshal(resp.Body(), &lines))
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "done")
	assert.Contains(t, lines[1], "predict")
}
