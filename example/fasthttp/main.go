package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/daylog"
	"github.com/lixenwraith/daylog/compat"
	"github.com/lixenwraith/daylog/viewer"
	"github.com/valyala/fasthttp"
)

func main() {
	sink, err := daylog.New(&daylog.Config{
		Directory:       "/var/log/fasthttp",
		FileDateFormat:  "2006-01-02",
		Extension:       "log",
		MaxLines:        200,
		NotifyBuffer:    256,
		TimestampFormat: "15:04:05.0",
		Sanitization:    "raw",
		FlushIntervalMs: 100,
		AppendRetries:   3,
		StdoutTarget:    "stdout",
	})
	if err != nil {
		panic(err)
	}
	defer sink.Shutdown()

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter := compat.NewFastHTTPAdapter(
		sink,
		compat.WithDefaultLevel(compat.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	// Recent lines for a dashboard, on a side port
	go func() {
		if err := viewer.New(sink).Server(fasthttpAdapter).ListenAndServe(":8081"); err != nil {
			_ = sink.Writef("viewer stopped: %v", err)
		}
	}()

	server := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			requestHandler(sink, ctx)
		},
		Logger: fasthttpAdapter,

		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	fmt.Println("Starting server on :8080, history on :8081")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(sink *daylog.Sink, ctx *fasthttp.RequestCtx) {
	_ = sink.Writef("%s %s", ctx.Method(), ctx.Path())
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

func customLevelDetector(msg string) compat.Level {
	if strings.Contains(msg, "connection cannot be served") {
		return compat.LevelWarn
	}
	if strings.Contains(msg, "error when serving connection") {
		return compat.LevelError
	}
	return compat.DetectLogLevel(msg)
}
