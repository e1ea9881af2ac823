// Package viewer serves a sink's recent history and counters over HTTP,
// the read-only view a UI polls instead of binding to the sink directly.
package viewer

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lixenwraith/daylog"
	"github.com/valyala/fasthttp"
)

// Source is the read side of a sink
type Source interface {
	History() []string
	Stats() daylog.Stats
}

// Viewer renders a Source as fasthttp endpoints:
//
//	GET /history       JSON array, newest first, optional ?limit=N
//	GET /history.txt   plain text, one line per entry, newest first
//	GET /stats         JSON counters
type Viewer struct {
	src Source
}

// New creates a viewer over src
func New(src Source) *Viewer {
	return &Viewer{src: src}
}

// Handler returns the request router
func (v *Viewer) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if !ctx.IsGet() && !ctx.IsHead() {
			ctx.Response.Header.Set("Allow", "GET, HEAD")
			ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
			return
		}

		switch string(ctx.Path()) {
		case "/history":
			v.writeJSON(ctx, v.history(ctx))
		case "/history.txt":
			ctx.SetContentType("text/plain; charset=utf-8")
			lines := v.history(ctx)
			if len(lines) > 0 {
				ctx.SetBodyString(strings.Join(lines, "\n") + "\n")
			}
		case "/stats":
			v.writeJSON(ctx, v.src.Stats())
		default:
			ctx.Error("not found", fasthttp.StatusNotFound)
		}
	}
}

// Server returns a fasthttp server for the viewer; logger may be nil
func (v *Viewer) Server(logger fasthttp.Logger) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:      v.Handler(),
		Name:         "daylog-viewer",
		Logger:       logger,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// history applies the optional limit query argument
func (v *Viewer) history(ctx *fasthttp.RequestCtx) []string {
	lines := v.src.History()
	if limit, err := ctx.QueryArgs().GetUint("limit"); err == nil && limit < len(lines) {
		lines = lines[:limit]
	}
	return lines
}

func (v *Viewer) writeJSON(ctx *fasthttp.RequestCtx, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		ctx.Error("encode failed", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
}
