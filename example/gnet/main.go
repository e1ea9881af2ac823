package main

import (
	"github.com/lixenwraith/daylog"
	"github.com/lixenwraith/daylog/compat"
	"github.com/panjf2000/gnet/v2"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	c.Write(buf)
	return gnet.None
}

func main() {
	sink, err := daylog.NewBuilder().
		Directory("/var/log/gnet").
		MaxLines(500).
		Overrides("sanitization=txt").
		Build()
	if err != nil {
		panic(err)
	}
	defer sink.Shutdown()

	gnetAdapter := compat.NewGnetAdapter(sink, compat.WithMinLevel(compat.LevelInfo))

	err = gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
