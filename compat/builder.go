package compat

import (
	"fmt"

	"github.com/lixenwraith/daylog"
)

// Builder creates adapters for gnet, fasthttp and Fiber that write into one sink.
// It can use an existing *daylog.Sink or create one from a *daylog.Config.
type Builder struct {
	sink *daylog.Sink
	cfg  *daylog.Config
	err  error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithSink specifies an existing sink to use for the adapters.
// If this is set WithConfig is ignored.
func (b *Builder) WithSink(s *daylog.Sink) *Builder {
	if s == nil {
		b.err = fmt.Errorf("daylog/compat: provided sink cannot be nil")
		return b
	}
	b.sink = s
	return b
}

// WithConfig provides a configuration for a new sink.
// If neither WithSink nor WithConfig is used, a default sink is created.
func (b *Builder) WithConfig(cfg *daylog.Config) *Builder {
	b.cfg = cfg
	return b
}

// getSink resolves the sink to be used, creating one if necessary
func (b *Builder) getSink() (*daylog.Sink, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.sink != nil {
		return b.sink, nil
	}

	cfg := b.cfg
	if cfg == nil {
		cfg = daylog.DefaultConfig()
	}

	s, err := daylog.New(cfg)
	if err != nil {
		return nil, err
	}

	// Cache for subsequent builds with this builder
	b.sink = s
	return s, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	s, err := b.getSink()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(s, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	s, err := b.getSink()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(s, opts...), nil
}

// BuildFiber creates a Fiber-compatible adapter
func (b *Builder) BuildFiber(opts ...FiberOption) (*FiberAdapter, error) {
	s, err := b.getSink()
	if err != nil {
		return nil, err
	}
	return NewFiberAdapter(s, opts...), nil
}

// GetSink returns the underlying sink, creating it if needed
func (b *Builder) GetSink() (*daylog.Sink, error) {
	return b.getSink()
}

// --- Example Usage ---
//
//	sink, err := daylog.NewBuilder().Directory("/var/log/detector").Build()
//	if err != nil { /* handle error */ }
//	defer sink.Shutdown()
//
//	builder := compat.NewBuilder().WithSink(sink)
//
//	gnetLogger, _ := builder.BuildGnet()
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	fasthttpLogger, _ := builder.BuildFastHTTP()
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
//	go server.ListenAndServe(":8080")
