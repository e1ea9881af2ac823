package daylog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/daylog/formatter"
)

// Sink is an append-only log writer that decouples producers from a single
// disk-writing consumer and starts a new file each calendar day.
// Pass it explicitly to every producer; there is no package-level instance.
type Sink struct {
	currentConfig atomic.Value // stores *Config
	formatter     atomic.Pointer[formatter.Formatter]
	clock         atomic.Value // stores clockBox
	errorHandler  atomic.Pointer[ErrorHandler]

	state State

	lifeMu  sync.RWMutex // producers share, Shutdown excludes
	initMu  sync.Mutex   // serializes initialize and config application
	drainMu sync.Mutex   // one drainer at a time across generations

	queue        pendingQueue
	headFailures int64 // consecutive failed appends of the queue head, guarded by drainMu

	history  *History
	notifier *Notifier
}

// NewSink creates a Sink with default settings. No folder or file is touched
// until the first Write.
func NewSink() *Sink {
	cfg := DefaultConfig()

	s := &Sink{
		history:  NewHistory(int(cfg.MaxLines)),
		notifier: NewNotifier(int(cfg.NotifyBuffer)),
	}

	s.currentConfig.Store(cfg)
	s.formatter.Store(cfg.newFormatter())
	s.clock.Store(clockBox{c: SystemClock()})
	s.state.StdoutWriter.Store(writerBox{w: io.Discard})
	s.state.SinkStartTime.Store(time.Now())

	return s
}

// New creates a Sink from a configuration
func New(cfg *Config) (*Sink, error) {
	s := NewSink()
	if err := s.ApplyConfig(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyConfig validates and applies a configuration.
// If a day file is already open and the file location changed, a new generation
// is started right away; otherwise the folder is created by the first Write.
func (s *Sink) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	s.initMu.Lock()
	defer s.initMu.Unlock()

	return s.applyConfig(cfg)
}

// applyConfig is the internal implementation, initMu must be held
func (s *Sink) applyConfig(cfg *Config) error {
	oldCfg := s.getConfig()
	newCfg := cfg.Clone()

	s.currentConfig.Store(newCfg)
	s.formatter.Store(newCfg.newFormatter())
	s.history.Resize(int(newCfg.MaxLines))
	s.notifier.setDefaultBuffer(int(newCfg.NotifyBuffer))

	var writer io.Writer = io.Discard
	if newCfg.EnableStdout {
		if newCfg.StdoutTarget == "stderr" {
			writer = os.Stderr
		} else {
			writer = os.Stdout
		}
	}
	s.state.StdoutWriter.Store(writerBox{w: writer})

	if newCfg.locationChanged(oldCfg) && !s.state.ShutdownCalled.Load() {
		if gen := s.state.ActiveGeneration.Load(); gen != nil {
			if _, err := s.initialize(s.now()); err != nil {
				return err
			}
		}
	}

	return nil
}

// GetConfig returns a copy of current configuration
func (s *Sink) GetConfig() *Config {
	return s.getConfig().Clone()
}

func (s *Sink) getConfig() *Config {
	return s.currentConfig.Load().(*Config)
}

func (s *Sink) getFormatter() *formatter.Formatter {
	return s.formatter.Load()
}

func (s *Sink) now() time.Time {
	return s.clock.Load().(clockBox).c.Now()
}

// SetClock replaces the time source. A nil clock restores the system clock.
func (s *Sink) SetClock(c Clock) {
	if c == nil {
		c = SystemClock()
	}
	s.clock.Store(clockBox{c: c})
}

// SetErrorHandler registers a callback for lines dropped by the consumer.
// A nil handler removes it.
func (s *Sink) SetErrorHandler(h ErrorHandler) {
	if h == nil {
		s.errorHandler.Store(nil)
		return
	}
	s.errorHandler.Store(&h)
}

// Write timestamps message and enqueues it for the background consumer.
// It never waits on disk. The only errors are a failure to create the log
// folder when a new day file is due, and ErrShutdown.
func (s *Sink) Write(message string) error {
	s.lifeMu.RLock()
	defer s.lifeMu.RUnlock()

	if s.state.ShutdownCalled.Load() {
		s.state.DroppedLines.Add(1)
		return ErrShutdown
	}

	now := s.now()
	if _, err := s.ensureGeneration(now); err != nil {
		return err
	}

	s.enqueue(s.getFormatter().Line(now, message))
	return nil
}

// Writef formats according to a format specifier and writes the result
func (s *Sink) Writef(format string, args ...any) error {
	return s.Write(fmt.Sprintf(format, args...))
}

// Print writes args separated by spaces; values without a plain text form are dumped
func (s *Sink) Print(args ...any) error {
	return s.Write(s.getFormatter().Args(args...))
}

// History returns the most recently flushed lines, newest first.
// It is updated asynchronously relative to Write.
func (s *Sink) History() []string {
	return s.history.Snapshot()
}

// Subscribe returns a channel receiving every flushed line and a cancel func.
// A buffer of 0 uses notify_buffer. Lines are skipped while the channel is full.
func (s *Sink) Subscribe(buffer int) (<-chan string, func()) {
	return s.notifier.Subscribe(buffer)
}

// Observe runs fn for every flushed line on a dedicated goroutine.
// The returned func stops delivery and waits for fn to return.
func (s *Sink) Observe(fn func(line string)) func() {
	ch, cancel := s.notifier.Subscribe(0)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for line := range ch {
			fn(line)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// Stats returns a snapshot of the sink counters
func (s *Sink) Stats() Stats {
	st := Stats{
		LinesEnqueued:  s.state.LinesEnqueued.Load(),
		LinesWritten:   s.state.LinesWritten.Load(),
		AppendFailures: s.state.AppendFailures.Load(),
		DroppedLines:   s.state.DroppedLines.Load(),
		NotifyDropped:  s.notifier.Dropped(),
		Rotations:      s.state.Rotations.Load(),
		Pending:        s.queue.len(),
		HistoryLen:     s.history.Len(),
		Shutdown:       s.state.ShutdownCalled.Load(),
	}
	if gen := s.state.ActiveGeneration.Load(); gen != nil {
		st.Generation = gen.id
		st.CurrentFile = gen.path
	}
	return st
}
