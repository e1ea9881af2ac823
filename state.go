package daylog

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// errGenerationRetired answers a flush request that reached a cancelled consumer
var errGenerationRetired = errors.New("daylog: generation retired")

// State encapsulates the runtime state of the sink
type State struct {
	ShutdownCalled atomic.Bool

	ActiveGeneration atomic.Pointer[generation]
	GenerationSeq    atomic.Uint64

	flushMutex sync.Mutex // Protect concurrent Flush calls

	StdoutWriter atomic.Value // stores writerBox (os.Stdout, os.Stderr, or io.Discard)

	// Counters
	LinesEnqueued  atomic.Uint64
	LinesWritten   atomic.Uint64
	AppendFailures atomic.Uint64 // Every failed append attempt
	DroppedLines   atomic.Uint64 // Lines given up on, plus writes after shutdown
	Rotations      atomic.Uint64

	// Heartbeat statistics
	HeartbeatSequence atomic.Uint64
	SinkStartTime     atomic.Value // stores time.Time for uptime calculation
}

// Shutdown stops accepting writes, drains everything already enqueued into the
// active day file, then syncs and closes it. Subscriber channels are closed last.
// If no timeout is provided, a default of 2 seconds is used.
// Calling Shutdown more than once is a no-op.
func (s *Sink) Shutdown(timeout ...time.Duration) error {
	// Wait out in-flight producers so nothing is enqueued after the drain
	s.lifeMu.Lock()
	if s.state.ShutdownCalled.Load() {
		s.lifeMu.Unlock()
		return nil
	}
	s.state.ShutdownCalled.Store(true)
	s.lifeMu.Unlock()

	effectiveTimeout := defaultShutdownTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		effectiveTimeout = timeout[0]
	}
	deadline := time.Now().Add(effectiveTimeout)

	s.initMu.Lock()
	gen := s.state.ActiveGeneration.Load()
	s.initMu.Unlock()

	defer s.notifier.Close()

	if gen == nil {
		return nil
	}

	var finalErr error

	gen.cancel()
	waitTimer := time.NewTimer(time.Until(deadline))
	select {
	case <-gen.done:
		waitTimer.Stop()
	case <-waitTimer.C:
		finalErr = fmtErrorf("consumer did not exit within timeout (%v)", effectiveTimeout)
	}

	// Drain on this goroutine; failed appends are retried until dropped or out of time
	for s.queue.len() > 0 && time.Now().Before(deadline) {
		if _, err := s.drain(gen); err != nil {
			time.Sleep(minWaitTime)
		}
	}

	if pending := s.queue.len(); pending > 0 {
		finalErr = combineErrors(finalErr, fmtErrorf("%d lines not written before shutdown timeout (%v)", pending, effectiveTimeout))
	}

	if err := s.closeGeneration(gen, true); err != nil {
		finalErr = combineErrors(finalErr, err)
	}

	return finalErr
}

// Flush blocks until every line enqueued before the call has been appended to
// the day file and the file has been synced, or the timeout elapses.
// Flush on a sink that has not written anything yet returns nil.
func (s *Sink) Flush(timeout time.Duration) error {
	s.state.flushMutex.Lock()
	defer s.state.flushMutex.Unlock()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if s.state.ShutdownCalled.Load() {
			return ErrShutdown
		}

		gen := s.state.ActiveGeneration.Load()
		if gen == nil {
			return nil
		}

		confirmChan := make(chan error, 1)

		// Send the request with the confirmation channel
		select {
		case gen.flushRequest <- confirmChan:
		case <-gen.done:
			// Consumer retired by a rotation, retry against the new generation
			continue
		case <-deadline.C:
			return ErrFlushTimeout
		}

		select {
		case err := <-confirmChan:
			if errors.Is(err, errGenerationRetired) {
				continue
			}
			return err
		case <-deadline.C:
			return ErrFlushTimeout
		}
	}
}
