package daylog

import (
	"context"
	"io"
	"strings"
)

// consume is the background loop of one generation.
// It exits when the generation's context is cancelled, leaving undrained lines queued.
func (s *Sink) consume(ctx context.Context, gen *generation) {
	defer close(gen.done)

	// Set up timers
	timers := s.setupProcessingTimers()
	defer s.closeProcessingTimers(timers)

	// The file belongs to this generation only
	defer func() {
		if err := s.closeGeneration(gen, false); err != nil {
			s.internalLog("%v\n", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-timers.flushTicker.C:
			// Cancellation wins over a tick that fired at the same time
			if ctx.Err() != nil {
				return
			}
			s.handleFlushTick(gen)

		case confirmChan := <-gen.flushRequest:
			s.handleFlushRequest(ctx, gen, confirmChan)

		case <-timers.heartbeatChan:
			if ctx.Err() != nil {
				return
			}
			s.handleHeartbeat()
		}
	}
}

// handleFlushTick drains the queue on the periodic timer
func (s *Sink) handleFlushTick(gen *generation) {
	written, _ := s.drain(gen)
	if written > 0 && s.getConfig().EnablePeriodicSync {
		if err := s.syncGeneration(gen); err != nil {
			s.internalLog("%v\n", err)
		}
	}
}

// handleFlushRequest drains and syncs on behalf of a Flush caller
func (s *Sink) handleFlushRequest(ctx context.Context, gen *generation, confirmChan chan error) {
	if ctx.Err() != nil {
		confirmChan <- errGenerationRetired
		return
	}

	_, err := s.drain(gen)
	if syncErr := s.syncGeneration(gen); syncErr != nil {
		err = combineErrors(err, syncErr)
	}
	confirmChan <- err
}

// drain appends everything currently queued to gen's file in FIFO order.
// On an append failure the failing line and the rest of the batch go back to
// the head of the queue and the cycle ends. A line that has failed
// append_retries times in a row is dropped and reported.
func (s *Sink) drain(gen *generation) (int, error) {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	batch := s.queue.popAll()
	if len(batch) == 0 {
		return 0, nil
	}

	retries := s.getConfig().AppendRetries

	for i, line := range batch {
		if err := s.appendLine(gen, line); err != nil {
			s.state.AppendFailures.Add(1)
			s.headFailures++

			if s.headFailures >= retries {
				s.headFailures = 0
				s.state.DroppedLines.Add(1)
				s.queue.pushFront(batch[i+1:])
				s.reportError(fmtErrorf("dropped line after %d failed appends to '%s': %w", retries, gen.path, err))
				return i, err
			}

			s.queue.pushFront(batch[i:])
			s.internalLog("append to '%s' failed (attempt %d of %d): %v\n", gen.path, s.headFailures, retries, err)
			return i, err
		}

		s.headFailures = 0
		s.state.LinesWritten.Add(1)
		s.onFlushed(line)
	}

	return len(batch), nil
}

// appendLine writes one line to the generation file, opening it on first use.
// drainMu must be held.
func (s *Sink) appendLine(gen *generation, line string) error {
	if gen.file == nil {
		f, err := openDayFile(gen.path)
		if err != nil {
			return err
		}
		gen.file = f
	}

	if _, err := io.WriteString(gen.file, line); err != nil {
		// Reopen on the next attempt
		_ = gen.file.Close()
		gen.file = nil
		return fmtErrorf("failed to write to log file '%s': %w", gen.path, err)
	}

	if box, ok := s.state.StdoutWriter.Load().(writerBox); ok && box.w != io.Discard {
		_, _ = io.WriteString(box.w, line)
	}

	return nil
}

// onFlushed publishes a written line to the history and the observers
func (s *Sink) onFlushed(line string) {
	line = strings.TrimSuffix(line, "\n")
	s.history.Push(line)
	s.notifier.Publish(line)
}
