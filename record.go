package daylog

import (
	"context"
	"time"
)

// enqueue hands a formatted line to the consumer
func (s *Sink) enqueue(line string) {
	s.queue.push(line)
	s.state.LinesEnqueued.Add(1)
}

// ensureGeneration returns the generation for now's calendar day, starting one if needed
func (s *Sink) ensureGeneration(now time.Time) (*generation, error) {
	if gen := s.state.ActiveGeneration.Load(); gen != nil && sameDay(gen.day, now) {
		return gen, nil
	}

	s.initMu.Lock()
	defer s.initMu.Unlock()

	// Another producer may have rotated while we waited
	if gen := s.state.ActiveGeneration.Load(); gen != nil && sameDay(gen.day, now) {
		return gen, nil
	}

	return s.initialize(now)
}

// initialize creates the folder, computes the day file and starts a consumer
// for it. The previous consumer is cancelled; lines it left behind stay queued.
// initMu must be held.
func (s *Sink) initialize(now time.Time) (*generation, error) {
	c := s.getConfig()

	if err := ensureDirectory(c.Directory); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	gen := &generation{
		id:           s.state.GenerationSeq.Add(1),
		day:          now,
		dir:          c.Directory,
		path:         dayFilePath(c, now),
		cancel:       cancel,
		done:         make(chan struct{}),
		flushRequest: make(chan chan error),
	}

	if old := s.state.ActiveGeneration.Swap(gen); old != nil {
		old.cancel()
	}
	s.state.Rotations.Add(1)

	go s.consume(ctx, gen)

	return gen, nil
}
