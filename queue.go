package daylog

import "sync"

// pendingQueue is an unbounded multi-producer/single-consumer FIFO of formatted lines.
// It outlives generations and is never cleared on rotation.
type pendingQueue struct {
	mu    sync.Mutex
	items []string
}

func (q *pendingQueue) push(line string) {
	q.mu.Lock()
	q.items = append(q.items, line)
	q.mu.Unlock()
}

// popAll takes everything currently enqueued
func (q *pendingQueue) popAll() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	batch := q.items
	q.items = nil
	return batch
}

// pushFront puts lines back ahead of anything enqueued since they were popped
func (q *pendingQueue) pushFront(lines []string) {
	if len(lines) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	merged := make([]string, 0, len(lines)+len(q.items))
	merged = append(merged, lines...)
	merged = append(merged, q.items...)
	q.items = merged
}

func (q *pendingQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
