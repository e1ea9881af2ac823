package daylog

import "sync"

// History is a bounded view of the most recently flushed lines.
// Entries are stored oldest to newest in a ring; Snapshot reverses them.
type History struct {
	mu    sync.RWMutex
	buf   []string
	start int // index of the oldest entry
	size  int
}

// NewHistory creates a history holding at most max lines
func NewHistory(max int) *History {
	if max <= 0 {
		max = int(defaultConfig.MaxLines)
	}
	return &History{buf: make([]string, max)}
}

// Push inserts line as the newest entry, evicting the oldest when full
func (h *History) Push(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	max := len(h.buf)
	h.buf[(h.start+h.size)%max] = line
	if h.size < max {
		h.size++
	} else {
		h.start = (h.start + 1) % max
	}
}

// Snapshot returns a copy of the buffer, newest first
func (h *History) Snapshot() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, h.size)
	max := len(h.buf)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+h.size-1-i)%max]
	}
	return out
}

// Len returns the number of buffered lines
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Cap returns the configured maximum
func (h *History) Cap() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.buf)
}

// Resize changes the maximum, keeping the newest lines that still fit
func (h *History) Resize(max int) {
	if max <= 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if max == len(h.buf) {
		return
	}

	keep := h.size
	if keep > max {
		keep = max
	}

	old := len(h.buf)
	buf := make([]string, max)
	// Oldest kept entry first
	for i := 0; i < keep; i++ {
		buf[i] = h.buf[(h.start+h.size-keep+i)%old]
	}

	h.buf = buf
	h.start = 0
	h.size = keep
}
