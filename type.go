package daylog

import (
	"context"
	"io"
	"os"
	"time"
)

// generation is one lifetime of {file, day marker, cancellation scope},
// bounded by two consecutive initialize calls
type generation struct {
	id     uint64
	day    time.Time // clock time at initialize, only the calendar date is compared
	dir    string
	path   string
	cancel context.CancelFunc
	done   chan struct{} // closed when the consumer exits

	flushRequest chan chan error

	// Guarded by Sink.drainMu
	file *os.File
}

// Stats is a point-in-time snapshot of sink counters
type Stats struct {
	LinesEnqueued  uint64 `json:"lines_enqueued"`
	LinesWritten   uint64 `json:"lines_written"`
	AppendFailures uint64 `json:"append_failures"`
	DroppedLines   uint64 `json:"dropped_lines"`
	NotifyDropped  uint64 `json:"notify_dropped"`
	Rotations      uint64 `json:"rotations"` // generations started, including the first
	Generation     uint64 `json:"generation"`
	CurrentFile    string `json:"current_file"`
	Pending        int    `json:"pending"`
	HistoryLen     int    `json:"history_len"`
	Shutdown       bool   `json:"shutdown"`
}

// TimerSet holds all timers used by a consumer
type TimerSet struct {
	flushTicker     *time.Ticker
	heartbeatTicker *time.Ticker
	heartbeatChan   <-chan time.Time
}

// writerBox wraps an io.Writer, atomic value type change workaround
type writerBox struct {
	w io.Writer
}

// clockBox wraps a Clock so atomic.Value always stores one concrete type
type clockBox struct {
	c Clock
}
