package daylog

import (
	"errors"
	"time"
)

// Timers
const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
	// Shutdown drain time when no timeout is given
	defaultShutdownTimeout = 2 * time.Second
)

// Storage
const (
	dirPerm  = 0755
	filePerm = 0644
	// Size multiplier for KB, MB
	sizeMultiplier = 1000
)

var (
	// ErrShutdown is returned by operations on a sink after Shutdown
	ErrShutdown = errors.New("daylog: sink is shut down")
	// ErrFlushTimeout is returned when a flush did not complete in time
	ErrFlushTimeout = errors.New("daylog: flush timed out")
)
