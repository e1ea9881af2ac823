package daylog

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// handleHeartbeat writes a stats line through the sink itself
func (s *Sink) handleHeartbeat() {
	if s.state.ShutdownCalled.Load() {
		return
	}

	if err := s.Write(s.heartbeatLine()); err != nil {
		s.internalLog("failed to write heartbeat: %v\n", err)
	}
}

// heartbeatLine renders process and sink counters as key=value pairs
func (s *Sink) heartbeatLine() string {
	sequence := s.state.HeartbeatSequence.Add(1)

	var uptimeHours float64
	if startTime, ok := s.state.SinkStartTime.Load().(time.Time); ok && !startTime.IsZero() {
		uptimeHours = time.Since(startTime).Hours()
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	st := s.Stats()
	fields := []any{
		"sequence", sequence,
		"uptime_hours", fmt.Sprintf("%.2f", uptimeHours),
		"enqueued", st.LinesEnqueued,
		"written", st.LinesWritten,
		"failures", st.AppendFailures,
		"dropped", st.DroppedLines,
		"pending", st.Pending,
		"rotations", st.Rotations,
		"alloc_mb", fmt.Sprintf("%.2f", float64(memStats.Alloc)/(sizeMultiplier*sizeMultiplier)),
		"num_goroutine", runtime.NumGoroutine(),
	}

	// Add disk free space if we can get it
	if freeSpace, err := getDiskFreeSpace(s.getConfig().Directory); err == nil {
		fields = append(fields, "disk_free_mb", fmt.Sprintf("%.2f", float64(freeSpace)/(sizeMultiplier*sizeMultiplier)))
	}

	var sb strings.Builder
	sb.WriteString("heartbeat")
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", fields[i], fields[i+1])
	}
	return sb.String()
}
