package daylog

import "time"

// setupProcessingTimers creates and configures all necessary timers for a consumer
func (s *Sink) setupProcessingTimers() *TimerSet {
	timers := &TimerSet{}

	c := s.getConfig()

	// Set up flush timer
	flushInterval := c.FlushIntervalMs
	if flushInterval <= 0 {
		flushInterval = DefaultConfig().FlushIntervalMs
	}
	timers.flushTicker = time.NewTicker(time.Duration(flushInterval) * time.Millisecond)

	// Set up heartbeat timer
	timers.heartbeatChan = s.setupHeartbeatTimer(timers)

	return timers
}

// closeProcessingTimers stops all active timers
func (s *Sink) closeProcessingTimers(timers *TimerSet) {
	timers.flushTicker.Stop()
	if timers.heartbeatTicker != nil {
		timers.heartbeatTicker.Stop()
	}
}

// setupHeartbeatTimer configures the heartbeat timer if enabled
func (s *Sink) setupHeartbeatTimer(timers *TimerSet) <-chan time.Time {
	intervalS := s.getConfig().HeartbeatIntervalS
	if intervalS <= 0 {
		return nil
	}
	timers.heartbeatTicker = time.NewTicker(time.Duration(intervalS) * time.Second)
	return timers.heartbeatTicker.C
}
