package daylog

// Builder provides a fluent API for building sink configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg          *Config
	clock        Clock
	errorHandler ErrorHandler
	err          error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Sink instance with the specified configuration.
func (b *Builder) Build() (*Sink, error) {
	if b.err != nil {
		return nil, b.err
	}

	sink := NewSink()

	// ApplyConfig handles validation
	if err := sink.ApplyConfig(b.cfg); err != nil {
		return nil, err
	}

	if b.clock != nil {
		sink.SetClock(b.clock)
	}
	if b.errorHandler != nil {
		sink.SetErrorHandler(b.errorHandler)
	}

	return sink, nil
}

// Directory sets the folder holding the day files.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// MaxLines sets the history capacity.
func (b *Builder) MaxLines(n int64) *Builder {
	b.cfg.MaxLines = n
	return b
}

// NotifyBuffer sets the default subscriber channel size.
func (b *Builder) NotifyBuffer(n int64) *Builder {
	b.cfg.NotifyBuffer = n
	return b
}

// FlushIntervalMs sets the consumer polling interval.
func (b *Builder) FlushIntervalMs(ms int64) *Builder {
	b.cfg.FlushIntervalMs = ms
	return b
}

// Extension sets the day file extension.
func (b *Builder) Extension(ext string) *Builder {
	b.cfg.Extension = ext
	return b
}

// FileDateFormat sets the Go layout used for day file names.
func (b *Builder) FileDateFormat(layout string) *Builder {
	b.cfg.FileDateFormat = layout
	return b
}

// TimestampFormat sets the Go layout written inside each line's brackets.
func (b *Builder) TimestampFormat(layout string) *Builder {
	b.cfg.TimestampFormat = layout
	return b
}

// Sanitization sets the message sanitization policy.
func (b *Builder) Sanitization(policy string) *Builder {
	b.cfg.Sanitization = policy
	return b
}

// AppendRetries sets how many times a line is attempted before it is dropped.
func (b *Builder) AppendRetries(n int64) *Builder {
	b.cfg.AppendRetries = n
	return b
}

// EnablePeriodicSync syncs the day file after every cycle that wrote lines.
func (b *Builder) EnablePeriodicSync(enable bool) *Builder {
	b.cfg.EnablePeriodicSync = enable
	return b
}

// HeartbeatIntervalS sets the stats line interval, 0 disables it.
func (b *Builder) HeartbeatIntervalS(interval int64) *Builder {
	b.cfg.HeartbeatIntervalS = interval
	return b
}

// EnableStdout enables mirroring written lines to stdout/stderr.
func (b *Builder) EnableStdout(enable bool) *Builder {
	b.cfg.EnableStdout = enable
	return b
}

// StdoutTarget selects "stdout" or "stderr" for the mirror.
func (b *Builder) StdoutTarget(target string) *Builder {
	b.cfg.StdoutTarget = target
	return b
}

// InternalErrorsToStderr toggles the sink's own diagnostics on stderr.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Overrides applies "key=value" strings on top of the values set so far.
func (b *Builder) Overrides(overrides ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			b.err = err
			return b
		}
		if err := applyConfigField(b.cfg, key, value); err != nil {
			b.err = err
			return b
		}
	}
	return b
}

// Clock sets the time source used for timestamps and rotation.
func (b *Builder) Clock(c Clock) *Builder {
	b.clock = c
	return b
}

// ErrorHandler registers a callback for lines the consumer had to drop.
func (b *Builder) ErrorHandler(h ErrorHandler) *Builder {
	b.errorHandler = h
	return b
}

// Example usage:
// sink, err := daylog.NewBuilder().
//
//	Directory("/var/log/detector").
//	MaxLines(200).
//	Sanitization("txt").
//	EnableStdout(true).
//	Build()
//
// if err == nil {
//
//	 defer sink.Shutdown()
//	 sink.Write("model loaded")
//
// }
