package daylog

import (
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// ensureDirectory creates the log folder if absent; existing contents are untouched
func ensureDirectory(dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmtErrorf("failed to create log directory '%s': %w", dir, err)
	}
	return nil
}

// sameDay compares calendar dates, not just the day of month
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// dayFileName derives the file name for the calendar day of t
func dayFileName(c *Config, t time.Time) string {
	name := t.Format(c.FileDateFormat)
	if c.Extension != "" {
		name += "." + c.Extension
	}
	return name
}

// dayFilePath joins the configured folder and the day file name
func dayFilePath(c *Config, t time.Time) string {
	return filepath.Join(c.Directory, dayFileName(c, t))
}

// openDayFile opens the day file for appending, creating it if needed
func openDayFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return nil, fmtErrorf("failed to open log file '%s': %w", path, err)
	}
	return f, nil
}

// syncGeneration flushes the generation file to stable storage, if open
func (s *Sink) syncGeneration(gen *generation) error {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	if gen.file == nil {
		return nil
	}
	if err := gen.file.Sync(); err != nil {
		return fmtErrorf("failed to sync log file '%s': %w", gen.path, err)
	}
	return nil
}

// closeGeneration releases the generation file, optionally syncing first
func (s *Sink) closeGeneration(gen *generation, sync bool) error {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	if gen.file == nil {
		return nil
	}

	var finalErr error
	if sync {
		if err := gen.file.Sync(); err != nil {
			finalErr = fmtErrorf("failed to sync log file '%s': %w", gen.path, err)
		}
	}
	if err := gen.file.Close(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to close log file '%s': %w", gen.path, err))
	}
	gen.file = nil

	return finalErr
}

// getDiskFreeSpace retrieves available disk space for the given path
func getDiskFreeSpace(path string) (int64, error) {
	var stat syscall.Statfs_t
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmtErrorf("failed to stat log directory '%s': %w", path, err)
	}
	if !info.IsDir() {
		path = filepath.Dir(path)
	}

	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, fmtErrorf("failed to get disk stats for '%s': %w", path, err)
	}
	availableBytes := int64(stat.Bavail) * int64(stat.Bsize)
	return availableBytes, nil
}
