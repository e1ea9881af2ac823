package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/daylog"
	"github.com/spf13/cobra"
)

func newStressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Hammer a sink with concurrent producers and verify every line landed",
		RunE:  runStress,
	}
	cmd.Flags().String("dir", "", "Log directory; a fresh temp directory when empty")
	cmd.Flags().Int("producers", 50, "Concurrent producer goroutines")
	cmd.Flags().Int("lines", 1000, "Lines per producer")
	cmd.Flags().Int("max-message", 512, "Upper bound for random message size")
	cmd.Flags().Bool("keep", false, "Keep the temp directory")
	return cmd
}

func generateRandomMessage(r *rand.Rand, size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[r.Intn(len(chars))])
	}
	return sb.String()
}

func runStress(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	dir, _ := cmd.Flags().GetString("dir")
	producers, _ := cmd.Flags().GetInt("producers")
	linesPer, _ := cmd.Flags().GetInt("lines")
	maxMessage, _ := cmd.Flags().GetInt("max-message")
	keep, _ := cmd.Flags().GetBool("keep")

	if producers <= 0 || linesPer <= 0 || maxMessage <= 0 {
		return fmt.Errorf("producers, lines and max-message must be positive")
	}

	if dir == "" {
		tmp, err := os.MkdirTemp("", "daylog-stress-")
		if err != nil {
			return fmt.Errorf("failed to create temp directory: %w", err)
		}
		dir = tmp
		if !keep {
			defer os.RemoveAll(dir)
		}
	}

	sink, err := daylog.NewBuilder().
		Directory(dir).
		FlushIntervalMs(20).
		InternalErrorsToStderr(true).
		Build()
	if err != nil {
		return err
	}
	defer sink.Shutdown(shutdownTimeout)

	fmt.Fprintf(out, "Starting stress test: %d producers, %d lines each, directory %s\n", producers, linesPer, dir)

	stop := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(out, "\n[Signal Received] Stopping producers...")
			close(stop)
		case <-cmd.Context().Done():
		}
	}()

	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
		rejected atomic.Int64
	)
	startTime := time.Now()

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
			for seq := 0; seq < linesPer; seq++ {
				select {
				case <-stop:
					return
				default:
				}
				msg := generateRandomMessage(r, r.Intn(maxMessage)+1)
				if err := sink.Writef("wkr=%d seq=%d %s", id, seq, msg); err != nil {
					rejected.Add(1)
					continue
				}
				accepted.Add(1)
			}
		}(p)
	}

	wg.Wait()
	produced := time.Since(startTime)

	if err := sink.Shutdown(shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	total := time.Since(startTime)

	written, err := countLines(dir, sink.GetConfig().Extension)
	if err != nil {
		return err
	}

	stats := sink.Stats()
	fmt.Fprintf(out, "Produced %d lines in %v (%d rejected)\n", accepted.Load(), produced.Round(time.Millisecond), rejected.Load())
	fmt.Fprintf(out, "Drained in %v, approximate lines/sec: %.2f\n", total.Round(time.Millisecond), float64(written)/total.Seconds())
	fmt.Fprintf(out, "Written %d, dropped %d, append failures %d, rotations %d\n",
		stats.LinesWritten, stats.DroppedLines, stats.AppendFailures, stats.Rotations)

	if written != accepted.Load() {
		return fmt.Errorf("line count mismatch: accepted %d, found %d on disk", accepted.Load(), written)
	}
	fmt.Fprintln(out, "OK: every accepted line is on disk")
	return nil
}

// countLines counts newline-terminated lines across the day files in dir
func countLines(dir, ext string) (int64, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*."+ext))
	if err != nil {
		return 0, err
	}

	var total int64
	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			return 0, fmt.Errorf("failed to open %s: %w", path, err)
		}
		n, err := countNewlines(f)
		f.Close()
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		total += n
	}
	return total, nil
}

func countNewlines(r io.Reader) (int64, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	var n int64
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if b == '\n' {
			n++
		}
	}
}
