package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/daylog"
	"github.com/lixenwraith/daylog/compat"
	"github.com/lixenwraith/daylog/redisbus"
	"github.com/lixenwraith/daylog/viewer"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// maxLineSize bounds a single stdin line
const maxLineSize = 1 << 20

func newPipeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Write stdin lines into the day files",
		Long: "Reads stdin line by line and writes each line to the sink. " +
			"Everything read is drained to disk at EOF or on SIGINT/SIGTERM.",
		RunE: runPipe,
	}
	cmd.Flags().String("dir", "", "Log directory (overrides config)")
	cmd.Flags().Int64("max-lines", 0, "History size (overrides config)")
	cmd.Flags().String("config", "", "TOML config file with a [daylog] table")
	cmd.Flags().StringArray("set", nil, "Config override key=value, repeatable")
	cmd.Flags().String("redis", "", "Redis address to mirror lines to")
	cmd.Flags().String("channel", redisbus.DefaultConfig().Channel, "Redis channel")
	cmd.Flags().String("http", "", "Listen address for the history viewer")
	return cmd
}

func loadConfig(cmd *cobra.Command) (*daylog.Config, error) {
	cfg := daylog.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := daylog.NewConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("dir") {
		cfg.Directory, _ = cmd.Flags().GetString("dir")
	}
	if cmd.Flags().Changed("max-lines") {
		cfg.MaxLines, _ = cmd.Flags().GetInt64("max-lines")
	}
	return cfg, nil
}

func runPipe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sink, err := daylog.New(cfg)
	if err != nil {
		return err
	}
	defer sink.Shutdown(shutdownTimeout)

	if overrides, _ := cmd.Flags().GetStringArray("set"); len(overrides) > 0 {
		if err := sink.ApplyConfigString(overrides...); err != nil {
			return err
		}
	}

	stderr := cmd.ErrOrStderr()
	sink.SetErrorHandler(func(err error) {
		fmt.Fprintf(stderr, "daylog: %v\n", err)
	})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		channel, _ := cmd.Flags().GetString("channel")
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", addr, err)
		}
		publisher := redisbus.NewPublisher(client, redisbus.Config{Channel: channel})
		detach := publisher.Attach(sink)
		defer detach()
	}

	if addr, _ := cmd.Flags().GetString("http"); addr != "" {
		server := viewer.New(sink).Server(compat.NewFastHTTPAdapter(sink))
		go func() {
			if err := server.ListenAndServe(addr); err != nil {
				_ = sink.Writef("viewer stopped: %v", err)
			}
		}()
		defer server.Shutdown()
	}

	if err := pipeLines(ctx, cmd, sink); err != nil {
		return err
	}

	// Drain before the observers above are detached
	return sink.Shutdown(shutdownTimeout)
}

// pipeLines writes stdin lines until EOF or ctx is done
func pipeLines(ctx context.Context, cmd *cobra.Command, sink *daylog.Sink) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("failed to read stdin: %w", err)
					}
				default:
				}
				return nil
			}
			if err := sink.Write(line); err != nil {
				return err
			}
		}
	}
}
