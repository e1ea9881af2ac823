package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/daylog/redisbus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newTailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print lines published by remote sinks",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("redis")
			channel, _ := cmd.Flags().GetString("channel")
			withSource, _ := cmd.Flags().GetBool("source")

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			client := redis.NewClient(&redis.Options{Addr: addr})
			defer client.Close()

			out := cmd.OutOrStdout()
			return redisbus.Listen(ctx, client, channel, func(env redisbus.Envelope) {
				if withSource {
					fmt.Fprintf(out, "%s %s\n", env.Source, env.Line)
					return
				}
				fmt.Fprintln(out, env.Line)
			})
		},
	}
	cmd.Flags().String("redis", "127.0.0.1:6379", "Redis address")
	cmd.Flags().String("channel", redisbus.DefaultConfig().Channel, "Redis channel")
	cmd.Flags().Bool("source", false, "Prefix each line with its publisher id")
	return cmd
}
