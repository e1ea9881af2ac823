package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "daylog",
		Short:        "Day-rotating log sink tools",
		Long:         "daylog writes lines into one file per calendar day and mirrors them to observers.",
		SilenceUsage: true,
	}
	root.AddCommand(newPipeCommand())
	root.AddCommand(newStressCommand())
	root.AddCommand(newTailCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
