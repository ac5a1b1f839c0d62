package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oryn/internal/oryn/executor"
	"oryn/internal/oryn/orynconfig"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "start the interactive oryn shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL(cmd.Context(), cfg)
	},
}

// runREPL is a thin line-at-a-time loop: read a line, hand it to the
// Executor, print the formatted result. No history, no completion, no color.
func runREPL(ctx context.Context, c *orynconfig.Config) error {
	if c == nil {
		c = orynconfig.DefaultConfig()
	}
	b := buildBackend(c)
	if err := b.Launch(ctx); err != nil {
		return fmt.Errorf("launch backend: %w", err)
	}
	defer b.Close(ctx)

	exec := executor.New(b, c)
	sc := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(os.Stdout, "oryn> type a command, or 'exit' to quit")
	for {
		fmt.Fprint(os.Stdout, "oryn> ")
		if !sc.Scan() {
			return nil
		}
		line := sc.Text()
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "q" {
			return nil
		}
		out := exec.ExecuteLine(ctx, line)
		if out != "" {
			fmt.Fprintln(os.Stdout, out)
		}
	}
}
