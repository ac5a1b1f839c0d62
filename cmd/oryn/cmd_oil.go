package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"oryn/internal/oryn/executor"
	"oryn/internal/oryn/orynconfig"
)

// oilCmd runs one "one-shot" line: `oryn oil click "Sign In"`, for a caller
// scripting oryn from a shell without wanting a full REPL session.
var oilCmd = &cobra.Command{
	Use:   "oil <command...>",
	Short: "run a single oryn command line and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := strings.Join(args, " ")

		c := cfg
		if c == nil {
			c = orynconfig.DefaultConfig()
		}
		ctx := cmd.Context()
		b := buildBackend(c)
		if err := b.Launch(ctx); err != nil {
			return fmt.Errorf("launch backend: %w", err)
		}
		defer b.Close(ctx)

		exec := executor.New(b, c)
		out := exec.ExecuteLine(ctx, line)
		if out != "" {
			fmt.Fprintln(os.Stdout, out)
		}
		return nil
	},
}
