package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oryn/internal/oryn/executor"
	"oryn/internal/oryn/orynconfig"
)

var runScriptCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "run a script of oryn commands, one per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()

		var lines []string
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read script: %w", err)
		}

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
		out := exec.ExecuteScript(ctx, lines)
		if out != "" {
			fmt.Fprintln(os.Stdout, out)
		}
		return nil
	},
}
