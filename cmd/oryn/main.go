// Package main is the oryn CLI entry point: a cobra command tree wiring the
// normalize/parse/resolve/translate/execute pipeline to a real browser
// backend. File layout uses one cmd_*.go file per subcommand:
//
//   - main.go       - entry point, rootCmd, global flags
//   - cmd_repl.go   - interactive shell (repl)
//   - cmd_run.go    - script mode (run <file>)
//   - cmd_oil.go    - one-shot single-line mode (oil <line>)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"oryn/internal/oryn/obslog"
	"oryn/internal/oryn/orynconfig"
)

var (
	verbose    bool
	configPath string
	headless   bool

	logger *zap.Logger
	cfg    *orynconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "oryn",
	Short: "oryn - semantic browser-automation command shell",
	Long: `oryn drives a real web browser from short natural-language-flavored
commands ("click \"Sign In\"", "type email \"u@x.com\"", "wait visible
\"Cart\""), resolving element references semantically against a live DOM
scan rather than through fragile CSS selectors.

Run without arguments to start the interactive shell.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		home, _ := os.UserHomeDir()
		orynconfig.LoadDotenv(filepath.Join(home, ".oryn", ".env"))

		path := configPath
		if path == "" && home != "" {
			path = filepath.Join(home, ".oryn", "config.yaml")
		}
		c, err := orynconfig.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if verbose {
			c.Logging.DebugMode = true
			c.Logging.Level = "debug"
		}
		if headless {
			c.Backend.Headless = true
		}
		cfg = c

		ws, _ := os.Getwd()
		if err := obslog.Initialize(ws, cfg.Logging); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize obslog: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		obslog.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default: ~/.oryn/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "run the browser headless")

	rootCmd.AddCommand(replCmd, runScriptCmd, oilCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
