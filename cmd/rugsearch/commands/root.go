// Package commands implements the rugsearch command line.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usestring/rugsearch/internal/config"
	"github.com/usestring/rugsearch/internal/logging"
)

// ExitError ends the process with Code. Its message has already been shown.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// globals holds state shared by every command.
type globals struct {
	envFile  string
	baseURL  string
	logLevel string
	version  string

	cfg        *config.Config
	logCleanup func() error
}

// NewRootCommand builds the rugsearch command tree.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(&globals{version: version})
}

func newRootCommand(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:           "rugsearch",
		Short:         "Search the rug catalog by room photo or description",
		Version:       g.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "Environment file loaded before reading configuration")
	root.PersistentFlags().StringVar(&g.baseURL, "base-url", "", "Backend origin (overrides RUGSEARCH_BASE_URL)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	root.AddCommand(
		NewSearchCommand(g),
		NewModesCommand(g),
		NewMCPCommand(g),
	)
	for _, cmd := range root.Commands() {
		g.closeLogsAfter(cmd)
	}
	return root
}

// closeLogsAfter runs the log cleanup when cmd's RunE returns, error or not.
// Cobra skips post-run hooks after a failed RunE.
func (g *globals) closeLogsAfter(cmd *cobra.Command) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := g.closeLogs(); err == nil {
				err = cerr
			}
		}()
		return run(cmd, args)
	}
}

func (g *globals) closeLogs() error {
	if g.logCleanup == nil {
		return nil
	}
	cleanup := g.logCleanup
	g.logCleanup = nil
	return cleanup()
}

func (g *globals) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(g.envFile); err != nil {
		return err
	}
	cfg := config.Load()
	if g.baseURL != "" {
		cfg.BaseURL = g.baseURL
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	g.cfg = cfg

	cleanup, err := logging.Setup(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
		Output:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	g.logCleanup = cleanup
	return nil
}
