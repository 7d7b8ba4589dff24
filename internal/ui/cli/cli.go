// Package cli implements the pyscript command line.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pyscript/internal/core/config"
	"pyscript/internal/core/errors"
	"pyscript/internal/shared/observability"
	"pyscript/internal/shared/version"
)

const (
	exitOK    = 0
	exitAbort = 1
	exitUsage = 2
)

// abortError stops a command with a message for the user and exit status 1.
type abortError struct{ msg string }

func (e abortError) Error() string { return e.msg }

func abort(msg string) error { return abortError{msg: msg} }

// usageError is a malformed invocation; exit status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

// session is the state shared by every command of one invocation.
type session struct {
	stdout, stderr io.Writer

	configPath string
	verbose    bool

	cfg         *config.Config
	cfgLoaded   string
	cleanupLogs func()
	shutdown    func(context.Context) error
}

// Run executes the command line and returns the process exit status.
func Run(args []string) int {
	return run(context.Background(), args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	s := &session{stdout: stdout, stderr: stderr}
	root := newRootCommand(s)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	s.close(ctx)
	return s.exitCode(root, err)
}

func newRootCommand(s *session) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:           "pyscript",
		Short:         "Command Line Interface for PyScript.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError{fmt.Errorf("unknown command %q", args[0])}
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.open(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				printVersion(s.stdout)
				return nil
			}
			return cmd.Help()
		},
	}
	root.SetOut(s.stdout)
	root.SetErr(s.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.Flags().BoolVar(&showVersion, "version", false, "Show project version and exit.")
	root.PersistentFlags().StringVar(&s.configPath, "config", config.DefaultFile, "Path to the TOML config file")
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newVersionCommand(s))
	root.AddCommand(newWrapCommand(s))
	root.AddCommand(newScanCommand(s))
	return root
}

func newVersionCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show project version and exit.",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			printVersion(s.stdout)
		},
	}
}

func printVersion(w io.Writer) {
	printStyled(w, versionStyle, "PyScript CLI version: "+version.Version)
}

// open configures logging, loads configuration and starts tracing.
func (s *session) open(cmd *cobra.Command) error {
	s.cleanupLogs = configureLogging(s.stderr, s.verbose)

	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(s.configPath)
	} else {
		cfg, err = config.LoadOrDefault(s.configPath)
	}
	if err != nil {
		return err
	}
	config.ApplyEnvOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if _, statErr := os.Stat(s.configPath); statErr == nil {
		s.cfgLoaded = s.configPath
	}
	s.cfg = cfg

	shutdown, err := observability.Init(cmd.Context(), observability.TraceConfig{
		ServiceName:    "pyscript",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.OTLPInsecure,
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "tracing setup failed")
	}
	s.shutdown = shutdown
	slog.Debug("configuration loaded", "path", s.cfgLoaded, "release_url", cfg.Runtime.ReleaseURL)
	return nil
}

func (s *session) close(ctx context.Context) {
	if s.shutdown != nil {
		if err := s.shutdown(ctx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}
	if s.cleanupLogs != nil {
		s.cleanupLogs()
	}
}

func (s *session) exitCode(root *cobra.Command, err error) int {
	if err == nil {
		return exitOK
	}

	var usage usageError
	if stderrors.As(err, &usage) {
		printStyled(s.stderr, errorStyle, "Error: "+usage.Error())
		fmt.Fprintf(s.stderr, "Run '%s --help' for usage.\n", root.CommandPath())
		return exitUsage
	}

	var ab abortError
	if stderrors.As(err, &ab) {
		printStyled(s.stderr, errorStyle, ab.msg)
		return exitAbort
	}

	printStyled(s.stderr, errorStyle, err.Error())
	return exitAbort
}
