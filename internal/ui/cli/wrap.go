package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pyscript/internal/core/app"
	"pyscript/internal/core/config"
	"pyscript/internal/engine/scanner"
	"pyscript/internal/shared/util"
)

const unsupportedWarning = "WARNING: The input file contains some imports which are not currently supported PyScript.\n" +
	"Therefore the code might not work, or require some changes."

// tempPageTTL is how long a temporary page outlives the browser launch.
var tempPageTTL = time.Second

type wrapOptions struct {
	output  string
	command string
	show    bool
	title   string
	watch   bool
}

func newWrapCommand(s *session) *cobra.Command {
	var opts wrapOptions

	cmd := &cobra.Command{
		Use:   "wrap [INPUT]",
		Short: "Wrap a Python script inside an HTML file.",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageError{fmt.Errorf("accepts at most one input file, received %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return s.runWrap(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Path to the resulting HTML output file. Defaults to input_file with suffix replaced.")
	cmd.Flags().StringVarP(&opts.command, "command", "c", "", "If provided, embed a single command string.")
	cmd.Flags().BoolVar(&opts.show, "show", false, "Open output file in web browser.")
	cmd.Flags().StringVar(&opts.title, "title", "", "Add title to HTML file.")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Rewrap the input file whenever it or a sibling module changes.")
	return cmd
}

func (s *session) runWrap(ctx context.Context, input string, opts wrapOptions) error {
	if input == "" && opts.command == "" {
		return abort("Must provide either an input '.py' file or a command with the '-c' option.")
	}
	if input != "" && opts.command != "" {
		return abort("Cannot provide both an input '.py' file and '-c' option.")
	}
	if opts.watch && input == "" {
		return abort("The `--watch` option requires an input file.")
	}

	output := opts.output
	removeOutput := false
	if output == "" {
		switch {
		case opts.command != "" && opts.show:
			output = filepath.Join(os.TempDir(), "pyscript-"+uuid.NewString()+".html")
			removeOutput = true
		case opts.command == "":
			output = app.OutputPath(input)
		default:
			return abort("Must provide an output file or use `--show` option")
		}
	}

	a, err := app.New(s.cfg)
	if err != nil {
		return err
	}

	if input != "" {
		result, err := a.WrapFile(ctx, input, output, opts.title)
		switch {
		case err != nil && !opts.watch:
			return err
		case err != nil:
			printStyled(s.stderr, errorStyle, err.Error())
		default:
			reportWarnings(s.stdout, result)
		}
	} else if err := a.WrapString(opts.command, output, opts.title); err != nil {
		return err
	}

	if opts.show {
		if err := s.show(output); err != nil {
			return err
		}
	}
	if removeOutput {
		time.Sleep(tempPageTTL)
		if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove temporary page", "path", output, "error", err)
		}
	}

	if opts.watch {
		return s.watch(ctx, a, input, output, opts.title)
	}
	return nil
}

func reportWarnings(w io.Writer, result scanner.FinderResult) {
	if !result.HasWarnings() {
		return
	}
	msg := unsupportedWarning
	if len(result.UnsupportedPackages) > 0 {
		msg += "\n" + formatList(result.UnsupportedPackages)
	}
	if len(result.UnsupportedPaths) > 0 {
		msg += "\n" + formatList(result.UnsupportedPaths)
	}
	printStyled(w, warningStyle, msg)
}

func formatList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "'" + item + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func (s *session) show(output string) error {
	abs, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	printStyled(s.stdout, infoStyle, "Opening in web browser!")
	return openBrowser("file://" + filepath.ToSlash(abs))
}

// watch keeps rewrapping input until interrupted. The config file, when one
// was loaded, is watched too so edits to it apply to the next rebuild.
func (s *session) watch(ctx context.Context, a *app.App, input, output, title string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := a.Config().Observability.MetricsAddr; addr != "" {
		limits := util.NewLimiterRegistry(ctx, metricsRequestsPerSecond, metricsBurst, time.Minute)
		server := NewObservabilityServer(addr, app.NewHealthService(a), limits)
		if err := server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	if s.cfgLoaded != "" {
		cw := config.NewWatcher(s.cfgLoaded, func(cfg *config.Config) {
			if err := a.Reconfigure(cfg); err != nil {
				slog.Warn("ignoring reloaded config", "error", err)
			}
		})
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		} else {
			defer cw.Stop()
		}
	}

	printStyled(s.stdout, infoStyle, fmt.Sprintf("Watching %s for changes. Press Ctrl+C to stop.", input))
	return a.Watch(ctx, app.WatchRequest{
		Input:  input,
		Output: output,
		Title:  title,
		OnBuild: func(result scanner.FinderResult, err error) {
			if err != nil {
				printStyled(s.stderr, errorStyle, err.Error())
				return
			}
			reportWarnings(s.stdout, result)
		},
	})
}
