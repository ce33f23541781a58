package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hannajonsd/jsparse/analyzer"
	"github.com/hannajonsd/jsparse/config"
	"github.com/hannajonsd/jsparse/parser"
	"github.com/hannajonsd/jsparse/telemetry"
)

// errFailures makes the process exit with status 1 after output has been
// written.
var errFailures = errors.New("one or more files failed")

type app struct {
	cfg           config.Config
	trace         bool
	metricsFile   string
	shutdownTrace func(context.Context) error
}

var state = &app{cfg: config.Default()}

var rootCmd = &cobra.Command{
	Use:               "jsparse",
	Short:             "Parse JavaScript and TypeScript sources",
	Long:              `jsparse parses JavaScript and TypeScript files, reports syntax diagnostics and lists the packages they import.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func main() {
	rootCmd.AddCommand(parseCmd, tokensCmd, syntaxCmd, depsCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: jsparse.yaml, jsparse.yml or jsparse.toml in the working directory)")
	flags.String("mode", "auto", "parse mode (auto|module|script)")
	flags.Bool("scope", false, "run scope analysis")
	flags.String("format", "text", "output format (text|json|msgpack)")
	flags.Int("jobs", 0, "files parsed in parallel (default: number of CPUs)")
	flags.String("color", "auto", "colorize output (auto|always|never)")
	flags.Int64("max-file-size", config.DefaultMaxFileSize, "skip files larger than this many bytes")
	flags.StringSlice("exclude", nil, "gitignore-style patterns to skip")
	flags.Bool("trace", false, "write OpenTelemetry spans to stderr")
	flags.String("metrics-file", "", "write Prometheus metrics to this file")
	flags.String("log-level", "warn", "log level (debug|info|warn|error)")

	err := rootCmd.Execute()
	if ferr := state.finish(context.Background()); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		if !errors.Is(err, errFailures) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	levelName, _ := flags.GetString("log-level")
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return fmt.Errorf("invalid log level %q", levelName)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	path, _ := flags.GetString("config")
	if path == "" {
		path = config.Find(".")
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		state.cfg = cfg
		slog.Debug("loaded config", slog.String("path", path))
	}
	if err := state.applyFlags(cmd); err != nil {
		return err
	}

	state.trace, _ = flags.GetBool("trace")
	state.metricsFile, _ = flags.GetString("metrics-file")
	if state.trace {
		shutdown, err := telemetry.SetupTracing(os.Stderr)
		if err != nil {
			return err
		}
		state.shutdownTrace = shutdown
	}
	return nil
}

// applyFlags overrides config values with the flags given on the command
// line.
func (a *app) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		s, _ := flags.GetString("mode")
		mode, err := parser.ParseMode(s)
		if err != nil {
			return err
		}
		a.cfg.Mode = mode
	}
	if flags.Changed("scope") {
		a.cfg.Scope, _ = flags.GetBool("scope")
	}
	if flags.Changed("tokens") {
		a.cfg.Tokens, _ = flags.GetBool("tokens")
	}
	if flags.Changed("format") {
		a.cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("jobs") {
		a.cfg.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("color") {
		a.cfg.Color, _ = flags.GetString("color")
	}
	if flags.Changed("max-file-size") {
		a.cfg.MaxFileSize, _ = flags.GetInt64("max-file-size")
	}
	if flags.Changed("exclude") {
		exclude, _ := flags.GetStringSlice("exclude")
		a.cfg.Exclude = append(a.cfg.Exclude, exclude...)
	}
	return a.cfg.Validate()
}

// finish flushes spans and writes the metrics file, also after a failed
// command.
func (a *app) finish(ctx context.Context) error {
	if a.shutdownTrace != nil {
		if err := a.shutdownTrace(ctx); err != nil {
			slog.Warn("failed to flush spans", slog.String("error", err.Error()))
		}
	}
	if a.metricsFile != "" {
		return telemetry.WriteMetrics(a.metricsFile)
	}
	return nil
}

func (a *app) colored() bool {
	switch a.cfg.Color {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok || strings.EqualFold(os.Getenv("TERM"), "dumb") {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func (a *app) analyzer(opts analyzer.Options) *analyzer.Analyzer {
	opts.Mode = a.cfg.Mode
	opts.ScopeAnalysis = opts.ScopeAnalysis || a.cfg.Scope
	opts.CaptureTokens = opts.CaptureTokens || a.cfg.Tokens
	opts.Jobs = a.cfg.Jobs
	opts.MaxFileSize = a.cfg.MaxFileSize
	opts.Exclude = a.cfg.Exclude
	opts.Syntax = a.cfg.SyntaxFor
	return analyzer.New(opts)
}

func (a *app) printer() (*analyzer.Printer, error) {
	return analyzer.NewPrinter(os.Stdout, a.cfg.Format, a.colored())
}

func roots(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}
