package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/flowgrid/internal/app"
)

// Exit codes.
const (
	ExitRuntime = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("flowgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Flowgrid - a typed dataflow graph runtime.

Usage:
  flowgrid [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	graphFlag := flagSet.String("graph", "", "Path to the graph file or directory.")
	gFlag := flagSet.String("g", "", "Path to the graph file or directory (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	stepsFlag := flagSet.Int("steps", 0, "Run this many steps synchronously and exit. 0 runs on the timer.")
	intervalFlag := flagSet.Duration("interval", 0, "Tick interval of the timer. Defaults to 1ms.")
	durationFlag := flagSet.Duration("duration", 0, "Stop the timer after this long. 0 runs until interrupted.")
	unsafeFlag := flagSet.Bool("unsafe", false, "Return execution faults of synchronous runs instead of recording them.")
	metricsFlag := flagSet.String("metrics", "none", "Metrics exporter. Options: 'none', 'stdout', 'prometheus'.")
	tracesFlag := flagSet.String("traces", "none", "Trace exporter. Options: 'none', 'stdout'.")
	relayURLFlag := flagSet.String("relay-url", "", "socket.io endpoint receiving graph events. Empty disables the relay.")
	relayNSFlag := flagSet.String("relay-namespace", "/", "socket.io namespace of the relay.")
	dumpFlag := flagSet.Bool("dump", false, "Print the graph snapshot as JSON after the run.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *graphFlag != "" {
		path = *graphFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Graph path determined.", "path", path)

	if path == "" {
		slog.Debug("No graph path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if *unsafeFlag && *stepsFlag == 0 {
		return nil, false, usageError("--unsafe requires --steps")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		GraphPath:       path,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		Steps:           *stepsFlag,
		Interval:        *intervalFlag,
		Duration:        *durationFlag,
		Unsafe:          *unsafeFlag,
		MetricsExporter: strings.ToLower(*metricsFlag),
		TraceExporter:   strings.ToLower(*tracesFlag),
		RelayURL:        *relayURLFlag,
		RelayNamespace:  *relayNSFlag,
		Dump:            *dumpFlag,
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
