// Command itembank-fetch grabs activities, items, or questions from a
// Learnosity item bank and writes the JSON response to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Sternrassler/itembank-client/pkg/client"
	"github.com/Sternrassler/itembank-client/pkg/config"
	"github.com/Sternrassler/itembank-client/pkg/itembank"
	"github.com/Sternrassler/itembank-client/pkg/logging"
	"github.com/Sternrassler/itembank-client/pkg/metrics"
	"github.com/rs/zerolog"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// ExitError carries the process exit code for a failed run.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitError)
	}
	os.Exit(exitOK)
}

// options are the parsed command-line flags.
type options struct {
	endpoint    string
	credentials string
	reference   *string
	limit       int
	logLevel    string
	envFile     string
	metricsFile string
}

func parseFlags(args []string, stderr io.Writer) (*options, bool, error) {
	fs := flag.NewFlagSet("itembank-fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Usage = func() {
		fmt.Fprint(stderr, `Usage: itembank-fetch --endpoint {activities|items|questions} --credentials <path> [options]

  A simple tool to grab data (activities, items, and/or questions) from a
  Learnosity item bank. The JSON output goes to stdout, so redirect it to a
  file of your choosing.

Options:
`)
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.endpoint, "endpoint", "",
		"The Learnosity API endpoint you'd like to use: activities, items, or questions.")
	fs.StringVar(&opts.credentials, "credentials", "",
		"Path to a JSON file with top-level keys consumerKey, consumerSecret, and domain. Defaults to $"+config.EnvCredentials+".")
	reference := fs.String("reference", "",
		"The reference ID of the activity, item, or question you're looking for.")
	fs.IntVar(&opts.limit, "limit", itembank.DefaultLimit,
		"The max number of records to return. Only applies when no reference is set.")
	fs.StringVar(&opts.logLevel, "log-level", "",
		"Log level on stderr: debug, info, warn, error. Defaults to $"+config.EnvLogLevel+" or warn.")
	fs.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile,
		"Optional dotenv file with ITEMBANK_* defaults.")
	fs.StringVar(&opts.metricsFile, "metrics-file", "",
		"Write Prometheus metrics to this file after the request. Defaults to $"+config.EnvMetricsFile+".")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: exitUsage, Message: "Error: " + err.Error()}
	}

	if fs.NArg() > 0 {
		return nil, false, &ExitError{
			Code:    exitUsage,
			Message: fmt.Sprintf("Error: unexpected extra argument %q", fs.Arg(0)),
		}
	}

	// An explicitly passed --reference counts, even when empty.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "reference" {
			opts.reference = reference
		}
	})

	return opts, false, nil
}

// badParameter reports a rejected flag value the way the usage errors do.
func badParameter(flagName string, err error) *ExitError {
	msg := err.Error()
	var argErr *itembank.InvalidArgumentError
	if errors.As(err, &argErr) {
		msg = argErr.Message
		if argErr.Err != nil {
			msg += " (" + argErr.Err.Error() + ")"
		}
	}
	return &ExitError{
		Code:    exitUsage,
		Message: fmt.Sprintf("Error: Invalid value for '--%s': %s", flagName, msg),
	}
}

// run encapsulates the CLI so that tests can drive it without exiting.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, shouldExit, err := parseFlags(args, stderr)
	if err != nil || shouldExit {
		return err
	}

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return &ExitError{Code: exitUsage, Message: "Error: " + err.Error()}
	}
	applyConfig(opts, cfg)

	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return badParameter("log-level", err)
	}
	logging.Setup(logging.Config{Level: level, Pretty: cfg.LogPretty, Output: stderr})
	logger, _ := logging.NewRunLogger("itembank-fetch")

	// Input is checked in full before a client exists.
	endpoint, err := itembank.ValidateEndpoint(opts.endpoint)
	if err != nil {
		logger.Error().Err(err).Msg("Rejected endpoint")
		return badParameter("endpoint", err)
	}

	creds, err := itembank.LoadCredentials(opts.credentials)
	if err != nil {
		logger.Error().Err(err).Str("path", opts.credentials).Msg("Rejected credentials")
		return badParameter("credentials", err)
	}

	logger.Debug().
		Str("endpoint", string(endpoint)).
		Bool("by_reference", opts.reference != nil).
		Int("limit", opts.limit).
		Str("base_url", cfg.BaseURL).
		Msg("Inputs validated")

	c, err := client.New(client.Config{BaseURL: cfg.BaseURL, UserAgent: cfg.UserAgent})
	if err != nil {
		return err
	}

	out, fetchErr := c.Fetch(ctx, endpoint, opts.reference, creds, opts.limit)
	writeMetrics(logger, opts.metricsFile)
	if fetchErr != nil {
		logger.Error().Err(fetchErr).Str("endpoint", string(endpoint)).Msg("Fetch failed")
		return fetchErr
	}

	_, err = fmt.Fprintln(stdout, out)
	return err
}

func applyConfig(opts *options, cfg config.Config) {
	if opts.credentials == "" {
		opts.credentials = cfg.Credentials
	}
	if opts.logLevel == "" {
		opts.logLevel = cfg.LogLevel
	}
	if opts.metricsFile == "" {
		opts.metricsFile = cfg.MetricsFile
	}
}

// writeMetrics exports the run's metrics. Failing to do so never changes the
// exit status.
func writeMetrics(logger zerolog.Logger, path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to write metrics file")
		return
	}
	logger.Info().Str("path", path).Msg("Metrics file written")
}
