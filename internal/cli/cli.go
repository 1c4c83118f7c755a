// Package cli parses the command line of jobgen.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spachava753/jobgen/internal/config"
	"github.com/spachava753/jobgen/internal/models"
	"github.com/spachava753/jobgen/internal/util"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Options holds the parsed command line.
type Options struct {
	// ConfigPath is the jobgen.toml to load, empty for built-in defaults.
	ConfigPath string
	// Sources are the job matrix files or URLs.
	Sources []string
	// Waves overrides the wave sizes of the config file.
	Waves     models.WaveSize
	LogLevel  slog.Level
	LogFormat string
	// Summary prints a JSON summary of the document to stderr.
	Summary bool
	// ListCatalog prints the version catalog instead of a document.
	ListCatalog bool
}

// Parse processes command-line arguments. lookupEnv reads the wave size
// environment variables, which apply below -wave flags. It returns the
// options, whether the program should exit cleanly, or an *ExitError.
func Parse(args []string, output io.Writer, lookupEnv func(string) (string, bool)) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("jobgen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
jobgen - generates the GitLab CI document of the alpaka job matrix.

Usage:
  jobgen [options] MATRIX...
  jobgen [options] -list-catalog

Arguments:
  MATRIX
    Path or http(s) URL of a job matrix YAML file.

Environment:
  JOBGEN_WAVE_<CATEGORY>
    Wave size of a category, e.g. JOBGEN_WAVE_RUNTIME=4.

Options:
`)
		flagSet.PrintDefaults()
	}

	flagWaves := make(models.WaveSize)
	configFlag := flagSet.String("config", config.DefaultFileName, "Path to the config file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	summaryFlag := flagSet.Bool("summary", false, "Print a JSON summary of the generated document to stderr.")
	listCatalogFlag := flagSet.Bool("list-catalog", false, "Print the supported software versions and exit.")
	flagSet.Func("wave", "Wave size as category=size. Repeatable.", func(s string) error {
		category, size, err := util.ParseWaveSize(s)
		if err != nil {
			return err
		}
		flagWaves[category] = size
		return nil
	})

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 && !*listCatalogFlag {
		flagSet.Usage()
		return nil, false, &ExitError{Code: 2, Message: "no job matrix given"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(*logLevelFlag)); err != nil {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	configPath := *configFlag
	if !isFlagSet(flagSet, "config") {
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			configPath = ""
		}
	}

	envWaves, err := util.WaveSizesFromEnv(lookupEnv)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return &Options{
		ConfigPath:  configPath,
		Sources:     flagSet.Args(),
		Waves:       config.MergeWaves(envWaves, flagWaves),
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		Summary:     *summaryFlag,
		ListCatalog: *listCatalogFlag,
	}, false, nil
}

func isFlagSet(flagSet *flag.FlagSet, name string) bool {
	set := false
	flagSet.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// NewLogger creates the logger selected by opts, writing to w.
func NewLogger(w io.Writer, opts *Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.LogLevel}
	if opts.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
