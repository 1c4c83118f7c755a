package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spachava753/jobgen/internal/cli"
	"github.com/spachava753/jobgen/internal/generator"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// Setup context with manual signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("interrupt received, shutting down", "signal", sig)
		cancel()
	}()

	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	signal.Stop(sigChan)
	cancel()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		slog.Error("generating pipeline failed", "error", err)
		os.Exit(1)
	}
}

// run writes the CI document to stdout. Logs and the summary go to stderr so
// stdout can be redirected into the pipeline file.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, stderr, os.LookupEnv)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	slog.SetDefault(cli.NewLogger(stderr, opts))
	slog.Debug("starting", "config", opts.ConfigPath, "sources", opts.Sources, "waves", opts.Waves)

	if opts.ListCatalog {
		return generator.ListCatalog(opts.ConfigPath, stdout)
	}

	summary, err := generator.RunFromConfig(ctx, opts.ConfigPath, opts.Waves, opts.Sources, stdout)
	if err != nil {
		return err
	}

	slog.Info("pipeline generated", "jobs", summary.TotalJobs, "stages", len(summary.Stages))

	if opts.Summary {
		enc := json.NewEncoder(stderr)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	return nil
}
