// Command segqual-batch evaluates a list of predicted label volumes against
// one ground truth, as described by a JSON descriptor, and writes metric tables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/jamesainslie/go-segqual/evaluate"
	"github.com/jamesainslie/go-segqual/internal/cli"
	"github.com/jamesainslie/go-segqual/internal/exitcode"
	"github.com/jamesainslie/go-segqual/task"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cli.LoadEnv()

	fs := flag.NewFlagSet("segqual-batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	workers := fs.Int("workers", 0, "Concurrent comparisons (overrides descriptor; env "+cli.EnvWorkers+")")
	policy := fs.String("policy", "", "Failure policy: abort or skip (overrides descriptor)")
	withSQLite := fs.Bool("sqlite", false, "Also store results in metrics.db (overrides descriptor)")
	debug := fs.Bool("debug", false, "Write per-region debug tables (overrides descriptor)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn or error (env "+cli.EnvLogLevel+")")
	showVersion := fs.Bool("version", false, "Print version and exit")
	fs.Usage = func() {
		_, _ = fmt.Fprintln(stderr, "Usage: segqual-batch [OPTIONS] DESCRIPTOR.json")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitcode.OK
		}
		return exitcode.Usage
	}
	if *showVersion {
		_, _ = fmt.Fprintln(stdout, "segqual-batch", version)
		return exitcode.OK
	}

	level, err := cli.LogLevel(*logLevel)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return exitcode.Classify(err)
	}
	logger := cli.NewLogger(stderr, level)

	if fs.NArg() != 1 {
		err := fmt.Errorf("%w: want 1 argument, got %d", exitcode.ErrUsage, fs.NArg())
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		fs.Usage()
		return exitcode.Classify(err)
	}

	desc, err := evaluate.LoadDescriptor(fs.Arg(0))
	if err != nil {
		cli.Fail(logger, "invalid descriptor", err)
		return exitcode.Classify(err)
	}

	// Flags given explicitly win over the descriptor.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			desc.Workers = *workers
		case "policy":
			desc.FailurePolicy = evaluate.Policy(*policy)
		case "sqlite":
			desc.SQLite = *withSQLite
		case "debug":
			desc.SaveDebugInfo = *debug
		}
	})
	pol, err := evaluate.ParsePolicy(string(desc.FailurePolicy))
	if err != nil {
		cli.Fail(logger, "invalid policy", err)
		return exitcode.Classify(err)
	}
	n, err := cli.Workers(desc.Workers)
	if err != nil {
		cli.Fail(logger, "invalid workers", err)
		return exitcode.Classify(err)
	}

	opts := []evaluate.Option{
		evaluate.WithLogger(logger),
		evaluate.WithWorkers(n),
		evaluate.WithPolicy(pol),
	}
	if desc.SaveDebugInfo {
		opts = append(opts, evaluate.WithDebugDir(filepath.Join(desc.OutputDirectory, evaluate.DebugSubdir)))
	}
	e := evaluate.New(opts...)

	batchID := uuid.NewString()
	var rep *evaluate.Report

	queue := task.NewQueue(1)
	defer queue.Close()
	h := queue.Submit(context.Background(), func(ctx context.Context) error {
		records, err := e.Run(ctx, desc.Batch())
		if err != nil {
			return err
		}
		rep, err = evaluate.WriteReport(ctx, desc.OutputDirectory, batchID, records, desc.SQLite)
		return err
	})
	logger.Info("batch started", "batch_id", batchID, "task_id", h.ID(),
		"items", len(desc.TestFiles), "policy", pol, "workers", n)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case <-h.Done():
	case <-sigCtx.Done():
		logger.Warn("interrupted, cancelling batch", "task_id", h.ID())
		h.Cancel()
	}

	if err := h.Wait(); err != nil {
		cli.Fail(logger, "batch "+h.State().String(), err)
		return exitcode.Classify(err)
	}

	logger.Info("batch written", "batch_id", batchID, "rows", rep.Rows, "dir", desc.OutputDirectory)
	_, _ = fmt.Fprintf(stdout, "batch=%s\nmetrics=%s\nsummary=%s\n", rep.BatchID, rep.Metrics, rep.Summary)
	if rep.SQLite != "" {
		_, _ = fmt.Fprintf(stdout, "sqlite=%s\n", rep.SQLite)
	}
	return exitcode.OK
}
