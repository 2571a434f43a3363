// Command segqual compares one predicted label volume with a ground truth and
// prints detection counts and metrics as key=value lines.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jamesainslie/go-segqual"
	"github.com/jamesainslie/go-segqual/evaluate"
	"github.com/jamesainslie/go-segqual/internal/cli"
	"github.com/jamesainslie/go-segqual/internal/exitcode"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cli.LoadEnv()

	fs := flag.NewFlagSet("segqual", flag.ContinueOnError)
	fs.SetOutput(stderr)
	debugDir := fs.String("debug-dir", "", "Write per-region debug tables under this directory")
	strict := fs.Bool("strict", false, "Exit non-zero when a metric is undefined")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn or error (env "+cli.EnvLogLevel+")")
	showVersion := fs.Bool("version", false, "Print version and exit")
	fs.Usage = func() {
		_, _ = fmt.Fprintln(stderr, "Usage: segqual [OPTIONS] PREDICTED GROUNDTRUTH")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitcode.OK
		}
		return exitcode.Usage
	}
	if *showVersion {
		_, _ = fmt.Fprintln(stdout, "segqual", version)
		return exitcode.OK
	}

	level, err := cli.LogLevel(*logLevel)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return exitcode.Classify(err)
	}
	logger := cli.NewLogger(stderr, level)

	if fs.NArg() != 2 {
		err := fmt.Errorf("%w: want 2 arguments, got %d", exitcode.ErrUsage, fs.NArg())
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		fs.Usage()
		return exitcode.Classify(err)
	}
	predicted, groundTruth := fs.Arg(0), fs.Arg(1)

	e := evaluate.New(evaluate.WithLogger(logger), evaluate.WithDebugDir(*debugDir))
	out, err := e.Compare(context.Background(), predicted, groundTruth)
	if err != nil {
		cli.Fail(logger, "comparison failed", err)
		return exitcode.Classify(err)
	}

	printOutcome(stdout, out)

	if out.MetricErr != nil {
		logger.Warn("undefined metrics", "metrics", out.Metrics.Undefined)
		if *strict {
			return exitcode.Classify(out.MetricErr)
		}
	}
	if out.DebugDir != "" {
		logger.Info("wrote debug tables", "dir", out.DebugDir)
	}
	return exitcode.OK
}

func printOutcome(w io.Writer, out *evaluate.Outcome) {
	c := out.Result.Counts
	m := out.Metrics
	lines := []struct {
		key   string
		value string
	}{
		{"nFP", strconv.Itoa(c.FalsePositives)},
		{"nTP", strconv.Itoa(c.TruePositives)},
		{"nFN", strconv.Itoa(c.FalseNegatives)},
		{"nNoiseFP", strconv.Itoa(c.NoiseFalsePositives)},
		{"nNonNoiseFP", strconv.Itoa(c.NonNoiseFalsePositives)},
		{"Recall", metric(m, segqual.MetricRecall, m.Recall)},
		{"Precision", metric(m, segqual.MetricPrecision, m.Precision)},
		{"fMeasure", metric(m, segqual.MetricFMeasure, m.FMeasure)},
		{"Accuracy", metric(m, segqual.MetricAccuracy, m.Accuracy)},
	}
	for _, l := range lines {
		_, _ = fmt.Fprintf(w, "%s=%s\n", l.key, l.value)
	}
}

func metric(m segqual.Metrics, name string, v float64) string {
	if !m.Defined(name) {
		return "undefined"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
