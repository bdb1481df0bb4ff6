package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/fwojciec/spyder"
	"github.com/fwojciec/spyder/crawl"
	"github.com/fwojciec/spyder/ingest"
)

var (
	workerColor  = color.New(color.FgCyan, color.Bold)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	okColor      = color.New(color.FgGreen)
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	workers, err := parseWorkers(c.Workers, c.Links)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", spyder.ErrorMessage(err))
		return err
	}

	sources := make([]spyder.Source, 0, len(workers))
	for _, w := range workers {
		src, err := deps.NewSource(w, c.Links)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", spyder.ErrorMessage(err))
			return err
		}
		sources = append(sources, src)
	}

	report, err := deps.Ingester.Run(deps.Ctx, sources)
	printReport(deps.Stdout, report)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", spyder.ErrorMessage(err))
		return err
	}
	return nil
}

// printReport writes the per-worker summary of a run.
func printReport(w io.Writer, report *ingest.Report) {
	if report == nil {
		return
	}
	for _, res := range report.Results {
		workerColor.Fprintf(w, "%s", res.Worker)
		fmt.Fprintf(w, ": %d documents (%s), %d entries inserted, %d duplicates",
			res.Documents, crawl.FormatBytes(res.Bytes), res.Inserted, res.Duplicates)
		if res.Duration > 0 {
			fmt.Fprintf(w, " in %s", res.Duration.Round(time.Millisecond))
		}
		fmt.Fprintln(w)

		if res.Tokens > 0 {
			fmt.Fprintf(w, "  %s\n", crawl.FormatTokens(res.Tokens))
		}
		if n := len(res.Skipped); n > 0 {
			warningColor.Fprintf(w, "  warning: %d skipped (%d download failures, %d unreadable)\n",
				n, res.FetchFailures(), res.Unreadable())
			for _, err := range res.Skipped {
				warningColor.Fprintf(w, "    %s\n", spyder.ErrorMessage(err))
			}
		}
		for _, f := range res.Failed {
			warningColor.Fprintf(w, "  warning: %s not embedded: %s\n",
				crawl.TruncateURL(f.Source, 80), spyder.ErrorMessage(f.Err))
		}
		if res.FailedWrites > 0 {
			errorColor.Fprintf(w, "  error: %d entries could not be written\n", res.FailedWrites)
		}
		if res.NoNewDocuments() {
			okColor.Fprintln(w, "  no new documents")
		}
	}
}
