package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/spyder"
	"github.com/fwojciec/spyder/ingest"
)

// SourceFactory builds the source of one worker.
type SourceFactory func(worker spyder.Worker, links []string) (spyder.Source, error)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Config *spyder.Config
	Logger *slog.Logger

	// Ingest command.
	Ingester  *ingest.Ingester
	NewSource SourceFactory

	// Chat command.
	Embedder spyder.Embedder
	Entries  spyder.EntryService
	Asker    spyder.Asker
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Settings string           `help:"Settings file, or a directory containing spyder.yml" env:"SPYDER_SETTINGS" type:"path"`
	Version  kong.VersionFlag `help:"Print the version and exit"`

	Ingest IngestCmd `cmd:"" help:"Ingest documents with one or more workers (local, web, url)"`
	Chat   ChatCmd   `cmd:"" help:"Ask questions about the ingested documents"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Workers []string `arg:"" help:"Workers to run, in order: local, web or url. Supported files: ${extensions}"`
	Links   []string `name:"link" help:"URL downloaded by the url worker (repeatable)"`
	Wait    bool     `help:"Wait for a running ingestion to finish instead of failing"`
}

// Validate checks worker names before any work starts.
func (c *IngestCmd) Validate() error {
	_, err := parseWorkers(c.Workers, c.Links)
	return err
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	Results int `short:"k" help:"Entries retrieved per question (default chat.results)"`
}

// parseWorkers validates worker names. The url worker needs at least one link.
func parseWorkers(names, links []string) ([]spyder.Worker, error) {
	workers := make([]spyder.Worker, 0, len(names))
	for _, name := range names {
		w, err := spyder.ParseWorker(name)
		if err != nil {
			return nil, err
		}
		if w == spyder.WorkerURL && len(links) == 0 {
			return nil, spyder.Errorf(spyder.ECONFIG, "the url worker requires at least one --link")
		}
		workers = append(workers, w)
	}
	return workers, nil
}
