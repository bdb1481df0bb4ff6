package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/spyder"
	"github.com/fwojciec/spyder/crawl"
	"github.com/fwojciec/spyder/etree"
	"github.com/fwojciec/spyder/flock"
	"github.com/fwojciec/spyder/fs"
	"github.com/fwojciec/spyder/gemini"
	"github.com/fwojciec/spyder/goquery"
	"github.com/fwojciec/spyder/htmltomarkdown"
	spyderhttp "github.com/fwojciec/spyder/http"
	"github.com/fwojciec/spyder/ingest"
	"github.com/fwojciec/spyder/loader"
	"github.com/fwojciec/spyder/lru"
	"github.com/fwojciec/spyder/ollama"
	"github.com/fwojciec/spyder/qdrant"
	spyderslog "github.com/fwojciec/spyder/slog"
	"github.com/fwojciec/spyder/sqlite"
	"github.com/fwojciec/spyder/trafilatura"
	"github.com/fwojciec/spyder/yaml"
	"github.com/joho/godotenv"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// tokenizerModel is the local tokenizer used for ingest.count_tokens.
const tokenizerModel = "gemini-2.5-flash"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; secrets may come from the environment.
	_ = godotenv.Load()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Dir is searched for spyder.yml. Set before calling Run().
	Dir string

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Dir: "."}
}

// Close releases everything opened by Run, most recent first.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i]())
	}
	m.closers = nil
	return errors.Join(errs...)
}

func (m *Main) onClose(f func() error) {
	m.closers = append(m.closers, f)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	docs := loader.New(trafilatura.NewExtractor(), htmltomarkdown.NewConverter())

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("spyder"),
		kong.Description("Ingest documents into a local vector store and ask questions about them."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		kong.Vars{
			"version":    version,
			"extensions": strings.Join(docs.Extensions(), " "),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		err := errors.New("no command specified. Run 'spyder --help' to see available commands")
		fmt.Fprintln(stderr, err)
		return err
	}
	switch args[0] {
	case "help", "--help", "-h":
		_, _ = parser.Parse([]string{"--help"})
		return nil
	case "--version":
		fmt.Fprintln(stdout, version)
		return nil
	}

	kongCtx, err := parser.Parse(args)
	// Command help was printed; parsing goes on past it.
	if slices.Contains(args, "--help") || slices.Contains(args, "-h") {
		return nil
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", userMessage(err))
		return err
	}

	cfg, err := yaml.LoadConfig(m.Dir, cli.Settings)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", userMessage(err))
		return err
	}
	logger, err := spyderslog.NewLogger(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", userMessage(err))
		return err
	}
	deps.Config = cfg
	deps.Logger = logger
	defer m.Close()

	switch strings.Fields(kongCtx.Command())[0] {
	case "ingest":
		err = m.wireIngest(ctx, deps, docs, cli.Ingest.Wait)
	case "chat":
		err = m.wireChat(ctx, deps)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", userMessage(err))
		return err
	}

	return kongCtx.Run(deps)
}

// userMessage returns the message of an application error, or the error
// text for anything else (kong parse errors).
func userMessage(err error) string {
	var e *spyder.Error
	if errors.As(err, &e) {
		return spyder.ErrorMessage(err)
	}
	return err.Error()
}

// wireIngest takes the writer lock and builds the ingestion pipeline.
// With wait set it blocks until a running ingestion releases the lock.
func (m *Main) wireIngest(ctx context.Context, deps *Dependencies, docs *loader.Loader, wait bool) error {
	cfg, logger := deps.Config, deps.Logger

	if err := os.MkdirAll(cfg.Store.PersistDirectory, 0o755); err != nil {
		return spyder.WrapError(spyder.ESTORE, err, "create persist directory %s", cfg.Store.PersistDirectory)
	}
	lock := flock.New(cfg.Store.PersistDirectory)
	acquire := lock.TryAcquire
	if wait {
		acquire = func() error { return lock.Acquire(ctx) }
	}
	if err := acquire(); err != nil {
		return err
	}
	m.onClose(lock.Release)

	entries, err := m.openEntries(cfg)
	if err != nil {
		return err
	}
	embedder, err := m.newEmbedder(ctx, cfg, logger)
	if err != nil {
		return err
	}

	in := ingest.New(cfg, embedder, spyderslog.NewLoggingEntryService(entries, logger))
	in.Logger = logger
	if cfg.Ingest.CountTokens {
		tokens, err := gemini.NewTokenCounter(tokenizerModel)
		if err != nil {
			return err
		}
		in.Tokens = tokens
	}

	deps.Ingester = in
	deps.NewSource = m.sourceFactory(cfg, logger, docs)
	return nil
}

// wireChat opens the collection for reading and connects the models.
// Chat never takes the writer lock.
func (m *Main) wireChat(ctx context.Context, deps *Dependencies) error {
	cfg, logger := deps.Config, deps.Logger

	if cfg.Store.Engine == spyder.EngineSQLite {
		path := filepath.Join(cfg.Store.PersistDirectory, sqlite.FileName)
		if _, err := os.Stat(path); err != nil {
			return spyder.Errorf(spyder.ENOTFOUND, "no database at %s; run spyder ingest first", path)
		}
	}
	entries, err := m.openEntries(cfg)
	if err != nil {
		return err
	}
	embedder, err := m.newEmbedder(ctx, cfg, logger)
	if err != nil {
		return err
	}
	asker, err := m.newAsker(ctx, cfg)
	if err != nil {
		return err
	}

	deps.Entries = spyderslog.NewLoggingEntryService(entries, logger)
	deps.Embedder = embedder
	deps.Asker = asker
	return nil
}

// openEntries opens the configured vector store.
func (m *Main) openEntries(cfg *spyder.Config) (spyder.EntryService, error) {
	switch cfg.Store.Engine {
	case spyder.EngineQdrant:
		client, err := qdrant.Dial(cfg.Store.Qdrant)
		if err != nil {
			return nil, err
		}
		m.onClose(client.Close)
		return qdrant.NewEntryService(client, cfg.Store.Collection), nil
	default:
		db := sqlite.NewDB(filepath.Join(cfg.Store.PersistDirectory, sqlite.FileName))
		if err := db.Open(); err != nil {
			return nil, err
		}
		m.onClose(db.Close)
		return sqlite.NewEntryService(db, cfg.Store.Collection), nil
	}
}

// newEmbedder connects the embedding model. Calls are logged and, when
// embeddings.cache_size is positive, cached.
func (m *Main) newEmbedder(ctx context.Context, cfg *spyder.Config, logger *slog.Logger) (spyder.Embedder, error) {
	var embedder spyder.Embedder
	switch cfg.Embeddings.Provider {
	case spyder.ProviderGemini:
		client, err := gemini.NewClient(ctx, os.Getenv("GEMINI_API_KEY"))
		if err != nil {
			return nil, err
		}
		embedder = gemini.NewEmbedder(client, cfg.Embeddings.ModelName)
	default:
		client, err := ollama.NewClient(cfg.Embeddings.BaseURL, nil)
		if err != nil {
			return nil, err
		}
		embedder = ollama.NewEmbedder(client, cfg.Embeddings.ModelName)
	}

	embedder = spyderslog.NewLoggingEmbedder(embedder, logger)
	if cfg.Embeddings.CacheSize > 0 {
		cached, err := lru.NewCachingEmbedder(embedder, cfg.Embeddings.CacheSize)
		if err != nil {
			return nil, err
		}
		embedder = cached
	}
	return embedder, nil
}

// newAsker connects the chat model.
func (m *Main) newAsker(ctx context.Context, cfg *spyder.Config) (spyder.Asker, error) {
	switch cfg.Chat.Provider {
	case spyder.ProviderGemini:
		client, err := gemini.NewClient(ctx, os.Getenv("GEMINI_API_KEY"))
		if err != nil {
			return nil, err
		}
		return gemini.NewAsker(client, cfg.Chat.Model), nil
	default:
		client, err := ollama.NewClient(cfg.Embeddings.BaseURL, nil)
		if err != nil {
			return nil, err
		}
		return ollama.NewAsker(client, cfg.Chat.Model), nil
	}
}

// sourceFactory returns the builder of worker sources. The web and url
// workers share one fetcher and one per-host rate limiter.
func (m *Main) sourceFactory(cfg *spyder.Config, logger *slog.Logger, docs *loader.Loader) SourceFactory {
	var fetcher spyder.Fetcher
	var limiter spyder.DomainLimiter
	web := func() (spyder.Fetcher, spyder.DomainLimiter) {
		if fetcher == nil {
			f := spyderhttp.NewFetcher(
				spyderhttp.WithTimeout(cfg.Crawler.Timeout),
				spyderhttp.WithUserAgent(cfg.Crawler.UserAgent),
			)
			fetcher = spyderslog.NewLoggingFetcher(f, logger)
			m.onClose(fetcher.Close)
			limiter = crawl.NewDomainLimiter(cfg.Crawler.RateLimit)
		}
		return fetcher, limiter
	}

	// Each worker archives into its own subdirectory, so committing one
	// does not replace the other.
	archive := func(w spyder.Worker) spyder.DownloadArchive {
		if cfg.Crawler.DownloadDirectory == "" {
			return nil
		}
		return fs.NewDownloadStore(filepath.Join(cfg.Crawler.DownloadDirectory, string(w)))
	}

	retryLog := func(format string, args ...any) {
		logger.Warn(fmt.Sprintf(format, args...))
	}

	return func(w spyder.Worker, links []string) (spyder.Source, error) {
		switch w {
		case spyder.WorkerLocal:
			src := fs.NewDirectorySource(cfg.SourceDocuments, docs)
			src.Skip = func(path string) {
				logger.Debug("skip unsupported file", "path", path)
			}
			return src, nil

		case spyder.WorkerWeb:
			registry := goquery.NewRegistry(
				goquery.NewTableParser(cfg.Crawler.TableSelector),
				goquery.NewLinkParser(),
				etree.NewSitemapParser(),
			)
			parser, err := registry.Get(cfg.Crawler.Site)
			if err != nil {
				return nil, err
			}
			f, l := web()
			src := crawl.NewWebSource(cfg.Crawler)
			src.Fetcher = f
			src.RateLimiter = l
			src.Parser = spyderslog.NewLoggingSiteParser(parser, logger)
			src.Loader = docs
			src.Archive = archive(w)
			src.Log = retryLog
			return src, nil

		case spyder.WorkerURL:
			f, l := web()
			return &crawl.URLSource{
				Links:       links,
				Fetcher:     f,
				Loader:      docs,
				RateLimiter: l,
				Archive:     archive(w),
				RetryDelays: cfg.Crawler.RetryDelays,
				Log:         retryLog,
			}, nil
		}
		return nil, spyder.Errorf(spyder.ECONFIG, "invalid worker %q", w)
	}
}
