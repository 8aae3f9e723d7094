package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docsync"
	docsfs "github.com/fwojciec/docsync/fs"
	"github.com/fwojciec/docsync/gojsonschema"
	"github.com/fwojciec/docsync/goquery"
	"github.com/fwojciec/docsync/htmltomarkdown"
	docshttp "github.com/fwojciec/docsync/http"
	"github.com/fwojciec/docsync/markdown"
	"github.com/fwojciec/docsync/readability"
	docslog "github.com/fwojciec/docsync/slog"
	"github.com/fwojciec/docsync/sqlite"
	"github.com/fwojciec/docsync/trafilatura"
	"github.com/fwojciec/docsync/update"
	"github.com/joho/godotenv"
)

// ChangelogFileName is the changelog database inside the data directory.
const ChangelogFileName = "changelog.db"

//go:embed manifest.json
var bundledManifest []byte

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Data directory used when neither --data-dir nor DOCSYNC_HOME is set.
	DataDir string

	// EnvFile is loaded into the environment before flags are parsed.
	// Empty disables loading.
	EnvFile string

	// Bundled is the manifest snapshot used when remote and cache fail.
	Bundled []byte

	// Fetcher overrides the HTTP fetcher, for end-to-end testing.
	Fetcher docsync.Fetcher

	// SQLite database holding the changelog.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DataDir: defaultDataDir(),
		EnvFile: ".env",
		Bundled: bundledManifest,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if m.EnvFile != "" {
		if err := godotenv.Load(m.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", m.EnvFile, err)
		}
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docsync"),
		kong.Description("Keep a local copy of a documentation site in sync."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docsync --help' to see available commands")
	}

	switch args[0] {
	case "help", "--help", "-h":
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Output = NewOutput(stdout, cli.Format)
	defer m.Close()
	if err := m.wire(cli, deps); err != nil {
		deps.Output.Error(err)
		return err
	}

	if err := kongCtx.Run(deps); err != nil {
		deps.Output.Error(err)
		return err
	}
	return nil
}

// wire resolves configuration and builds the services behind deps.
func (m *Main) wire(cli *CLI, deps *Dependencies) error {
	deps.Logger = slog.New(slog.DiscardHandler)
	if cli.Verbose {
		deps.Logger = slog.New(slog.NewTextHandler(deps.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	logger := deps.Logger

	dataDir := cli.DataDir
	if dataDir == "" {
		dataDir = m.DataDir
	}
	if dataDir == "" {
		return docsync.Errorf(docsync.EINVALID, "no data directory. Set --data-dir or DOCSYNC_HOME")
	}

	configPath, required := cli.Config, cli.Config != ""
	if !required {
		configPath = filepath.Join(dataDir, ConfigFileName)
	}
	cfg, err := LoadConfig(configPath, required)
	if err != nil {
		return err
	}
	cli.Update.Check.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	deps.Config = cfg

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %q: %w", dataDir, err)
	}

	m.DB = sqlite.NewDB(filepath.Join(dataDir, ChangelogFileName))
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("failed to open changelog at %q: %w", m.DB.Path(), err)
	}

	var fetcher docsync.Fetcher = m.Fetcher
	if fetcher == nil {
		fetcher = docshttp.NewFetcher(docshttp.WithTimeout(time.Duration(cfg.Timeout)))
	}
	fetcher = docslog.NewLoggingFetcher(fetcher, logger)

	validator, err := gojsonschema.NewValidator()
	if err != nil {
		return err
	}

	loader := update.NewManifestLoader(cfg.ManifestURL, fetcher, validator, docsfs.NewManifestCache(dataDir), m.Bundled)
	loader.CacheTTL = time.Duration(cfg.CacheTTL)
	loader.RetryDelays = update.BackoffDelays(time.Duration(cfg.RetryDelay), cfg.MaxRetries)
	loader.Logger = logger
	deps.Manifests = docslog.NewLoggingManifestLoader(loader, logger)

	transformer := markdown.NewTransformer(
		htmltomarkdown.NewConverter(),
		trafilatura.NewExtractor(),
		readability.NewExtractor(),
		goquery.NewExtractor(),
	)

	content := update.NewContentFetcher(fetcher, transformer)
	content.Timeout = time.Duration(cfg.Timeout)
	content.MaxRetries = cfg.MaxRetries
	content.RetryDelay = time.Duration(cfg.RetryDelay)
	content.Logger = logger
	if cfg.RateLimit > 0 {
		content.Limiter = update.NewHostLimiter(cfg.RateLimit)
	}

	downloader := update.NewDownloader(content)
	downloader.Concurrency = cfg.Concurrency

	deps.Documents = docsfs.NewDocumentStore(filepath.Join(dataDir, docsfs.DocsDirName))
	deps.Updater = &update.Updater{
		Manifests:      deps.Manifests,
		Downloader:     downloader,
		Documents:      deps.Documents,
		Staging:        docslog.NewLoggingStagingStore(docsfs.NewStagingStore(dataDir), logger),
		Changelog:      docslog.NewLoggingChangelogService(sqlite.NewChangelogService(m.DB), logger),
		ChangelogLimit: cfg.ChangelogLimit,
		Logger:         logger,
	}
	return nil
}

// apply overrides config values with flags given on the command line.
func (c *CheckCmd) apply(cfg *Config) {
	if c.Concurrency != 0 {
		cfg.Concurrency = c.Concurrency
	}
	if c.Timeout != 0 {
		cfg.Timeout = Duration(c.Timeout)
	}
	if c.MaxRetries >= 0 {
		cfg.MaxRetries = c.MaxRetries
	}
	if c.RetryDelay != 0 {
		cfg.RetryDelay = Duration(c.RetryDelay)
	}
	if c.RateLimit != 0 {
		cfg.RateLimit = c.RateLimit
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docsync"
	}
	return filepath.Join(home, ".docsync")
}
