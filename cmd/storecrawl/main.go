package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/storecrawl"
	"github.com/fwojciec/storecrawl/chromedp"
	"github.com/fwojciec/storecrawl/colly"
	"github.com/fwojciec/storecrawl/crawl"
	"github.com/fwojciec/storecrawl/goquery"
	schttp "github.com/fwojciec/storecrawl/http"
	"github.com/fwojciec/storecrawl/rod"
	scslog "github.com/fwojciec/storecrawl/slog"
)

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
	// Services for end-to-end testing. When nil, Run builds them from flags.
	Discoverer storecrawl.CategoryDiscoverer
	Sessions   storecrawl.SessionOpener

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close releases resources acquired while wiring dependencies.
func (m *Main) Close() error {
	var firstErr error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("storecrawl"),
		kong.Description("Discover storefront categories and collect their item links"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Vars{"store_url": DefaultStoreURL},
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'storecrawl --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	switch strings.Fields(kongCtx.Command())[0] {
	case "categories":
		deps.Discoverer, err = m.discoverer(ctx, cli.Categories.DiscoveryFlags, deps.Logger)
		if err != nil {
			return err
		}
	case "crawl":
		deps.Discoverer, err = m.discoverer(ctx, cli.Crawl.DiscoveryFlags, deps.Logger)
		if err != nil {
			return err
		}
		deps.Crawler = &crawl.Crawler{
			Discoverer: deps.Discoverer,
			Sessions:   m.sessions(cli.Crawl.Driver, deps.Logger),
			Layout:     storecrawl.DefaultListingLayout(),
			Logger:     deps.Logger,
		}
	}

	return kongCtx.Run(deps)
}

// discoverer wires the landing page discoverer selected by flags.
func (m *Main) discoverer(ctx context.Context, f DiscoveryFlags, logger *slog.Logger) (storecrawl.CategoryDiscoverer, error) {
	if m.Discoverer != nil {
		return m.Discoverer, nil
	}

	layout := storecrawl.DefaultLandingLayout()
	var d storecrawl.CategoryDiscoverer
	switch f.Discoverer {
	case "colly":
		d = colly.NewDiscoverer(layout,
			colly.WithTimeout(f.FetchTimeout),
			colly.WithUserAgent(storecrawl.DefaultUserAgent),
			colly.WithLanguage(storecrawl.DefaultLanguage),
		)
	case "rod":
		fetcher, err := rod.NewFetcher(ctx, storecrawl.DefaultSessionOptions(true))
		if err != nil {
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		m.closers = append(m.closers, fetcher)
		d = goquery.NewDiscoverer(scslog.NewLoggingFetcher(fetcher, logger), layout)
	default:
		fetcher := schttp.NewFetcher(
			schttp.WithTimeout(f.FetchTimeout),
			schttp.WithUserAgent(storecrawl.DefaultUserAgent),
			schttp.WithLanguage(storecrawl.DefaultLanguage),
		)
		m.closers = append(m.closers, fetcher)
		d = goquery.NewDiscoverer(scslog.NewLoggingFetcher(fetcher, logger), layout)
	}
	return scslog.NewLoggingDiscoverer(d, logger), nil
}

// sessions wires the rendering driver selected by flags.
func (m *Main) sessions(driver string, logger *slog.Logger) storecrawl.SessionOpener {
	if m.Sessions != nil {
		return m.Sessions
	}

	var o storecrawl.SessionOpener = rod.NewOpener()
	if driver == "chromedp" {
		o = chromedp.NewOpener()
	}
	return scslog.NewLoggingSessionOpener(o, logger)
}
