package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/goquery"
	"github.com/fwojciec/harvest/htmltomarkdown"
	harvesthttp "github.com/fwojciec/harvest/http"
	harvestslog "github.com/fwojciec/harvest/slog"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin supplies URLs to "run" when none are given as arguments.
	Stdin io.Reader

	// Fetcher overrides the HTTP fetcher. Used for end-to-end testing.
	Fetcher harvest.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Stdin: os.Stdin,
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("harvest"),
		kong.Description("Extract structured records from HTML pages with CSS selector recipes"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'harvest --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:       ctx,
		Stdin:     m.Stdin,
		Stdout:    stdout,
		Stderr:    stderr,
		Parser:    goquery.NewParser(),
		Engine:    goquery.NewEngine(),
		Converter: htmltomarkdown.NewConverter(),
	}

	if cli.Verbose {
		deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	fetcher := m.Fetcher
	if fetcher == nil {
		opts, err := cli.fetchOptions()
		if err != nil {
			return err
		}
		fetcher = harvesthttp.NewFetcher(opts...)
	}
	deps.Fetcher = NewSourceFetcher(fetcher)
	if deps.Logger != nil {
		deps.Fetcher = harvestslog.NewLoggingFetcher(deps.Fetcher, deps.Logger)
	}
	defer deps.Fetcher.Close()

	return kongCtx.Run(deps)
}

// fetchOptions translates the global request flags into fetcher options.
func (c *CLI) fetchOptions() ([]harvesthttp.Option, error) {
	opts := []harvesthttp.Option{harvesthttp.WithTimeout(c.Timeout)}
	if c.Encoding != "" {
		opts = append(opts, harvesthttp.WithEncoding(c.Encoding))
	}
	for _, h := range c.Header {
		key, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid header %q: want 'Key: Value'", h)
		}
		opts = append(opts, harvesthttp.WithHeader(strings.TrimSpace(key), strings.TrimSpace(value)))
	}
	if c.UserAgent != "" {
		opts = append(opts, harvesthttp.WithUserAgents(c.UserAgent))
	}
	return opts, nil
}
