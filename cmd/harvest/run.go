package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
	"github.com/fwojciec/harvest/etree"
	"github.com/fwojciec/harvest/fs"
	harvestslog "github.com/fwojciec/harvest/slog"
	"github.com/fwojciec/harvest/sqlite"
	"github.com/fwojciec/harvest/yaml"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	format, err := harvest.ParseFormat(c.Format)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	cfg, err := yaml.LoadRecipeFile(c.Recipe)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	sources := c.Sources
	if len(sources) == 0 {
		if sources, err = readSources(deps); err != nil {
			return err
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources given")
	}

	writer, closeWriter, err := c.newWriter(format, cfg.Name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}
	defer closeWriter()
	if deps.Logger != nil {
		writer = harvestslog.NewLoggingRecordWriter(writer, format, deps.Logger)
	}

	recipe, err := cfg.Build(deps.Engine,
		harvest.WithWriter(format, writer),
		harvest.WithConverter(deps.Converter),
		harvest.WithRetainFlushed(false),
	)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	h := &crawl.Harvester{
		Fetcher:              deps.Fetcher,
		Parser:               deps.Parser,
		Concurrency:          c.Concurrency,
		SkipDuplicateContent: c.SkipDuplicates,
	}
	if c.Rate > 0 {
		h.RateLimiter = crawl.NewDomainLimiter(c.Rate)
	}

	result, err := h.Run(deps.Ctx, recipe, sources, c.progress(deps))
	if err != nil {
		return err
	}
	if deps.Logger != nil {
		deps.Logger.Info("run complete",
			"run", result.RunID,
			"extracted", result.Extracted,
			"failed", result.Failed,
			"duplicates", result.Duplicates,
		)
	}

	for _, o := range result.Outcomes {
		if !o.OK() {
			fmt.Fprintf(deps.Stderr, "skip %s: %s\n", o.Source, message(o.Err))
		}
	}

	if err := recipe.Flush(deps.Ctx, format); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Extracted %d of %d pages to %s", result.Extracted, len(result.Outcomes), c.destination(format, cfg.Name))
	if result.Failed > 0 || result.Duplicates > 0 {
		fmt.Fprintf(deps.Stdout, " (%d failed, %d duplicates)", result.Failed, result.Duplicates)
	}
	fmt.Fprintln(deps.Stdout)

	if result.Extracted == 0 {
		return fmt.Errorf("no records extracted")
	}
	return nil
}

// newWriter builds the writer for format. The returned close function
// releases any database opened for it.
func (c *RunCmd) newWriter(format harvest.Format, name string) (harvest.RecordWriter, func(), error) {
	switch format {
	case harvest.FormatText:
		return fs.NewTextWriter(c.Out, fs.WithKeys(c.Keys), fs.WithSeparator(c.Separator)), func() {}, nil
	case harvest.FormatJSON:
		return fs.NewJSONWriter(c.Out), func() {}, nil
	case harvest.FormatXML:
		return etree.NewXMLWriter(c.Out), func() {}, nil
	case harvest.FormatSQLite:
		path := c.destination(format, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, fmt.Errorf("create directory for %s: %w", path, err)
		}
		db := sqlite.NewDB(path)
		if err := db.Open(); err != nil {
			return nil, nil, fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		return sqlite.NewTableWriter(db), func() { _ = db.Close() }, nil
	}
	return nil, nil, harvest.Errorf(harvest.EINVALID, "unknown format %q", format)
}

// destination returns where records in format end up.
func (c *RunCmd) destination(format harvest.Format, name string) string {
	if format == harvest.FormatSQLite && c.DB != "" {
		return c.DB
	}
	return fs.Path(c.Out, name, format)
}

func (c *RunCmd) progress(deps *Dependencies) crawl.ProgressFunc {
	if deps.Logger == nil {
		return nil
	}
	return func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressStarted:
			deps.Logger.Debug("run started", "total", e.Total)
		case crawl.ProgressFetched:
			deps.Logger.Debug("page fetched", "url", e.URL, "completed", e.Completed, "total", e.Total)
		case crawl.ProgressFailed:
			deps.Logger.Debug("page failed", "url", e.URL, "completed", e.Completed, "total", e.Total, "err", e.Error)
		case crawl.ProgressFinished:
			deps.Logger.Debug("run finished", "total", e.Total)
		}
	}
}

// readSources reads one source per line from stdin, skipping blank lines
// and lines starting with '#'.
func readSources(deps *Dependencies) ([]string, error) {
	if deps.Stdin == nil {
		return nil, nil
	}

	var sources []string
	scanner := bufio.NewScanner(deps.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sources = append(sources, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	return sources, nil
}
