package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Fetcher   harvest.Fetcher
	Parser    harvest.Parser
	Engine    harvest.SelectorEngine
	Converter harvest.Converter

	// Logger is set when verbose output is requested. Commands wrap the
	// services they build with logging decorators when it is non-nil.
	Logger *slog.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose   bool          `short:"v" help:"Log fetches and flushes to stderr"`
	Timeout   time.Duration `default:"10s" help:"HTTP request timeout"`
	Encoding  string        `short:"e" help:"Force the page encoding (e.g. gbk, windows-1252)"`
	Header    []string      `short:"H" help:"Extra request header as 'Key: Value' (repeatable)"`
	UserAgent string        `name:"user-agent" help:"User-Agent header (default: rotate common browsers)"`

	Run    RunCmd    `cmd:"" help:"Extract records from pages with a recipe"`
	Select SelectCmd `cmd:"" help:"Print what a selector matches in a page"`
	Check  CheckCmd  `cmd:"" help:"Validate a recipe file"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Recipe         string   `arg:"" type:"existingfile" help:"Recipe YAML file"`
	Sources        []string `arg:"" optional:"" help:"Page URLs or local HTML files (read from stdin, one per line, when omitted)"`
	Out            string   `short:"o" default:"." env:"HARVEST_OUT" help:"Output directory"`
	DB             string   `name:"db" help:"SQLite database path for --format db (default: <out>/<recipe>.db)"`
	Format         string   `short:"f" default:"json" enum:"txt,text,json,xml,db,sql,sqlite" help:"Output format: txt, json, xml or db"`
	Concurrency    int      `short:"c" default:"4" help:"Concurrent fetch limit"`
	Rate           float64  `default:"1" help:"Requests per second per domain (0 disables limiting)"`
	SkipDuplicates bool     `help:"Skip pages whose content repeats an earlier page"`
	Keys           bool     `help:"Write field names in text output"`
	Separator      string   `default:"---" help:"Line written after each record in text output"`
}

// SelectCmd is the "select" subcommand.
type SelectCmd struct {
	Source   string `arg:"" help:"Page URL or local HTML file"`
	Selector string `arg:"" help:"CSS selector, optionally suffixed with a 1-based [k] index"`
	Mode     string `short:"m" default:"text" enum:"text,html,markdown,attr,links" help:"What to print: text, html, markdown, attr or links"`
	Attr     string `short:"a" help:"Attribute to print with --mode attr"`
	SameHost bool   `help:"With --mode links, keep only links to the page's host"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	Recipe string `arg:"" type:"existingfile" help:"Recipe YAML file"`
}
