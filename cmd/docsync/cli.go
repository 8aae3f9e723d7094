package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/update"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Config    *Config
	Output    *Output
	Manifests docsync.ManifestLoader
	Documents docsync.DocumentStore
	Updater   *update.Updater
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DataDir string `name:"data-dir" env:"DOCSYNC_HOME" help:"Data directory (default ~/.docsync)"`
	Config  string `name:"config" env:"DOCSYNC_CONFIG" help:"Config file (default <data-dir>/config.toml)"`
	Verbose bool   `short:"v" env:"DOCSYNC_VERBOSE" help:"Log debug output to stderr"`
	Format  string `enum:"text,json" default:"text" env:"DOCSYNC_FORMAT" help:"Output format (text or json)"`

	Update UpdateCmd `cmd:"" help:"Check, commit or discard documentation updates"`
	List   ListCmd   `cmd:"" help:"List committed documents"`
	Get    GetCmd    `cmd:"" help:"Print a committed document"`
	Search SearchCmd `cmd:"" help:"Search committed documents"`
}

// UpdateCmd groups the update workflow subcommands.
type UpdateCmd struct {
	Check   CheckCmd   `cmd:"" help:"Download the latest documentation and stage changes"`
	Commit  CommitCmd  `cmd:"" help:"Apply staged changes"`
	Discard DiscardCmd `cmd:"" help:"Drop staged changes"`
	Status  StatusCmd  `cmd:"" help:"Show installed documentation and pending changes"`
}

// CheckCmd is the "update check" subcommand. Zero values and a negative
// max-retries fall back to the config file.
type CheckCmd struct {
	Concurrency int           `short:"c" help:"Documents downloaded per window"`
	Timeout     time.Duration `help:"Per-request timeout"`
	MaxRetries  int           `name:"max-retries" default:"-1" help:"Retries after the first attempt"`
	RetryDelay  time.Duration `name:"retry-delay" help:"Initial retry delay, doubled per retry"`
	RateLimit   float64       `name:"rate-limit" help:"Requests per second per host (0 disables)"`
}

// CommitCmd is the "update commit" subcommand.
type CommitCmd struct {
	Message string `arg:"" help:"Changelog message"`
}

// DiscardCmd is the "update discard" subcommand.
type DiscardCmd struct{}

// StatusCmd is the "update status" subcommand.
type StatusCmd struct{}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Manifest bool `short:"m" help:"List the manifest's categories instead of committed files"`
}

// GetCmd is the "get" subcommand.
type GetCmd struct {
	Filenames []string `arg:"" name:"filename" help:"Document filenames, e.g. quickstart.md"`
	Sections  bool     `short:"s" help:"Show the document outline instead of its content"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Text to search for"`
	Limit int    `short:"n" default:"10" help:"Maximum documents to show"`
}
