// Package main is the entry point for the provisor CLI.
//
// provisor drives resource lifecycles (compute clusters, jobs, instance
// pools) against a workspace control-plane REST API: it creates resources,
// polls them to a terminal state within a bounded time budget, retries
// transient failures with backoff, and reports a single structured result.
//
// Commands: provision, destroy, status, run, version.
//
// For detailed usage information, run:
//
//	provisor --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/provisor/cmd/provisor/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// SIGINT/SIGTERM cancel in-flight polling promptly instead of waiting
	// out the remaining budget.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
