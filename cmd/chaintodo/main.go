// Package main is the entry point for the chaintodo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"chaintodo/internal/backend"
	"chaintodo/internal/cli"
	"chaintodo/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, backend.Open)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
