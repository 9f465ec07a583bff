// Package main provides the lexdb CLI application.
// lexdb manages the lifecycle of a multilingual lexical database:
// schema creation, source ingestion and the transform pipeline.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gnames/gn"
)

var (
	// Version is set by build flags
	Version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := getRootCmd().ExecuteContext(ctx); err != nil {
		gn.PrintErrorMessage(err)
		if ctx.Err() != nil {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
