package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/listcrawl/internal/cli"
)

func main() {
	// A signal cancels the run; the crawler stops at the next page boundary
	// and already appended records stay on disk.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
