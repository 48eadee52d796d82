package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"possim/pkg/app"
)

// main is the entry point used by container images and process managers.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "possim server: %v\n", err)
		os.Exit(1)
	}
}
