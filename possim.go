package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"possim/pkg/app"
)

// main lets operators start the simulator with `go run possim.go`.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "possim: %v\n", err)
		os.Exit(1)
	}
}
