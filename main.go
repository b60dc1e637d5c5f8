// Package main provides the entrypoint for webhook-relay.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/isometry/webhook-relay/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.New().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
