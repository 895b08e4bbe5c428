// Package main provides rolodexctl, the Rolodex administration CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rolodexapp/rolodex-server/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
