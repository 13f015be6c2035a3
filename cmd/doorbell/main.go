// Command doorbell listens to an intercom's audio and reports when the
// doorbell rings its ring-gap-ring pattern.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sam-brownlow/remote-doorbell-intercom/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, config.NewRegistry())
	cancel()
	os.Exit(code)
}
