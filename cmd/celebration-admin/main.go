// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command celebration-admin is the operator console for the gift catalog.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlexKsun/celebration/admincli"
)

// buildEnv mirrors the server's injected build-time values
var buildEnv string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := admincli.NewRootCommand(&admincli.RootOptions{BuildEnv: buildEnv})
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
