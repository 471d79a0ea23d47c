package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/tyemirov/swrelease/internal/cli"
	"github.com/tyemirov/swrelease/internal/utils"
)

// main is the entry point for the swrelease command.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if applicationExecutionError := cli.Execute(ctx); applicationExecutionError != nil {
		stop()
		fmt.Fprintf(os.Stderr, "%s: %v\n", utils.ApplicationExecutionFailedMessage, applicationExecutionError)
		os.Exit(1)
	}
}
