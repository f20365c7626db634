package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"autobot/internal/services"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	cancel()
	os.Exit(exitCode(err))
}

// exitCode reports err on stderr and maps it to a process status. A declined
// confirmation is a clean exit.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, services.ErrDeclined):
		return 0
	case errors.Is(err, context.Canceled):
		return 1
	default:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}
