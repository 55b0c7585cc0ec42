package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackroad/cli/cmd"
	"github.com/charmbracelet/fang"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, cmd.Root(), fang.WithVersion(cmd.Version)); err != nil {
		os.Exit(1)
	}
}
