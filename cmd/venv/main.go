package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/hbjs97/venv/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	cmd := cli.NewApp().NewRootCmd()
	err := cmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(int(cli.MapExitCode(err)))
	}
}
