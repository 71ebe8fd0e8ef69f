package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/amirbrooks/dictsort/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, filepath.Base(os.Args[0]), os.Args[1:])
	stop()
	os.Exit(code)
}
