package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stokerd/console/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{PrefsPath: *prefsPath, Debug: *debug}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "stoker-console: %v\n", err)
		return 1
	}
	return 0
}
