// Package main is the entry point for the samplegen application.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/statmix/samplegen/internal/cli"
)

var (
	version string
	commit  string
	date    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.New(version, commit, date)

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
