package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/RailOpsData/headway-optimisation-gtfs/fetch"
	"github.com/RailOpsData/headway-optimisation-gtfs/internal"
)

func main() {
	url := flag.String("url", "", "GTFS static feed URL")
	out := flag.String("out", "gtfs.zip", "destination path for the feed zip")
	timeout := flag.Duration("timeout", fetch.DefaultTimeout, "overall download deadline")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log, err := internal.NewLogger(*verbose)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *url == "" {
		log.Fatal("missing -url")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := fetch.StaticFeed(ctx, log, *url, *out); err != nil {
		log.Fatal("fetch static feed", zap.Error(err))
	}
}
