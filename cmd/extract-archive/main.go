package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/RailOpsData/headway-optimisation-gtfs/extract"
	"github.com/RailOpsData/headway-optimisation-gtfs/internal"
	"github.com/RailOpsData/headway-optimisation-gtfs/store"
)

func main() {
	archive := flag.String("archive", "", "tar or tar.gz of captured GTFS-RT protojson dumps")
	out := flag.String("out", "observations.db", "observation database path")
	agency := flag.String("agency-filter", "", "only extract dumps under these agency directories (comma-separated)")
	showAgencies := flag.Bool("show-agencies", false, "list agencies found in the archive and exit")
	workers := flag.Int("workers", 0, "concurrent decoders (0 = one per CPU)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *archive == "" {
		fmt.Fprintln(os.Stderr, "usage: extract-archive -archive feeds.tar.gz [-out observations.db]")
		os.Exit(2)
	}

	if *showAgencies {
		agencies, err := extract.Agencies(*archive)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, a := range agencies {
			fmt.Printf("%s\t%d\n", a.Agency, a.Files)
		}
		return
	}

	log, err := internal.NewLogger(*verbose)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(*out)
	if err != nil {
		log.Fatal("open observation store", zap.Error(err))
	}
	defer st.Close()

	sum, err := extract.Archive(ctx, st, log, *archive, extract.Options{
		AgencyFilter: *agency,
		Workers:      *workers,
	})
	if err != nil {
		log.Fatal("extraction failed", zap.Error(err))
	}
	fmt.Printf("run %s: %d files (%d parsed, %d skipped), %d vehicle positions, %d trip updates\n",
		sum.RunID, sum.FilesTotal, sum.FilesParsed, sum.FilesSkipped,
		sum.VehiclePositions, sum.TripUpdates)
}
