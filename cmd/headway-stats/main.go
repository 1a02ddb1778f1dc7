package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/RailOpsData/headway-optimisation-gtfs/config"
	"github.com/RailOpsData/headway-optimisation-gtfs/gtfs"
	"github.com/RailOpsData/headway-optimisation-gtfs/headway"
	"github.com/RailOpsData/headway-optimisation-gtfs/internal"
)

func main() {
	gtfsPath := flag.String("gtfs", "", "GTFS static feed directory or zip")
	out := flag.String("out", "-", "headway CSV path (- for stdout)")
	routePattern := flag.String("route-pattern", config.DefaultRoutePattern,
		"regexp extracting the route id from trip_id")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log, err := internal.NewLogger(*verbose)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *gtfsPath == "" {
		log.Fatal("missing -gtfs")
	}

	static, err := gtfs.Load(*gtfsPath)
	if err != nil {
		log.Fatal("load static feed", zap.String("path", *gtfsPath), zap.Error(err))
	}
	idx, err := gtfs.NewStaticIndex(static, config.DefaultServiceDayPattern, *routePattern)
	if err != nil {
		log.Fatal("index static feed", zap.Error(err))
	}

	stats := headway.Compute(idx.StopTimes())
	log.Info("headway statistics computed",
		zap.Int("stop_times", len(static.StopTimes)),
		zap.Int("route_stop_pairs", len(stats)))

	w := os.Stdout
	if *out != "" && *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal("create output file", zap.Error(err))
		}
		defer f.Close()
		w = f
	}
	if err := headway.WriteCSV(w, stats); err != nil {
		log.Fatal("write headway statistics", zap.Error(err))
	}
}
