package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/RailOpsData/headway-optimisation-gtfs/config"
	"github.com/RailOpsData/headway-optimisation-gtfs/gtfs"
	"github.com/RailOpsData/headway-optimisation-gtfs/internal"
	"github.com/RailOpsData/headway-optimisation-gtfs/pipeline"
	"github.com/RailOpsData/headway-optimisation-gtfs/store"
)

func main() {
	configPath := flag.String("config", "", "pipeline configuration file (YAML)")
	dbPath := flag.String("db", "", "observation database path (overrides config)")
	agency := flag.String("agency", "", "agency partition (overrides config)")
	date := flag.String("date", "", "service date YYYYMMDD (overrides config)")
	out := flag.String("out", "", "timetable CSV path (overrides config, - for stdout)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log, err := internal.NewLogger(*verbose)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := config.LoadPipelineConfig(*configPath); err != nil {
		log.Fatal("load configuration", zap.Error(err))
	}
	cfg := config.Config
	if *dbPath != "" {
		cfg.Realtime.DatabasePath = *dbPath
	}
	if *agency != "" {
		cfg.Realtime.Agency = *agency
	}
	if *date != "" {
		cfg.Realtime.ServiceDate = *date
	}
	if *out != "" {
		cfg.Output.TimetableCSV = *out
	}

	loc := time.UTC
	if cfg.Window.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Window.Timezone)
		if err != nil {
			log.Fatal("load timezone", zap.String("timezone", cfg.Window.Timezone), zap.Error(err))
		}
	}

	static, err := gtfs.Load(cfg.Static.Path)
	if err != nil {
		log.Fatal("load static feed", zap.String("path", cfg.Static.Path), zap.Error(err))
	}
	idx, err := gtfs.NewStaticIndex(static, cfg.Static.ServiceDayPattern, cfg.Static.RoutePattern)
	if err != nil {
		log.Fatal("index static feed", zap.Error(err))
	}
	log.Info("static feed loaded",
		zap.Int("stops", len(static.Stops)),
		zap.Int("stop_times", len(static.StopTimes)))

	st, err := store.Open(cfg.Realtime.DatabasePath)
	if err != nil {
		log.Fatal("open observation store", zap.Error(err))
	}
	defer st.Close()

	ctx := context.Background()
	vps, err := st.VehiclePositions(ctx, cfg.Realtime.Agency, cfg.Realtime.ServiceDate)
	if err != nil {
		log.Fatal("read vehicle positions", zap.Error(err))
	}
	tus, err := st.TripUpdates(ctx, cfg.Realtime.Agency, cfg.Realtime.ServiceDate)
	if err != nil {
		log.Fatal("read trip updates", zap.Error(err))
	}
	log.Info("observations read",
		zap.String("agency", cfg.Realtime.Agency),
		zap.String("service_date", cfg.Realtime.ServiceDate),
		zap.Int("vehicle_positions", len(vps)),
		zap.Int("trip_updates", len(tus)))

	tt := pipeline.BuildStationTimetable(vps, tus, idx, pipeline.Params{
		HourMin:       cfg.Window.HourMin,
		HourMax:       cfg.Window.HourMax,
		Location:      loc,
		Routes:        cfg.Selection.Routes,
		Vehicles:      cfg.Selection.Vehicles,
		Stations:      cfg.Selection.Stations,
		JumpThreshold: cfg.Segmentation.SequenceJumpThreshold,
		Direction:     cfg.Selection.Direction,
	})

	dest := cfg.Output.TimetableCSV
	w := os.Stdout
	if dest != "" && dest != "-" {
		f, err := os.Create(dest)
		if err != nil {
			log.Fatal("create timetable file", zap.Error(err))
		}
		defer f.Close()
		w = f
	}
	if err := tt.WriteCSV(w); err != nil {
		log.Fatal("write timetable", zap.Error(err))
	}
	if dest != "" && dest != "-" {
		log.Info("timetable written",
			zap.String("path", dest), zap.Int("rows", len(tt.Rows)))
	}
}
