// Package extract walks an archive of captured GTFS-RT protojson dumps and
// loads the decoded records into the observation store. Archives are tar or
// gzipped tar files whose members are laid out as
// <agency>/.../<feed>_YYYYMMDD_HHMMSS.json, with the feed kind named in the
// file (vehicle_position or trip_update). Files that fail to decode are
// counted and skipped rather than aborting the run.
package extract

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RailOpsData/headway-optimisation-gtfs/gtfsrt"
	"github.com/RailOpsData/headway-optimisation-gtfs/store"
)

// DefaultAgency labels members whose path carries no leading agency
// directory.
const DefaultAgency = "unknown"

// Options controls one extraction run.
type Options struct {
	// AgencyFilter, when set, restricts extraction to members under the
	// named agency directories. Comma-separated.
	AgencyFilter string
	// Workers bounds concurrent decodes. Zero or negative means one per
	// CPU.
	Workers int
}

func (o Options) agencySet() map[string]struct{} {
	if o.AgencyFilter == "" {
		return nil
	}
	set := map[string]struct{}{}
	for _, a := range strings.Split(o.AgencyFilter, ",") {
		if a = strings.TrimSpace(a); a != "" {
			set[a] = struct{}{}
		}
	}
	return set
}

// Summary reports what one extraction run did.
type Summary struct {
	RunID            string
	FilesTotal       int
	FilesParsed      int
	FilesSkipped     int
	VehiclePositions int
	TripUpdates      int
}

type feedKind int

const (
	kindUnknown feedKind = iota
	kindVehiclePosition
	kindTripUpdate
)

// classify decides what a member holds from its name alone. Only .json
// members are candidates; everything else in the archive is ignored.
func classify(name string) feedKind {
	base := path.Base(name)
	if !strings.HasSuffix(base, ".json") {
		return kindUnknown
	}
	switch {
	case strings.Contains(base, "vehicle_position"):
		return kindVehiclePosition
	case strings.Contains(base, "trip_update"):
		return kindTripUpdate
	}
	return kindUnknown
}

// agencyOf takes the leading directory of a member path as its agency.
func agencyOf(name string) string {
	clean := strings.TrimPrefix(path.Clean(name), "./")
	if i := strings.IndexByte(clean, '/'); i > 0 {
		return clean[:i]
	}
	return DefaultAgency
}

func openArchive(p string) (*tar.Reader, func() error, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open archive")
	}
	if strings.HasSuffix(p, ".gz") || strings.HasSuffix(p, ".tgz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, errors.Wrap(err, "open gzip stream")
		}
		return tar.NewReader(gz), func() error {
			gz.Close()
			return f.Close()
		}, nil
	}
	return tar.NewReader(f), f.Close, nil
}

type member struct {
	name   string
	agency string
	kind   feedKind
	data   []byte
}

type extractor struct {
	store *store.Store
	log   *zap.Logger
	runID string

	mu  sync.Mutex
	sum Summary
}

func (e *extractor) process(ctx context.Context, m member) error {
	switch m.kind {
	case kindVehiclePosition:
		rows, err := gtfsrt.DecodeVehiclePositions(m.data, m.name)
		if err != nil {
			e.skip(m.name, err)
			return nil
		}
		if err := e.store.InsertVehiclePositions(ctx, e.runID, m.agency, rows); err != nil {
			return errors.Wrapf(err, "store vehicle positions from %s", m.name)
		}
		e.mu.Lock()
		e.sum.FilesParsed++
		e.sum.VehiclePositions += len(rows)
		e.mu.Unlock()
	case kindTripUpdate:
		rows, err := gtfsrt.DecodeTripUpdates(m.data, m.name)
		if err != nil {
			e.skip(m.name, err)
			return nil
		}
		if err := e.store.InsertTripUpdates(ctx, e.runID, m.agency, rows); err != nil {
			return errors.Wrapf(err, "store trip updates from %s", m.name)
		}
		e.mu.Lock()
		e.sum.FilesParsed++
		e.sum.TripUpdates += len(rows)
		e.mu.Unlock()
	}
	return nil
}

func (e *extractor) skip(name string, err error) {
	e.log.Warn("skipping undecodable dump",
		zap.String("member", name), zap.Error(err))
	e.mu.Lock()
	e.sum.FilesSkipped++
	e.mu.Unlock()
}

// Archive extracts every matching member of the archive at archivePath into
// the store under a fresh extraction run. The tar stream is walked
// sequentially; decoding and inserts fan out across opts.Workers
// goroutines. Decode failures are skipped, store failures abort the run.
func Archive(ctx context.Context, st *store.Store, log *zap.Logger, archivePath string, opts Options) (Summary, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	tr, closeArchive, err := openArchive(archivePath)
	if err != nil {
		return Summary{}, err
	}
	defer closeArchive()

	runID, err := st.BeginRun(ctx, archivePath)
	if err != nil {
		return Summary{}, err
	}

	e := &extractor{store: st, log: log, runID: runID}
	e.sum.RunID = runID
	wantAgency := opts.agencySet()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

walk:
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			g.Wait()
			return e.sum, errors.Wrap(err, "read archive")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		kind := classify(hdr.Name)
		if kind == kindUnknown {
			continue
		}
		agency := agencyOf(hdr.Name)
		if wantAgency != nil {
			if _, ok := wantAgency[agency]; !ok {
				continue
			}
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			g.Wait()
			return e.sum, errors.Wrapf(err, "read member %s", hdr.Name)
		}
		e.mu.Lock()
		e.sum.FilesTotal++
		e.mu.Unlock()

		m := member{name: hdr.Name, agency: agency, kind: kind, data: data}
		select {
		case <-gctx.Done():
			break walk
		default:
		}
		g.Go(func() error {
			return e.process(gctx, m)
		})
	}

	if err := g.Wait(); err != nil {
		return e.sum, err
	}

	err = st.FinishRun(ctx, runID, e.sum.FilesTotal, e.sum.FilesParsed, e.sum.FilesSkipped)
	if err != nil {
		return e.sum, err
	}
	log.Info("extraction finished",
		zap.String("run_id", runID),
		zap.Int("files_total", e.sum.FilesTotal),
		zap.Int("files_parsed", e.sum.FilesParsed),
		zap.Int("files_skipped", e.sum.FilesSkipped),
		zap.Int("vehicle_positions", e.sum.VehiclePositions),
		zap.Int("trip_updates", e.sum.TripUpdates),
	)
	return e.sum, nil
}

// AgencyFiles is the dump count of one agency directory in an archive.
type AgencyFiles struct {
	Agency string
	Files  int
}

// Agencies scans the archive and reports how many feed dumps each agency
// directory holds, without touching the store. Useful before a filtered
// extraction to see what an archive actually contains.
func Agencies(archivePath string) ([]AgencyFiles, error) {
	tr, closeArchive, err := openArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer closeArchive()

	counts := map[string]int{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read archive")
		}
		if hdr.Typeflag != tar.TypeReg || classify(hdr.Name) == kindUnknown {
			continue
		}
		counts[agencyOf(hdr.Name)]++
	}

	out := make([]AgencyFiles, 0, len(counts))
	for agency, n := range counts {
		out = append(out, AgencyFiles{Agency: agency, Files: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Agency < out[j].Agency })
	return out, nil
}
