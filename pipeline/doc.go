/*
Package pipeline joins GTFS-RT vehicle positions against trip updates and
the static schedule, and derives per-station observed timetables.

The raw telemetry is noisy in three ways the stages here undo:

  - the archiver snapshots faster than the feed refreshes, so consecutive
    pings are often byte-identical (Dedup);
  - vehicle positions carry no usable route id, and the matching trip
    update is missing for many snapshots (JoinRoutes + ImputeRoutes);
  - a vehicle's stream runs across service trips with no delimiter, so
    trips are recovered from stop-sequence rollbacks (SegmentTrips).

Each stage is a plain function over []Observation; the order wired in
BuildStationTimetable is the only supported composition.
*/
package pipeline
