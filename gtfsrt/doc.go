// Package gtfsrt decodes GTFS-Realtime dumps into normalized observation
// rows.
//
// The archived dumps are protojson renderings of the standard FeedMessage,
// so decoding goes through the MobilityData bindings rather than ad-hoc JSON
// walking. Two feed types are handled:
//   - Vehicle Positions: per-vehicle GPS pings
//   - Trip Updates: per-trip identity records (route, direction, vehicle)
//
// Every row carries snapshot_ts, the capture time of the dump it came from.
package gtfsrt
