/*
Package gtfs provides GTFS static data loading and indexing.

Only the two files the pipeline needs are read: stops.txt for stop
coordinates and stop_times.txt for the schedule. The feed under study is a
GTFS-JP export whose trip ids encode the service day and route
(for example 平日_0600_..系統3001-2-1); StaticIndex extracts those with
configurable patterns and builds the (route, stop_sequence, stop_name)
mapping that the realtime join and the headway statistics both consume.
*/
package gtfs
