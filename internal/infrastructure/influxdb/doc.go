// Package influxdb provides an optional local telemetry sink.
//
// When enabled, confirmed device states observed by the room client are
// recorded as time-series points, giving a local history independent of the
// backend. Writes are batched and non-blocking; a failed or disabled sink
// never affects room operations.
package influxdb
