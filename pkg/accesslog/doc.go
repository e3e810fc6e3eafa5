// Package accesslog persists per-request access records to SQLite.
//
// Records flow from the router through an asynchronous Recorder (buffered
// channel, single writer goroutine) into SQLiteStore. Writes never block
// request handling: a full buffer drops the record and increments a counter.
// A cron-scheduled Pruner enforces the retention policy by age and total
// record count.
package accesslog
