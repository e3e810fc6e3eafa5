package accesslog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"rose-hq/rosegate/pkg/config"
)

// Recorder buffers access records on a channel and writes them to storage
// from a single background worker, so request handling never blocks on the
// database. When the buffer is full the record is dropped and counted.
type Recorder struct {
	store        *SQLiteStore
	records      chan Record
	writeTimeout time.Duration
	logger       *slog.Logger

	dropped atomic.Int64
	done    chan struct{}
	wg      sync.WaitGroup
	closed  atomic.Bool
}

// NewRecorder creates a recorder and starts its worker goroutine.
func NewRecorder(store *SQLiteStore, cfg *config.RecorderConfig) *Recorder {
	r := &Recorder{
		store:        store,
		records:      make(chan Record, cfg.AsyncBuffer),
		writeTimeout: cfg.WriteTimeout,
		logger:       slog.Default().With("component", "accesslog.recorder"),
		done:         make(chan struct{}),
	}
	r.wg.Add(1)
	go r.worker()
	return r
}

// Record enqueues one record without blocking. A missing ID is filled in
// with a fresh UUID.
func (r *Recorder) Record(rec Record) {
	if r.closed.Load() {
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	select {
	case r.records <- rec:
	default:
		if n := r.dropped.Add(1); n%100 == 1 {
			r.logger.Warn("access record buffer full, dropping", "dropped_total", n)
		}
	}
}

// Dropped returns how many records were discarded because the buffer was
// full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting records, drains the buffer, and waits for the
// worker to finish.
func (r *Recorder) Close() {
	if r.closed.Swap(true) {
		return
	}
	close(r.done)
	r.wg.Wait()
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for {
		select {
		case rec := <-r.records:
			r.write(rec)
		case <-r.done:
			// Drain whatever is already buffered before exiting.
			for {
				select {
				case rec := <-r.records:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()
	if err := r.store.Insert(ctx, rec); err != nil {
		r.logger.Error("failed to write access record", "id", rec.ID, "error", err)
	}
}
