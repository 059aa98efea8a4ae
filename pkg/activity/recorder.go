package activity

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dskvich/instructional-pages/pkg/logger"
)

type op struct {
	entry      *Entry
	durationID string
	durationMS int64
}

// Recorder is a fire-and-forget front for a Store. Writes are handed to a
// buffered channel and drained by Run; when the buffer is full the record is
// dropped and counted instead of blocking the pipeline.
type Recorder struct {
	store   Store
	ch      chan op
	dropped atomic.Int64
}

func NewRecorder(store Store, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{
		store: store,
		ch:    make(chan op, buffer),
	}
}

// Record enqueues an entry and returns its correlation id.
func (r *Recorder) Record(category Category, action string, details map[string]any) string {
	entry := &Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Category:  category,
		Action:    action,
		Details:   details,
	}

	select {
	case r.ch <- op{entry: entry}:
	default:
		r.dropped.Add(1)
	}

	return entry.ID
}

// RecordDuration reports how long the action behind id took.
func (r *Recorder) RecordDuration(id string, elapsed time.Duration) {
	select {
	case r.ch <- op{durationID: id, durationMS: elapsed.Milliseconds()}:
	default:
		r.dropped.Add(1)
	}
}

// Dropped reports how many records were discarded due to a full buffer.
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

// Run drains the channel into the store until ctx is cancelled, then flushes
// whatever is still buffered. Store failures are logged and swallowed.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case o := <-r.ch:
			r.apply(ctx, o)
		case <-ctx.Done():
			r.flush()
			return nil
		}
	}
}

func (r *Recorder) flush() {
	ctx, cancelFn := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelFn()

	for {
		select {
		case o := <-r.ch:
			r.apply(ctx, o)
		default:
			return
		}
	}
}

func (r *Recorder) apply(ctx context.Context, o op) {
	if o.entry != nil {
		if err := r.store.Append(ctx, *o.entry); err != nil {
			slog.Error("appending activity entry", "action", o.entry.Action, logger.Err(err))
		}
		return
	}
	if err := r.store.SetDuration(ctx, o.durationID, o.durationMS); err != nil {
		slog.Error("recording activity duration", "id", o.durationID, logger.Err(err))
	}
}
