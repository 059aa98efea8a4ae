package repository

import (
	"context"
	"sync"
	"time"

	"github.com/dskvich/instructional-pages/pkg/activity"
)

const defaultMaxEntries = 200

// activityMemoryRepository keeps the newest entries in memory, newest first,
// bounded at maxEntries. It is the fallback store when no database is
// configured.
type activityMemoryRepository struct {
	mu         sync.RWMutex
	entries    []activity.Entry
	maxEntries int
}

func NewActivityMemoryRepository(maxEntries int) *activityMemoryRepository {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &activityMemoryRepository{maxEntries: maxEntries}
}

func (r *activityMemoryRepository) Append(_ context.Context, entry activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, activity.Entry{})
	copy(r.entries[1:], r.entries)
	r.entries[0] = entry

	if len(r.entries) > r.maxEntries {
		r.entries = r.entries[:r.maxEntries]
	}
	return nil
}

func (r *activityMemoryRepository) SetDuration(_ context.Context, id string, durationMS int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].DurationMS = durationMS
			return nil
		}
	}
	// The entry may already have been evicted from the ring.
	return nil
}

func (r *activityMemoryRepository) Recent(_ context.Context, limit int) ([]activity.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.entries) {
		limit = len(r.entries)
	}
	out := make([]activity.Entry, limit)
	copy(out, r.entries[:limit])
	return out, nil
}

func (r *activityMemoryRepository) Stats(_ context.Context, now time.Time) (activity.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := activity.Stats{TotalEntries: len(r.entries)}
	for _, e := range r.entries {
		age := now.Sub(e.Timestamp)
		if age <= 5*time.Minute {
			addToWindow(&stats.Last5Minutes, e)
		}
		if age <= time.Hour {
			addToWindow(&stats.LastHour, e)
		}
		if age <= 24*time.Hour {
			addToWindow(&stats.Last24Hours, e)
		}
	}
	return stats, nil
}

func (r *activityMemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	return nil
}

func addToWindow(w *activity.WindowStats, e activity.Entry) {
	w.Total++
	switch e.Category {
	case activity.CategoryAPICall:
		w.APICalls++
	case activity.CategoryImageGen:
		w.ImageGenerations++
	case activity.CategoryImageUpload:
		w.ImageUploads++
	case activity.CategoryError:
		w.Errors++
	}
	w.TokensUsed += detailInt(e.Details, "inputTokens") + detailInt(e.Details, "outputTokens")
}

// detailInt reads a numeric detail value; entries decoded from JSON carry
// float64 where in-process entries carry int.
func detailInt(details map[string]any, key string) int {
	switch v := details[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
