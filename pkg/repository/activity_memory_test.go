package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dskvich/instructional-pages/pkg/activity"
)

func TestActivityMemoryRepository_RecentIsNewestFirst(t *testing.T) {
	repo := NewActivityMemoryRepository(10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Append(ctx, activity.Entry{ID: fmt.Sprintf("e%d", i)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := repo.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"e2", "e1", "e0"} {
		if entries[i].ID != want {
			t.Errorf("position %d: expected %q, got %q", i, want, entries[i].ID)
		}
	}
}

func TestActivityMemoryRepository_EvictsOldestBeyondCap(t *testing.T) {
	repo := NewActivityMemoryRepository(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = repo.Append(ctx, activity.Entry{ID: fmt.Sprintf("e%d", i)})
	}

	entries, _ := repo.Recent(ctx, 0)
	if len(entries) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(entries))
	}
	if entries[0].ID != "e4" || entries[2].ID != "e2" {
		t.Errorf("expected newest three retained, got %v", entries)
	}
}

func TestActivityMemoryRepository_RecentHonorsLimit(t *testing.T) {
	repo := NewActivityMemoryRepository(10)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = repo.Append(ctx, activity.Entry{ID: fmt.Sprintf("e%d", i)})
	}

	entries, _ := repo.Recent(ctx, 2)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "e4" {
		t.Errorf("expected newest entry first, got %q", entries[0].ID)
	}
}

func TestActivityMemoryRepository_SetDuration(t *testing.T) {
	repo := NewActivityMemoryRepository(10)
	ctx := context.Background()

	_ = repo.Append(ctx, activity.Entry{ID: "a"})
	if err := repo.SetDuration(ctx, "a", 250); err != nil {
		t.Fatalf("set duration: %v", err)
	}
	// Unknown ids are a no-op, not an error: the entry may have been evicted.
	if err := repo.SetDuration(ctx, "gone", 99); err != nil {
		t.Fatalf("set duration for evicted entry: %v", err)
	}

	entries, _ := repo.Recent(ctx, 0)
	if entries[0].DurationMS != 250 {
		t.Errorf("expected duration 250ms, got %d", entries[0].DurationMS)
	}
}

func TestActivityMemoryRepository_StatsWindows(t *testing.T) {
	repo := NewActivityMemoryRepository(50)
	ctx := context.Background()
	now := time.Now()

	add := func(age time.Duration, category activity.Category, details map[string]any) {
		_ = repo.Append(ctx, activity.Entry{
			ID:        fmt.Sprintf("%s-%s", category, age),
			Timestamp: now.Add(-age),
			Category:  category,
			Details:   details,
		})
	}

	add(time.Minute, activity.CategoryAPICall, map[string]any{"inputTokens": 100, "outputTokens": 200})
	add(time.Minute, activity.CategoryImageGen, nil)
	add(30*time.Minute, activity.CategoryImageUpload, nil)
	add(30*time.Minute, activity.CategoryError, nil)
	add(12*time.Hour, activity.CategoryAPICall, map[string]any{"inputTokens": float64(50)})
	add(48*time.Hour, activity.CategoryAPICall, map[string]any{"inputTokens": 999})

	stats, err := repo.Stats(ctx, now)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalEntries != 6 {
		t.Errorf("expected 6 total entries, got %d", stats.TotalEntries)
	}

	if stats.Last5Minutes.Total != 2 || stats.Last5Minutes.APICalls != 1 || stats.Last5Minutes.ImageGenerations != 1 {
		t.Errorf("unexpected 5-minute window: %+v", stats.Last5Minutes)
	}
	if stats.Last5Minutes.TokensUsed != 300 {
		t.Errorf("expected 300 tokens in 5-minute window, got %d", stats.Last5Minutes.TokensUsed)
	}

	if stats.LastHour.Total != 4 || stats.LastHour.ImageUploads != 1 || stats.LastHour.Errors != 1 {
		t.Errorf("unexpected hour window: %+v", stats.LastHour)
	}

	// JSON-decoded details carry float64 token counts.
	if stats.Last24Hours.Total != 5 || stats.Last24Hours.TokensUsed != 350 {
		t.Errorf("unexpected 24-hour window: %+v", stats.Last24Hours)
	}
}

func TestActivityMemoryRepository_Clear(t *testing.T) {
	repo := NewActivityMemoryRepository(10)
	ctx := context.Background()

	_ = repo.Append(ctx, activity.Entry{ID: "a"})
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	entries, _ := repo.Recent(ctx, 0)
	if len(entries) != 0 {
		t.Errorf("expected empty store after clear, got %d entries", len(entries))
	}
	stats, _ := repo.Stats(ctx, time.Now())
	if stats.TotalEntries != 0 {
		t.Errorf("expected zero stats after clear, got %+v", stats)
	}
}
