package activity

import (
	"context"
	"time"
)

type Category string

const (
	CategoryAPICall      Category = "api_call"
	CategoryImageGen     Category = "image_gen"
	CategoryImageUpload  Category = "image_upload"
	CategoryVerification Category = "verification"
	CategoryError        Category = "error"
	CategoryInfo         Category = "info"
)

// Entry is one recorded action. DurationMS is zero until the caller reports
// completion via RecordDuration.
type Entry struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Category   Category       `json:"category"`
	Action     string         `json:"action"`
	Details    map[string]any `json:"details,omitempty"`
	DurationMS int64          `json:"durationMs,omitempty"`
}

// WindowStats aggregates entries inside one time window. TokensUsed sums the
// inputTokens and outputTokens detail fields of the window's entries.
type WindowStats struct {
	Total            int `json:"total"`
	APICalls         int `json:"apiCalls"`
	ImageGenerations int `json:"imageGenerations"`
	ImageUploads     int `json:"imageUploads"`
	Errors           int `json:"errors"`
	TokensUsed       int `json:"tokensUsed"`
}

type Stats struct {
	TotalEntries int         `json:"totalEntries"`
	Last5Minutes WindowStats `json:"last5Minutes"`
	LastHour     WindowStats `json:"lastHour"`
	Last24Hours  WindowStats `json:"last24Hours"`
}

type Store interface {
	Append(ctx context.Context, entry Entry) error
	SetDuration(ctx context.Context, id string, durationMS int64) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Stats(ctx context.Context, now time.Time) (Stats, error)
	Clear(ctx context.Context) error
}
