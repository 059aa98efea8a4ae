package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dskvich/instructional-pages/pkg/activity"
	"github.com/dskvich/instructional-pages/pkg/api/response"
	"github.com/dskvich/instructional-pages/pkg/digitalocean"
	"github.com/dskvich/instructional-pages/pkg/logger"
)

const defaultActivityLimit = 50

type ActivityReader interface {
	Recent(ctx context.Context, limit int) ([]activity.Entry, error)
	Stats(ctx context.Context, now time.Time) (activity.Stats, error)
	Clear(ctx context.Context) error
}

type BalanceProvider interface {
	GetBalance(ctx context.Context) (*digitalocean.Balance, error)
}

type debug struct {
	store   ActivityReader
	balance BalanceProvider // nil when no hosting credential is configured
	writer  response.JSONResponseWriter
}

func NewDebug(store ActivityReader, balance BalanceProvider) *debug {
	return &debug{store: store, balance: balance}
}

func (d *debug) Activity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := d.store.Recent(r.Context(), limit)
	if err != nil {
		d.writer.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to read activity log.", err.Error())
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}

	d.writer.WriteSuccessResponse(w, map[string]any{"entries": entries})
}

func (d *debug) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := d.store.Stats(r.Context(), time.Now())
	if err != nil {
		d.writer.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to compute stats.", err.Error())
		return
	}

	resp := map[string]any{"stats": stats}
	if d.balance != nil {
		if balance, err := d.balance.GetBalance(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "fetching hosting balance", logger.Err(err))
		} else {
			resp["hostingBalance"] = balance
		}
	}

	d.writer.WriteSuccessResponse(w, resp)
}

func (d *debug) Clear(w http.ResponseWriter, r *http.Request) {
	if err := d.store.Clear(r.Context()); err != nil {
		d.writer.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to clear activity log.", err.Error())
		return
	}
	d.writer.WriteSuccessResponse(w, map[string]any{"cleared": true})
}
