package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dskvich/instructional-pages/pkg/activity"
	"github.com/dskvich/instructional-pages/pkg/domain"
)

type ImageGenerator interface {
	GenerateImage(ctx context.Context, description, style string) (string, error)
}

type ImageHost interface {
	Upload(ctx context.Context, source string) (string, error)
}

type ActivityRecorder interface {
	Record(category activity.Category, action string, details map[string]any) string
	RecordDuration(id string, elapsed time.Duration)
}

const defaultImageStyle = string(domain.ImageStyleEducational)

// imageResolver turns image requests into durable hosted URLs. Items resolve
// concurrently and independently; a failed item is captured in its result
// slot and never aborts the rest.
type imageResolver struct {
	generator   ImageGenerator
	host        ImageHost
	recorder    ActivityRecorder
	concurrency int
}

func NewImageResolver(
	generator ImageGenerator,
	host ImageHost,
	recorder ActivityRecorder,
	concurrency int,
) *imageResolver {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &imageResolver{
		generator:   generator,
		host:        host,
		recorder:    recorder,
		concurrency: concurrency,
	}
}

// Resolve returns one ResolvedImage per request, in request order. Items run
// concurrently, capped at the resolver's concurrency limit to bound pressure
// on the generation and hosting providers.
func (r *imageResolver) Resolve(ctx context.Context, requests []domain.ImageRequest) []domain.ResolvedImage {
	if len(requests) == 0 {
		return nil
	}

	r.recorder.Record(activity.CategoryInfo, "image resolution started", map[string]any{"count": len(requests)})

	results := make([]domain.ResolvedImage, len(requests))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			results[i] = r.resolveOne(ctx, i, req)
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}

	slog.InfoContext(ctx, "Image resolution complete", "succeeded", succeeded, "failed", len(results)-succeeded)
	r.recorder.Record(activity.CategoryInfo, "image resolution complete", map[string]any{
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})

	return results
}

func (r *imageResolver) resolveOne(ctx context.Context, index int, req domain.ImageRequest) domain.ResolvedImage {
	resolved := domain.ResolvedImage{
		Ref:       fmt.Sprintf("image-%d", index+1),
		Kind:      req.Kind,
		Placement: req.Placement,
	}

	switch req.Kind {
	case domain.ImageRequestKindURL:
		permanentURL, err := r.host.Upload(ctx, req.Source)
		if err != nil {
			resolved.Error = err.Error()
			return resolved
		}
		resolved.PermanentURL = permanentURL

	case domain.ImageRequestKindGenerate:
		resolved.Description = req.Description

		payload, err := r.generator.GenerateImage(ctx, req.Description, defaultImageStyle)
		if err != nil {
			resolved.Error = err.Error()
			return resolved
		}

		permanentURL, err := r.host.Upload(ctx, payload)
		if err != nil {
			resolved.Error = err.Error()
			return resolved
		}
		resolved.PermanentURL = permanentURL

	default:
		resolved.Error = fmt.Sprintf("unknown image kind: %s", req.Kind)
		return resolved
	}

	resolved.Success = true
	return resolved
}
