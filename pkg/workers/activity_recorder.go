package workers

import (
	"context"
	"log/slog"
)

type RecorderRunner interface {
	Run(ctx context.Context) error
}

type activityRecorder struct {
	recorder RecorderRunner
}

func NewActivityRecorder(recorder RecorderRunner) *activityRecorder {
	return &activityRecorder{recorder: recorder}
}

func (a *activityRecorder) Name() string { return "activity_recorder" }

func (a *activityRecorder) Start(ctx context.Context) error {
	slog.Info("Starting worker", "name", a.Name())
	defer slog.Info("Worker stopped", "name", a.Name())

	return a.recorder.Run(ctx)
}
