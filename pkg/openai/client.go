package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/dskvich/instructional-pages/pkg/activity"
	"github.com/dskvich/instructional-pages/pkg/domain"
)

// stylePrompts maps a style tag to the suffix appended to the image prompt.
// Unknown tags fall back to the educational profile.
var stylePrompts = map[domain.ImageStyle]string{
	domain.ImageStyleEducational:  "Clean, educational illustration style, clear and simple",
	domain.ImageStyleDiagram:      "Technical diagram style, clear labels and structure",
	domain.ImageStyleRealistic:    "Photorealistic style, professional quality",
	domain.ImageStyleIllustration: "Hand-drawn illustration style, friendly and approachable",
}

type ActivityRecorder interface {
	Record(category activity.Category, action string, details map[string]any) string
	RecordDuration(id string, elapsed time.Duration)
}

type client struct {
	api      *openai.Client
	model    string
	recorder ActivityRecorder
}

func NewClient(token, model string, recorder ActivityRecorder) (*client, error) {
	if token == "" {
		return nil, &domain.ConfigurationError{Msg: "openai api key is not configured"}
	}
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &client{
		api:      openai.NewClient(token),
		model:    model,
		recorder: recorder,
	}, nil
}

// GenerateImage produces one image for the description and returns a
// transient payload: a provider URL when available, otherwise a base64 data
// URL. Single attempt, no internal retry.
func (c *client) GenerateImage(ctx context.Context, description string, style string) (string, error) {
	suffix, ok := stylePrompts[domain.ImageStyle(style)]
	if !ok {
		suffix = stylePrompts[domain.ImageStyleEducational]
	}

	logID := c.recorder.Record(activity.CategoryImageGen, "image generation started", map[string]any{
		"prompt": truncate(description, 100),
		"style":  style,
		"model":  c.model,
	})
	startTime := time.Now()

	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Model:          c.model,
		Prompt:         fmt.Sprintf("%s. %s", description, suffix),
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		Quality:        openai.CreateImageQualityHD,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})

	c.recorder.RecordDuration(logID, time.Since(startTime))
	if err != nil {
		c.recorder.Record(activity.CategoryError, "image generation failed", map[string]any{"error": err.Error()})
		return "", &domain.ProviderError{Provider: "openai", Op: "images", Err: err}
	}

	if len(resp.Data) == 0 {
		return "", &domain.ProviderError{Provider: "openai", Op: "images", Err: fmt.Errorf("no image in response")}
	}

	payload := resp.Data[0].URL
	format := "url"
	if payload == "" {
		payload = "data:image/png;base64," + resp.Data[0].B64JSON
		format = "base64"
	}

	c.recorder.Record(activity.CategoryImageGen, "image generated", map[string]any{"format": format})
	return payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
