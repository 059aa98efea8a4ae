package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dskvich/instructional-pages/pkg/api/response"
	"github.com/dskvich/instructional-pages/pkg/domain"
)

type ImageGenerator interface {
	GenerateImage(ctx context.Context, description, style string) (string, error)
}

type ImageHost interface {
	Upload(ctx context.Context, source string) (string, error)
}

// images regenerates a single image outside any conversation, for retrying a
// failed or unsatisfying resolution.
type images struct {
	generator ImageGenerator
	host      ImageHost
	writer    response.JSONResponseWriter
}

func NewImages(generator ImageGenerator, host ImageHost) *images {
	return &images{generator: generator, host: host}
}

func (i *images) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
		Style       string `json:"style"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		i.writer.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body.", err.Error())
		return
	}
	if req.Description == "" {
		i.writer.WriteErrorResponse(w, http.StatusBadRequest, "Description is required.")
		return
	}
	if req.Style == "" {
		req.Style = string(domain.ImageStyleEducational)
	}

	payload, err := i.generator.GenerateImage(r.Context(), req.Description, req.Style)
	if err != nil {
		i.writer.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate image.", err.Error())
		return
	}

	permanentURL, err := i.host.Upload(r.Context(), payload)
	if err != nil {
		i.writer.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to host image.", err.Error())
		return
	}

	i.writer.WriteSuccessResponse(w, map[string]any{
		"permanentUrl": permanentURL,
		"description":  req.Description,
		"style":        req.Style,
	})
}
