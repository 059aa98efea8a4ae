package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dskvich/instructional-pages/pkg/api/response"
	"github.com/dskvich/instructional-pages/pkg/domain"
	"github.com/dskvich/instructional-pages/pkg/logger"
)

type PageGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

type generate struct {
	service PageGenerator
	writer  response.JSONResponseWriter
}

func NewGenerate(service PageGenerator) *generate {
	return &generate{service: service}
}

type generateResponse struct {
	Message         string                 `json:"message"`
	MessageHTML     string                 `json:"messageHtml"`
	HTML            string                 `json:"html"`
	ImagesGenerated []domain.ResolvedImage `json:"imagesGenerated"`
}

func (g *generate) GeneratePage(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.writer.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body.", err.Error())
		return
	}

	result, err := g.service.Generate(r.Context(), req)
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			g.writer.WriteErrorResponse(w, http.StatusBadRequest, "Invalid generation request.", cfgErr.Msg)
			return
		}

		slog.ErrorContext(r.Context(), "generation failed", logger.Err(err))
		g.writer.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate content.", err.Error())
		return
	}

	images := result.GeneratedImages()
	if images == nil {
		images = []domain.ResolvedImage{}
	}

	g.writer.WriteSuccessResponse(w, generateResponse{
		Message:         result.Message,
		MessageHTML:     result.MessageHTML,
		HTML:            result.Markup,
		ImagesGenerated: images,
	})
}
