package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dskvich/instructional-pages/pkg/activity"
	"github.com/dskvich/instructional-pages/pkg/domain"
)

// MaxFixAttempts bounds the verify-repair loop. The text-generation provider
// is called at most 1 + MaxFixAttempts times per first-turn request.
const MaxFixAttempts = 2

type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (domain.Completion, error)
}

type ImageResolver interface {
	Resolve(ctx context.Context, requests []domain.ImageRequest) []domain.ResolvedImage
}

type Verifier interface {
	Verify(markup string, images []domain.ResolvedImage, cfg domain.GenerationConfig) []domain.Finding
	RequiresFix(findings []domain.Finding) bool
	BuildFixPrompt(findings []domain.Finding) string
}

// pageService drives one generation request end to end: resolve images on
// the first turn, build the prompt, generate, parse, and run the bounded
// verify-repair loop.
type pageService struct {
	textGenerator TextGenerator
	imageResolver ImageResolver
	verifier      Verifier
	recorder      ActivityRecorder
	systemPrompt  string
}

func NewPageService(
	textGenerator TextGenerator,
	imageResolver ImageResolver,
	verifier Verifier,
	recorder ActivityRecorder,
	systemPrompt string,
) *pageService {
	return &pageService{
		textGenerator: textGenerator,
		imageResolver: imageResolver,
		verifier:      verifier,
		recorder:      recorder,
		systemPrompt:  systemPrompt,
	}
}

func (s *pageService) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	details := map[string]any{
		"conversationLength": len(req.Conversation),
		"firstTurn":          req.FirstTurn(),
	}
	if req.Config != nil {
		details["topic"] = req.Config.Topic
		details["imageCount"] = len(req.Config.Images)
	}
	s.recorder.Record(activity.CategoryInfo, "generate request received", details)

	// Images are resolved once per session, on the first turn only.
	var resolved []domain.ResolvedImage
	if req.FirstTurn() && len(req.Config.Images) > 0 {
		resolved = s.imageResolver.Resolve(ctx, req.Config.Images)
	}

	// Working message list sent to the model. Repair exchanges accumulate
	// here; the caller only ever sees the final assistant message.
	messages := make([]domain.ChatMessage, 0, len(req.Conversation)+1)
	messages = append(messages, req.Conversation...)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.MessageRoleUser,
		Content: buildUserMessage(req.Config, req.UserMessage, resolved),
	})

	completion, err := s.textGenerator.GenerateText(ctx, s.systemPrompt, messages)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	message, markup := ParseModelOutput(completion.Text)
	slog.InfoContext(ctx, "Initial generation complete", "markupLength", len(markup))

	if req.FirstTurn() {
		message, markup, err = s.repairLoop(ctx, messages, completion, resolved, *req.Config, message, markup)
		if err != nil {
			return nil, err
		}
	}

	return &domain.GenerationResult{
		Message:        message,
		MessageHTML:    RenderMarkdown(message),
		Markup:         markup,
		ResolvedImages: resolved,
	}, nil
}

func (s *pageService) repairLoop(
	ctx context.Context,
	messages []domain.ChatMessage,
	completion domain.Completion,
	resolved []domain.ResolvedImage,
	cfg domain.GenerationConfig,
	message, markup string,
) (string, string, error) {
	findings := s.verifier.Verify(markup, resolved, cfg)

	for attempts := 0; s.verifier.RequiresFix(findings) && attempts < MaxFixAttempts; attempts++ {
		summaries := make([]string, 0, len(findings))
		for _, f := range findings {
			summaries = append(summaries, f.Message)
		}
		s.recorder.Record(activity.CategoryVerification, fmt.Sprintf("fix attempt %d", attempts+1), map[string]any{
			"findingCount": len(findings),
			"findings":     summaries,
		})

		// One repair exchange: the prior raw output, then the fix prompt.
		messages = append(messages,
			domain.ChatMessage{Role: domain.MessageRoleAssistant, Content: completion.Text},
			domain.ChatMessage{Role: domain.MessageRoleUser, Content: s.verifier.BuildFixPrompt(findings)},
		)

		var err error
		completion, err = s.textGenerator.GenerateText(ctx, s.systemPrompt, messages)
		if err != nil {
			return "", "", fmt.Errorf("regenerating content: %w", err)
		}

		message, markup = ParseModelOutput(completion.Text)
		findings = s.verifier.Verify(markup, resolved, cfg)
	}

	if len(findings) > 0 {
		residual := make([]string, 0, len(findings))
		for _, f := range findings {
			residual = append(residual, fmt.Sprintf("%s: %s", f.Severity, f.Message))
		}
		s.recorder.Record(activity.CategoryVerification, "verification complete with issues", map[string]any{
			"remainingIssues": residual,
		})
	} else {
		s.recorder.Record(activity.CategoryVerification, "verification passed", nil)
	}

	return message, markup, nil
}
