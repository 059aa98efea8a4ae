package services

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dskvich/instructional-pages/pkg/domain"
	"github.com/dskvich/instructional-pages/pkg/logger"
)

const defaultSystemPrompt = `You are an expert instructional designer. You create complete, self-contained
instructional HTML pages on any topic.

Respond with a short conversational message describing what you built, followed
by exactly one fenced code block tagged html containing the full page:

` + "```html" + `
<!DOCTYPE html>
...
` + "```" + `

Rules for the page:
- Self-contained: inline CSS, no external stylesheets except highlight.js.
- Every image uses an <img> tag with a meaningful, non-empty alt attribute.
- When image URLs are provided, use those exact URLs. Never invent image URLs.
- Code examples use <pre><code class="language-xxx"> blocks and include
  highlight.js assets.
- No placeholder content of any kind: no lorem ipsum, no [TODO] or
  [INSERT ...] markers, no example.com URLs.`

var depthLabels = [...]string{"minimal", "introductory", "standard", "detailed", "exhaustive"}

// LoadSystemPrompt reads the system prompt from path, falling back to the
// built-in prompt when the file is absent.
func LoadSystemPrompt(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("falling back to built-in system prompt", "path", path, logger.Err(err))
		return defaultSystemPrompt
	}
	return string(data)
}

// buildUserMessage renders the outbound user turn. The first turn embeds the
// full configuration and the resolved image URLs; follow-up turns pass the
// user's message through unmodified.
func buildUserMessage(cfg *domain.GenerationConfig, userMessage string, images []domain.ResolvedImage) string {
	if userMessage != "" {
		return userMessage
	}

	styleFlagsText := "None"
	if len(cfg.StyleFlags) > 0 {
		flags := make([]string, 0, len(cfg.StyleFlags))
		for _, f := range cfg.StyleFlags {
			flags = append(flags, string(f))
		}
		styleFlagsText = strings.Join(flags, ", ")
	}

	depth := fmt.Sprintf("%d", cfg.DepthLevel)
	if cfg.DepthLevel >= 0 && cfg.DepthLevel < len(depthLabels) {
		depth = fmt.Sprintf("%d (%s)", cfg.DepthLevel, depthLabels[cfg.DepthLevel])
	}

	return fmt.Sprintf(`Please create an instructional page with the following configuration:

Topic: %s
Depth Level: %s
Style Flags: %s%s

Generate the HTML page now. Use the exact image URLs provided above in <img> tags with appropriate alt text.`,
		cfg.Topic, depth, styleFlagsText, buildImageContext(images))
}

// buildImageContext lists the successfully resolved images for the prompt.
func buildImageContext(images []domain.ResolvedImage) string {
	var lines []string
	for _, img := range images {
		if !img.Success {
			continue
		}
		desc := "User-provided image"
		if img.Kind == domain.ImageRequestKindGenerate {
			desc = fmt.Sprintf("AI-generated: %q", img.Description)
		}
		lines = append(lines, fmt.Sprintf("  %d. %s\n     URL: %s\n     Suggested placement: %s",
			len(lines)+1, desc, img.PermanentURL, img.Placement))
	}

	if len(lines) == 0 {
		return ""
	}
	return "\n\nIMAGES AVAILABLE (use these exact URLs in your HTML):\n" + strings.Join(lines, "\n")
}
