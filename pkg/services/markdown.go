package services

import (
	"bytes"
	"log/slog"

	"github.com/yuin/goldmark"

	"github.com/dskvich/instructional-pages/pkg/logger"
)

// RenderMarkdown converts the assistant's conversational message to HTML for
// the chat pane. Returns the empty string when rendering fails; the raw
// message stays available alongside.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		slog.Warn("rendering message markdown", logger.Err(err))
		return ""
	}
	return buf.String()
}
