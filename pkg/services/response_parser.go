package services

import "strings"

const htmlFenceMarker = "```html"

// ParseModelOutput splits raw model output into the explanatory message and
// the interior of the first HTML-tagged fenced block. Best-effort text parse:
// a missing or malformed fence degrades to empty markup, never an error; the
// verifier's missing-content check is the recovery path.
func ParseModelOutput(raw string) (message, markup string) {
	idx := strings.Index(raw, htmlFenceMarker)
	if idx < 0 {
		return strings.TrimSpace(raw), ""
	}

	message = strings.TrimSpace(raw[:idx])

	rest := raw[idx+len(htmlFenceMarker):]
	nl := strings.Index(rest, "\n")
	if nl < 0 {
		// Fence opener with no content line.
		return message, ""
	}
	rest = rest[nl+1:]

	if end := strings.Index(rest, "```"); end >= 0 {
		markup = rest[:end]
	} else {
		// Unterminated fence: the opener marks intent, take everything.
		markup = rest
	}
	return message, strings.TrimSpace(markup)
}
