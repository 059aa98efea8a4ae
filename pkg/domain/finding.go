package domain

type FindingType string

const (
	FindingMissingHTML             FindingType = "missing_html"
	FindingUnusedImage             FindingType = "unused_image"
	FindingMissingAltText          FindingType = "missing_alt_text"
	FindingCodeFormat              FindingType = "code_format"
	FindingMissingHighlightSupport FindingType = "missing_highlight_support"
	FindingPlaceholderContent      FindingType = "placeholder_content"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Finding is a single verifier-detected deviation from content policy.
// Findings are recomputed fresh on every verification pass.
type Finding struct {
	Type     FindingType       `json:"type"`
	Severity Severity          `json:"severity"`
	Message  string            `json:"message"`
	Details  map[string]string `json:"details,omitempty"`
}
