package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dskvich/instructional-pages/pkg/domain"
)

// minMarkupLength is the threshold below which generated markup is treated
// as missing.
const minMarkupLength = 100

var (
	imgTagRe     = regexp.MustCompile(`(?i)<img[^>]*>`)
	altAttrRe    = regexp.MustCompile(`(?i)alt\s*=\s*["'][^"']+["']`)
	emptyAltRe   = regexp.MustCompile(`(?i)alt\s*=\s*["']\s*["']`)
	srcAttrRe    = regexp.MustCompile(`(?i)src\s*=\s*["']([^"']+)["']`)
	codeTagRe    = regexp.MustCompile(`(?i)<code[^>]*>`)
	preTagRe     = regexp.MustCompile(`(?i)<pre[^>]*>`)
	codeFormatRe = regexp.MustCompile(`(?i)<pre[^>]*>\s*<code[^>]*class\s*=\s*["'][^"']*language-`)
	highlightRe  = regexp.MustCompile(`(?i)highlight\.js|highlightjs|hljs`)
)

var placeholderSignatures = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)lorem ipsum`), "Lorem ipsum placeholder text"},
	{regexp.MustCompile(`(?i)\[TODO\]`), "[TODO] marker"},
	{regexp.MustCompile(`(?i)\[INSERT[^\]]*\]`), "[INSERT...] placeholder"},
	{regexp.MustCompile(`(?i)\[YOUR[^\]]*HERE\]`), "[YOUR...HERE] placeholder"},
	{regexp.MustCompile(`(?i)placeholder\s*image`), "Placeholder image reference"},
	{regexp.MustCompile(`(?i)example\.com/image`), "example.com placeholder URL"},
}

// verifier runs the content policy checks over generated markup. Pure: the
// same inputs always yield the same findings, in a fixed check order.
type verifier struct{}

func NewVerifier() *verifier { return &verifier{} }

func (v *verifier) Verify(markup string, images []domain.ResolvedImage, _ domain.GenerationConfig) []domain.Finding {
	if len(strings.TrimSpace(markup)) < minMarkupLength {
		// Remaining checks are meaningless without content.
		return []domain.Finding{{
			Type:     domain.FindingMissingHTML,
			Severity: domain.SeverityCritical,
			Message:  "No HTML content was generated or content is too short",
		}}
	}

	var findings []domain.Finding
	findings = append(findings, v.checkImagesUsed(markup, images)...)
	findings = append(findings, v.checkAltText(markup)...)
	findings = append(findings, v.checkCodeBlocks(markup)...)
	findings = append(findings, v.checkPlaceholders(markup)...)
	return findings
}

func (v *verifier) checkImagesUsed(markup string, images []domain.ResolvedImage) []domain.Finding {
	var findings []domain.Finding
	for _, img := range images {
		if !img.Success || img.PermanentURL == "" {
			continue
		}
		if strings.Contains(markup, img.PermanentURL) {
			continue
		}

		description := img.Description
		if description == "" {
			description = "User-provided image"
		}
		findings = append(findings, domain.Finding{
			Type:     domain.FindingUnusedImage,
			Severity: domain.SeverityHigh,
			Message:  "Image not used in HTML",
			Details: map[string]string{
				"url":         img.PermanentURL,
				"placement":   img.Placement,
				"description": description,
			},
		})
	}
	return findings
}

func (v *verifier) checkAltText(markup string) []domain.Finding {
	var findings []domain.Finding
	for _, tag := range imgTagRe.FindAllString(markup, -1) {
		if altAttrRe.MatchString(tag) && !emptyAltRe.MatchString(tag) {
			continue
		}

		src := "unknown"
		if m := srcAttrRe.FindStringSubmatch(tag); m != nil {
			src = m[1]
			if len(src) > 80 {
				src = src[:80] + "..."
			}
		}
		findings = append(findings, domain.Finding{
			Type:     domain.FindingMissingAltText,
			Severity: domain.SeverityMedium,
			Message:  "Image missing alt text",
			Details:  map[string]string{"src": src},
		})
	}
	return findings
}

func (v *verifier) checkCodeBlocks(markup string) []domain.Finding {
	if !codeTagRe.MatchString(markup) && !preTagRe.MatchString(markup) {
		return nil
	}

	var findings []domain.Finding
	if !codeFormatRe.MatchString(markup) {
		findings = append(findings, domain.Finding{
			Type:     domain.FindingCodeFormat,
			Severity: domain.SeverityLow,
			Message:  `Code blocks should use <pre><code class="language-xxx"> format for syntax highlighting`,
		})
	}
	if !highlightRe.MatchString(markup) {
		findings = append(findings, domain.Finding{
			Type:     domain.FindingMissingHighlightSupport,
			Severity: domain.SeverityLow,
			Message:  "Code blocks present but highlight.js CSS/JS may not be included",
		})
	}
	return findings
}

func (v *verifier) checkPlaceholders(markup string) []domain.Finding {
	var findings []domain.Finding
	for _, sig := range placeholderSignatures {
		if sig.re.MatchString(markup) {
			findings = append(findings, domain.Finding{
				Type:     domain.FindingPlaceholderContent,
				Severity: domain.SeverityMedium,
				Message:  fmt.Sprintf("Contains placeholder: %s", sig.name),
			})
		}
	}
	return findings
}

// RequiresFix reports whether the findings warrant a repair cycle: any
// critical or high finding, or any unused image.
func (v *verifier) RequiresFix(findings []domain.Finding) bool {
	for _, f := range findings {
		if f.Severity == domain.SeverityCritical || f.Severity == domain.SeverityHigh || f.Type == domain.FindingUnusedImage {
			return true
		}
	}
	return false
}

// BuildFixPrompt renders findings into the user turn of a repair exchange.
func (v *verifier) BuildFixPrompt(findings []domain.Finding) string {
	var b strings.Builder
	for i, f := range findings {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.Message)
		if url := f.Details["url"]; url != "" {
			fmt.Fprintf(&b, "   - URL to include: %s\n", url)
		}
		if placement := f.Details["placement"]; placement != "" {
			fmt.Fprintf(&b, "   - Suggested placement: %s\n", placement)
		}
		if description := f.Details["description"]; description != "" {
			fmt.Fprintf(&b, "   - Image description: %s\n", description)
		}
	}

	return fmt.Sprintf(`Please fix the following issues with the generated HTML:

%s
Regenerate the complete HTML with these issues fixed. Make sure to:
- Include ALL images with proper <img> tags and meaningful alt text
- Use exact URLs provided for images
- Remove any placeholder content
- Use <pre><code class="language-xxx"> format for code blocks with highlight.js`, b.String())
}
