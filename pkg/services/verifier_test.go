package services

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dskvich/instructional-pages/pkg/domain"
)

const validPage = `<!DOCTYPE html>
<html>
<head><title>Photosynthesis</title></head>
<body>
<h1>Photosynthesis</h1>
<p>Plants convert light into chemical energy through a series of reactions.</p>
</body>
</html>`

func TestVerify_EmptyMarkup(t *testing.T) {
	v := NewVerifier()

	findings := v.Verify("", nil, domain.GenerationConfig{})

	if len(findings) != 1 {
		t.Fatalf("expected exactly 1 finding, got %d: %+v", len(findings), findings)
	}
	if findings[0].Type != domain.FindingMissingHTML {
		t.Errorf("expected type %s, got %s", domain.FindingMissingHTML, findings[0].Type)
	}
	if findings[0].Severity != domain.SeverityCritical {
		t.Errorf("expected severity %s, got %s", domain.SeverityCritical, findings[0].Severity)
	}
}

func TestVerify_ShortMarkupIsMissing(t *testing.T) {
	v := NewVerifier()

	findings := v.Verify("<html><body>hi</body></html>", nil, domain.GenerationConfig{})

	if len(findings) != 1 || findings[0].Type != domain.FindingMissingHTML {
		t.Fatalf("expected single missing_html finding, got %+v", findings)
	}
}

func TestVerify_UnusedImage(t *testing.T) {
	v := NewVerifier()
	images := []domain.ResolvedImage{
		{Ref: "image-1", PermanentURL: "https://host/img1.png", Kind: domain.ImageRequestKindURL, Placement: "after intro", Success: true},
	}

	findings := v.Verify(validPage, images, domain.GenerationConfig{})

	var found *domain.Finding
	for i := range findings {
		if findings[i].Type == domain.FindingUnusedImage {
			found = &findings[i]
		}
	}
	if found == nil {
		t.Fatalf("expected an unused_image finding, got %+v", findings)
	}
	if found.Severity != domain.SeverityHigh {
		t.Errorf("expected severity high, got %s", found.Severity)
	}
	if found.Details["url"] != "https://host/img1.png" {
		t.Errorf("expected the exact URL in details, got %q", found.Details["url"])
	}
}

func TestVerify_UsedAndFailedImagesProduceNoFinding(t *testing.T) {
	v := NewVerifier()
	markup := validPage + `<img src="https://host/img1.png" alt="diagram">`
	images := []domain.ResolvedImage{
		{Ref: "image-1", PermanentURL: "https://host/img1.png", Success: true},
		{Ref: "image-2", Success: false, Error: "upload failed"},
	}

	for _, f := range v.Verify(markup, images, domain.GenerationConfig{}) {
		if f.Type == domain.FindingUnusedImage {
			t.Errorf("unexpected unused_image finding: %+v", f)
		}
	}
}

func TestVerify_MissingAltText(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		expected int
	}{
		{"empty alt", `<img src="https://host/a.png" alt="">`, 1},
		{"no alt", `<img src="https://host/a.png">`, 1},
		{"whitespace alt", `<img src="https://host/a.png" alt="  ">`, 1},
		{"proper alt", `<img src="https://host/a.png" alt="a diagram">`, 0},
	}

	v := NewVerifier()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			count := 0
			for _, f := range v.Verify(validPage+test.tag, nil, domain.GenerationConfig{}) {
				if f.Type == domain.FindingMissingAltText {
					count++
					if f.Severity != domain.SeverityMedium {
						t.Errorf("expected severity medium, got %s", f.Severity)
					}
				}
			}
			if count != test.expected {
				t.Errorf("expected %d missing_alt_text findings, got %d", test.expected, count)
			}
		})
	}
}

func TestVerify_CodeBlocks(t *testing.T) {
	v := NewVerifier()

	t.Run("bad format and no highlight support", func(t *testing.T) {
		markup := validPage + `<pre>fmt.Println("hello")</pre>`
		types := findingTypes(v.Verify(markup, nil, domain.GenerationConfig{}))

		if !types[domain.FindingCodeFormat] {
			t.Error("expected a code_format finding")
		}
		if !types[domain.FindingMissingHighlightSupport] {
			t.Error("expected a missing_highlight_support finding")
		}
	})

	t.Run("canonical format with highlight assets", func(t *testing.T) {
		markup := validPage +
			`<link rel="stylesheet" href="https://cdn.example.org/highlight.js/styles/default.css">` +
			`<pre><code class="language-go">fmt.Println("hello")</code></pre>`
		types := findingTypes(v.Verify(markup, nil, domain.GenerationConfig{}))

		if types[domain.FindingCodeFormat] || types[domain.FindingMissingHighlightSupport] {
			t.Errorf("expected no code findings, got %v", types)
		}
	})

	t.Run("no code at all", func(t *testing.T) {
		types := findingTypes(v.Verify(validPage, nil, domain.GenerationConfig{}))

		if types[domain.FindingCodeFormat] || types[domain.FindingMissingHighlightSupport] {
			t.Errorf("expected no code findings, got %v", types)
		}
	})
}

func TestVerify_Placeholders(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
	}{
		{"lorem ipsum", "<p>Lorem ipsum dolor sit amet</p>"},
		{"todo marker", "<p>[TODO]</p>"},
		{"insert marker", "<p>[INSERT DIAGRAM HERE]</p>"},
		{"your-here marker", "<p>[YOUR TOPIC HERE]</p>"},
		{"placeholder image", "<p>placeholder image</p>"},
		{"example domain image", `<img src="https://example.com/image.png" alt="x">`},
	}

	v := NewVerifier()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if !findingTypes(v.Verify(validPage+test.snippet, nil, domain.GenerationConfig{}))[domain.FindingPlaceholderContent] {
				t.Error("expected a placeholder_content finding")
			}
		})
	}
}

func TestVerify_IsPure(t *testing.T) {
	v := NewVerifier()
	markup := validPage + `<img src="https://host/a.png"><pre>code</pre>[TODO]`
	images := []domain.ResolvedImage{{PermanentURL: "https://host/b.png", Success: true}}

	first := v.Verify(markup, images, domain.GenerationConfig{})
	second := v.Verify(markup, images, domain.GenerationConfig{})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("verify is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestRequiresFix(t *testing.T) {
	tests := []struct {
		name     string
		findings []domain.Finding
		expected bool
	}{
		{"empty", nil, false},
		{"single low", []domain.Finding{{Type: domain.FindingCodeFormat, Severity: domain.SeverityLow}}, false},
		{"medium only", []domain.Finding{{Type: domain.FindingMissingAltText, Severity: domain.SeverityMedium}}, false},
		{"critical", []domain.Finding{{Type: domain.FindingMissingHTML, Severity: domain.SeverityCritical}}, true},
		{"high", []domain.Finding{{Type: domain.FindingUnusedImage, Severity: domain.SeverityHigh}}, true},
		{
			"unused image among lows",
			[]domain.Finding{
				{Type: domain.FindingCodeFormat, Severity: domain.SeverityLow},
				{Type: domain.FindingUnusedImage, Severity: domain.SeverityLow},
			},
			true,
		},
	}

	v := NewVerifier()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := v.RequiresFix(test.findings); got != test.expected {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestBuildFixPrompt(t *testing.T) {
	v := NewVerifier()
	findings := []domain.Finding{
		{
			Type:     domain.FindingUnusedImage,
			Severity: domain.SeverityHigh,
			Message:  "Image not used in HTML",
			Details: map[string]string{
				"url":         "https://host/img1.png",
				"placement":   "after intro",
				"description": "AI-generated: \"a cell diagram\"",
			},
		},
		{Type: domain.FindingCodeFormat, Severity: domain.SeverityLow, Message: "Code blocks should use canonical format"},
	}

	prompt := v.BuildFixPrompt(findings)

	for _, want := range []string{
		"1. Image not used in HTML",
		"URL to include: https://host/img1.png",
		"Suggested placement: after intro",
		"2. Code blocks should use canonical format",
		"Regenerate the complete HTML",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("fix prompt missing %q:\n%s", want, prompt)
		}
	}
}

func findingTypes(findings []domain.Finding) map[domain.FindingType]bool {
	types := make(map[domain.FindingType]bool)
	for _, f := range findings {
		types[f.Type] = true
	}
	return types
}
