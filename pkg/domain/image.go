package domain

import "errors"

type ImageRequestKind string

const (
	ImageRequestKindURL      ImageRequestKind = "url"
	ImageRequestKindGenerate ImageRequestKind = "generate"
)

// ImageRequest is either an externally supplied URL to rehost or a
// natural-language request to generate an image. Placement is a free-text
// hint passed through to the prompt builder.
type ImageRequest struct {
	Kind        ImageRequestKind `json:"kind"`
	Source      string           `json:"source,omitempty"`
	Description string           `json:"description,omitempty"`
	Placement   string           `json:"placement,omitempty"`
}

func (r ImageRequest) Validate() error {
	switch r.Kind {
	case ImageRequestKindURL:
		if r.Source == "" {
			return errors.New("source is required for url images")
		}
	case ImageRequestKindGenerate:
		if r.Description == "" {
			return errors.New("description is required for generated images")
		}
	default:
		return errors.New("kind must be 'url' or 'generate'")
	}
	return nil
}

// ResolvedImage is the outcome of resolving one ImageRequest. Failed items
// carry an empty PermanentURL and the failure message.
type ResolvedImage struct {
	Ref          string           `json:"ref"`
	PermanentURL string           `json:"permanentUrl,omitempty"`
	Kind         ImageRequestKind `json:"kind"`
	Placement    string           `json:"placement,omitempty"`
	Description  string           `json:"description,omitempty"`
	Success      bool             `json:"success"`
	Error        string           `json:"error,omitempty"`
}

type ImageStyle string

const (
	ImageStyleEducational  ImageStyle = "educational"
	ImageStyleDiagram      ImageStyle = "diagram"
	ImageStyleRealistic    ImageStyle = "realistic"
	ImageStyleIllustration ImageStyle = "illustration"
)
