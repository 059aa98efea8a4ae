package domain

// GenerationRequest is the pipeline entry contract. Config is required on the
// first turn of a session (UserMessage empty); follow-up turns carry only
// UserMessage and the accumulated conversation.
type GenerationRequest struct {
	Conversation []ChatMessage     `json:"conversation"`
	Config       *GenerationConfig `json:"config,omitempty"`
	UserMessage  string            `json:"userMessage,omitempty"`
}

func (r *GenerationRequest) FirstTurn() bool { return r.UserMessage == "" }

func (r *GenerationRequest) Validate() error {
	if r.FirstTurn() {
		if r.Config == nil {
			return &ConfigurationError{Msg: "config is required on the first turn"}
		}
		return r.Config.Validate()
	}
	return nil
}

// TokenUsage reports provider token counters for one generation call.
type TokenUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Completion is the raw outcome of one text-generation call.
type Completion struct {
	Text  string
	Usage TokenUsage
}

// GenerationResult is the terminal artifact of one pipeline run. Message is
// the assistant's conversational text, MessageHTML its rendered form, Markup
// the extracted page. ResolvedImages reflects the image pipeline output in
// request order, failures included.
type GenerationResult struct {
	Message        string          `json:"message"`
	MessageHTML    string          `json:"messageHtml"`
	Markup         string          `json:"html"`
	ResolvedImages []ResolvedImage `json:"resolvedImages"`
}

// GeneratedImages returns the successfully AI-generated subset, the part the
// caller reports back to the user.
func (r *GenerationResult) GeneratedImages() []ResolvedImage {
	var out []ResolvedImage
	for _, img := range r.ResolvedImages {
		if img.Kind == ImageRequestKindGenerate && img.Success {
			out = append(out, img)
		}
	}
	return out
}
