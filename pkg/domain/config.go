package domain

import "fmt"

type StyleFlag string

const (
	StyleFlagAccessible     StyleFlag = "accessible"
	StyleFlagVisual         StyleFlag = "visual"
	StyleFlagTechnical      StyleFlag = "technical"
	StyleFlagConversational StyleFlag = "conversational"
	StyleFlagHumor          StyleFlag = "humor"
)

const (
	DepthLevelMin = 0
	DepthLevelMax = 4
)

// GenerationConfig describes the page a session is about. It is created by
// the caller on the first turn and never modified afterwards.
type GenerationConfig struct {
	Topic      string         `json:"topic"`
	DepthLevel int            `json:"depthLevel"`
	StyleFlags []StyleFlag    `json:"styleFlags"`
	Images     []ImageRequest `json:"images"`
}

func (c *GenerationConfig) Validate() error {
	if c.Topic == "" {
		return &ConfigurationError{Msg: "config.topic is required"}
	}
	if c.DepthLevel < DepthLevelMin || c.DepthLevel > DepthLevelMax {
		return &ConfigurationError{Msg: fmt.Sprintf("config.depthLevel must be between %d and %d", DepthLevelMin, DepthLevelMax)}
	}
	for i, img := range c.Images {
		if err := img.Validate(); err != nil {
			return &ConfigurationError{Msg: fmt.Sprintf("config.images[%d]: %v", i, err)}
		}
	}
	return nil
}
