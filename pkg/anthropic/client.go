package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dskvich/instructional-pages/pkg/activity"
	"github.com/dskvich/instructional-pages/pkg/domain"
)

const (
	messagesURL      = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	maxTokens        = 8000
)

// shared HTTP client; page generation responses are large, so the timeout is
// generous.
var httpClient = &http.Client{
	Timeout: 3 * time.Minute,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

var limiter = rate.NewLimiter(10, 5)

type ActivityRecorder interface {
	Record(category activity.Category, action string, details map[string]any) string
	RecordDuration(id string, elapsed time.Duration)
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type client struct {
	apiKey   string
	model    string
	hc       *http.Client
	recorder ActivityRecorder
}

func NewClient(apiKey, model string, recorder ActivityRecorder) (*client, error) {
	if apiKey == "" {
		return nil, &domain.ConfigurationError{Msg: "anthropic api key is not configured"}
	}
	if model == "" {
		return nil, &domain.ConfigurationError{Msg: "anthropic model is not configured"}
	}
	return &client{
		apiKey:   apiKey,
		model:    model,
		hc:       httpClient,
		recorder: recorder,
	}, nil
}

// GenerateText performs a single messages call. No internal retry; any
// transport or API failure surfaces as a ProviderError.
func (c *client) GenerateText(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (domain.Completion, error) {
	logID := c.recorder.Record(activity.CategoryAPICall, "text generation request", map[string]any{
		"messageCount": len(messages),
		"model":        c.model,
	})
	startTime := time.Now()

	completion, err := c.send(ctx, systemPrompt, messages)

	c.recorder.RecordDuration(logID, time.Since(startTime))
	if err != nil {
		c.recorder.Record(activity.CategoryError, "text generation failed", map[string]any{"error": err.Error()})
		return domain.Completion{}, err
	}

	c.recorder.Record(activity.CategoryAPICall, "text generation response", map[string]any{
		"contentLength": len(completion.Text),
		"inputTokens":   completion.Usage.InputTokens,
		"outputTokens":  completion.Usage.OutputTokens,
	})
	return completion, nil
}

func (c *client) send(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (domain.Completion, error) {
	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  make([]message, 0, len(messages)),
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, message{Role: m.Role, Content: m.Content})
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, messagesURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return domain.Completion{}, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	if err := limiter.Wait(ctx); err != nil {
		return domain.Completion{}, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return domain.Completion{}, &domain.ProviderError{Provider: "anthropic", Op: "messages", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return domain.Completion{}, &domain.ProviderError{
			Provider: "anthropic",
			Op:       "messages",
			Err:      fmt.Errorf("unexpected status code: %d, response: %s", resp.StatusCode, string(bodyBytes)),
		}
	}

	var msgResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return domain.Completion{}, &domain.ProviderError{Provider: "anthropic", Op: "messages", Err: fmt.Errorf("decoding response: %w", err)}
	}

	if len(msgResp.Content) == 0 {
		return domain.Completion{}, &domain.ProviderError{Provider: "anthropic", Op: "messages", Err: fmt.Errorf("no content in response")}
	}

	return domain.Completion{
		Text: msgResp.Content[0].Text,
		Usage: domain.TokenUsage{
			InputTokens:  msgResp.Usage.InputTokens,
			OutputTokens: msgResp.Usage.OutputTokens,
		},
	}, nil
}
