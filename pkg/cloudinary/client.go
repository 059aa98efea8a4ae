package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dskvich/instructional-pages/pkg/activity"
	"github.com/dskvich/instructional-pages/pkg/domain"
)

const (
	uploadURLTemplate = "https://api.cloudinary.com/v1_1/%s/image/upload"
	uploadFolder      = "instructional-pages"

	// Max width 1000px, auto quality and delivery format.
	transformation = "w_1000,c_limit,q_auto:good,f_auto"
)

type ActivityRecorder interface {
	Record(category activity.Category, action string, details map[string]any) string
	RecordDuration(id string, elapsed time.Duration)
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Bytes     int64  `json:"bytes"`
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	cloudName string
	apiKey    string
	apiSecret string
	hc        *http.Client
	recorder  ActivityRecorder
}

func NewClient(cloudName, apiKey, apiSecret string, recorder ActivityRecorder) (*client, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, &domain.ConfigurationError{Msg: "cloudinary credentials are not configured"}
	}
	return &client{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		hc:        &http.Client{Timeout: 2 * time.Minute},
		recorder:  recorder,
	}, nil
}

// Upload rehosts the source as an optimized image and returns its durable
// URL. The upload API takes remote URLs and base64 data URLs through the same
// file parameter, so both payload kinds pass through unchanged.
func (c *client) Upload(ctx context.Context, source string) (string, error) {
	sourceKind := "url"
	sourcePreview := truncate(source, 80)
	if strings.HasPrefix(source, "data:") {
		sourceKind = "base64"
		sourcePreview = "data:image/...(base64)"
	}

	logID := c.recorder.Record(activity.CategoryImageUpload, "image upload started", map[string]any{
		"type":   sourceKind,
		"source": sourcePreview,
	})
	startTime := time.Now()

	permanentURL, err := c.upload(ctx, source)

	c.recorder.RecordDuration(logID, time.Since(startTime))
	if err != nil {
		c.recorder.Record(activity.CategoryError, "image upload failed", map[string]any{
			"error": err.Error(),
			"type":  sourceKind,
		})
		return "", err
	}

	c.recorder.Record(activity.CategoryImageUpload, "image upload complete", map[string]any{"permanentUrl": permanentURL})
	return permanentURL, nil
}

func (c *client) upload(ctx context.Context, source string) (string, error) {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Set("file", source)
	form.Set("api_key", c.apiKey)
	form.Set("timestamp", timestamp)
	form.Set("folder", uploadFolder)
	form.Set("transformation", transformation)
	form.Set("signature", c.sign(map[string]string{
		"timestamp":      timestamp,
		"folder":         uploadFolder,
		"transformation": transformation,
	}))

	endpoint := fmt.Sprintf(uploadURLTemplate, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Provider: "cloudinary", Op: "upload", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderError{Provider: "cloudinary", Op: "upload", Err: fmt.Errorf("reading response: %w", err)}
	}

	var uploadResp uploadResponse
	if err := json.Unmarshal(body, &uploadResp); err != nil {
		return "", &domain.ProviderError{Provider: "cloudinary", Op: "upload", Err: fmt.Errorf("decoding response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := uploadResp.Error.Message
		if msg == "" {
			msg = string(body)
		}
		return "", &domain.ProviderError{
			Provider: "cloudinary",
			Op:       "upload",
			Err:      fmt.Errorf("unexpected status code: %d, response: %s", resp.StatusCode, msg),
		}
	}

	if uploadResp.SecureURL == "" {
		return "", &domain.ProviderError{Provider: "cloudinary", Op: "upload", Err: fmt.Errorf("no secure_url in response")}
	}
	return uploadResp.SecureURL, nil
}

// sign builds the request signature: the signed parameters sorted by name,
// joined as a query string, concatenated with the API secret and hashed.
func (c *client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
