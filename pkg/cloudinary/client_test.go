package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dskvich/instructional-pages/pkg/activity"
	"github.com/dskvich/instructional-pages/pkg/domain"
)

type stubRecorder struct{}

func (stubRecorder) Record(activity.Category, string, map[string]any) string { return "id" }
func (stubRecorder) RecordDuration(string, time.Duration)                    {}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(t *testing.T, rt roundTripFunc) *client {
	t.Helper()
	c, err := NewClient("demo", "key123", "topsecret", stubRecorder{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.hc = &http.Client{Transport: rt}
	return c
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient("demo", "", "secret", stubRecorder{})

	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected a ConfigurationError, got %v", err)
	}
}

func TestUpload_SendsSignedForm(t *testing.T) {
	var form url.Values
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Host != "api.cloudinary.com" || !strings.Contains(r.URL.Path, "/demo/image/upload") {
			t.Errorf("unexpected endpoint %s", r.URL)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		form = r.PostForm
		return jsonResponse(http.StatusOK, `{"secure_url":"https://res.cloudinary.com/demo/x.png"}`), nil
	})

	got, err := c.Upload(context.Background(), "https://origin/image.png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if got != "https://res.cloudinary.com/demo/x.png" {
		t.Errorf("unexpected URL %q", got)
	}

	if form.Get("file") != "https://origin/image.png" {
		t.Errorf("unexpected file param %q", form.Get("file"))
	}
	if form.Get("folder") != uploadFolder {
		t.Errorf("unexpected folder %q", form.Get("folder"))
	}
	if form.Get("transformation") != transformation {
		t.Errorf("unexpected transformation %q", form.Get("transformation"))
	}
	if form.Get("api_key") != "key123" {
		t.Errorf("unexpected api_key %q", form.Get("api_key"))
	}

	// Recompute the signature from the signed params and the secret.
	wantSig := sha1Hex("folder=" + uploadFolder +
		"&timestamp=" + form.Get("timestamp") +
		"&transformation=" + transformation +
		"topsecret")
	if form.Get("signature") != wantSig {
		t.Errorf("signature mismatch: got %q want %q", form.Get("signature"), wantSig)
	}
}

func TestUpload_DataURLPassesThroughUnchanged(t *testing.T) {
	const dataURL = "data:image/png;base64,aGVsbG8gd29ybGQ="

	var gotFile string
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		gotFile = r.PostForm.Get("file")
		return jsonResponse(http.StatusOK, `{"secure_url":"https://res.cloudinary.com/demo/y.png"}`), nil
	})

	got, err := c.Upload(context.Background(), dataURL)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if got != "https://res.cloudinary.com/demo/y.png" {
		t.Errorf("unexpected URL %q", got)
	}

	// Base64 payloads ride the same file parameter as remote URLs.
	if gotFile != dataURL {
		t.Errorf("data URL altered in transit: got %q", gotFile)
	}
}

func TestUpload_ErrorStatusSurfacesProviderMessage(t *testing.T) {
	c := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"error":{"message":"Invalid Signature"}}`), nil
	})

	_, err := c.Upload(context.Background(), "https://origin/image.png")
	if err == nil {
		t.Fatal("expected error")
	}

	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected a ProviderError, got %v", err)
	}
	if provErr.Provider != "cloudinary" || !strings.Contains(err.Error(), "Invalid Signature") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestUpload_MissingSecureURL(t *testing.T) {
	c := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	_, err := c.Upload(context.Background(), "https://origin/image.png")
	if err == nil || !strings.Contains(err.Error(), "secure_url") {
		t.Errorf("expected missing secure_url error, got %v", err)
	}
}

func TestSign_SortsParameters(t *testing.T) {
	c := &client{apiSecret: "s3cr3t"}

	got := c.sign(map[string]string{
		"timestamp": "1700000000",
		"folder":    "instructional-pages",
	})
	want := sha1Hex("folder=instructional-pages&timestamp=1700000000s3cr3t")

	if got != want {
		t.Errorf("sign mismatch: got %q want %q", got, want)
	}
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
