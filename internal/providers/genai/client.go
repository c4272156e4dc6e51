// Package genai calls the Gemini generateContent API to synthesize house
// specifications and exterior renderings. When no API key is configured
// both operations degrade deterministically: spec generation returns a
// fixed fallback spec and image generation reports the feature as
// unavailable, which keeps the whole pipeline runnable offline.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"drafted/internal/domain"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	defaultTextModel  = "gemini-2.5-flash"
	defaultImageModel = "gemini-3-pro-image-preview"
	defaultTimeout    = 60 * time.Second

	maxErrorBodyBytes = 4000

	specVersion = "1.0"
)

// ProviderHTTPError is the only provider failure type that crosses the
// package boundary; the pipeline classifies it by HTTP status.
type ProviderHTTPError struct {
	Status int
	Body   string
}

func (e *ProviderHTTPError) Error() string {
	return fmt.Sprintf("gemini status %d", e.Status)
}

// Options controls how the generation client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client is a thin facade over the Gemini HTTP API.
type Client struct {
	apiKey     string
	baseURL    string
	textModel  string
	imageModel string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient constructs a client with sane defaults. An empty API key is
// valid and switches the client into deterministic fallback mode.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	textModel := opts.TextModel
	if textModel == "" {
		textModel = defaultTextModel
	}
	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = defaultImageModel
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Configured reports whether a provider credential is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// SpecRequest holds the inputs for house spec synthesis.
type SpecRequest struct {
	Prompt    string
	Bedrooms  int
	Bathrooms int
	Style     string
}

// ImageRequest holds the inputs for exterior rendering.
type ImageRequest struct {
	Prompt string
	Style  string
}

// ImageResult is a generated exterior rendering.
type ImageResult struct {
	Data     []byte
	MimeType string
	Meta     domain.ProviderCallMeta
}

// GenerateHouseSpec produces a normalized HouseSpec from the prompt. The
// provider is asked for JSON-schema-constrained output; whatever comes
// back is parsed into typed structs and normalized so the validation gate
// downstream always sees well-formed rooms.
func (c *Client) GenerateHouseSpec(ctx context.Context, req SpecRequest) (*domain.HouseSpec, domain.ProviderCallMeta, error) {
	if !c.Configured() {
		c.logger.Debug().Str("style", req.Style).Msg("genai: no api key, using deterministic fallback spec")
		return fallbackSpec(req), domain.ProviderCallMeta{
			Provider:  "fallback",
			Model:     "deterministic-spec",
			RequestID: "fallback-" + uuid.NewString(),
		}, nil
	}

	payload := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{
				Text: "You are an architecture drafting assistant. Return only JSON matching the schema. " +
					"Use realistic room areas in ft^2 and stable room IDs.",
			}}},
			{Role: "user", Parts: []part{{
				Text: fmt.Sprintf("User prompt: %s\nConstraints: bedrooms=%d, bathrooms=%d, style=%s\n"+
					"Include living, kitchen, dining and requested bedrooms/bathrooms.",
					req.Prompt, req.Bedrooms, req.Bathrooms, req.Style),
			}}},
		},
		GenerationConfig: &generationConfig{
			Temperature:        0.2,
			ResponseMimeType:   "application/json",
			ResponseJSONSchema: houseSpecSchema(),
		},
	}

	resp, meta, err := c.generateContent(ctx, c.textModel, payload)
	if err != nil {
		return nil, meta, err
	}
	text := resp.firstText()
	if text == "" {
		return nil, meta, domain.ValidationError("missing_spec_json")
	}
	var raw specPayload
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, meta, domain.ValidationError("invalid_spec_json")
	}
	return normalizeSpec(raw, req), meta, nil
}

// GenerateExteriorImage requests a photorealistic exterior rendering. It
// returns nil without error when no credential is configured or when the
// provider responds without image data; both mean "feature unavailable",
// not failure.
func (c *Client) GenerateExteriorImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	if !c.Configured() {
		return nil, nil
	}

	payload := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{
				Text: "Generate a photorealistic exterior rendering for a single-family home. " +
					fmt.Sprintf("Style: %s. Brief: %s. ", req.Style, req.Prompt) +
					"No text overlay, no watermark, daylight, 3/4 front view.",
			}}},
		},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: "16:9", ImageSize: "1K"},
		},
	}

	resp, meta, err := c.generateContent(ctx, c.imageModel, payload)
	if err != nil {
		return nil, err
	}
	inline := resp.firstInlineImage()
	if inline == nil {
		c.logger.Debug().Str("model", c.imageModel).Msg("genai: response carried no image data")
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return nil, fmt.Errorf("decode inline image: %w", err)
	}
	mimeType := inline.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return &ImageResult{Data: data, MimeType: mimeType, Meta: meta}, nil
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (*generateContentResponse, domain.ProviderCallMeta, error) {
	meta := domain.ProviderCallMeta{Provider: "gemini", Model: model}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, meta, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, meta, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, meta, fmt.Errorf("invoke gemini: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	meta.LatencyMS = time.Since(started).Milliseconds()
	meta.RequestID = resp.Header.Get("X-Goog-Request-Id")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, meta, &ProviderHTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var out generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, meta, fmt.Errorf("decode gemini response: %w", err)
	}
	if u := out.UsageMetadata; u != nil {
		meta.InputTokens = u.PromptTokenCount
		meta.OutputTokens = u.CandidatesTokenCount
		meta.TotalTokens = u.TotalTokenCount
		meta.ImageTokens = u.ImageTokenCount
	}
	return &out, meta, nil
}
