package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/manash/imgstudio/internal/provider"
	"github.com/manash/imgstudio/pkg/models"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 120 * time.Second

	suggestModel = "gemini-2.0-flash"
)

type apiRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type apiResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Client talks to the Gemini generative-image API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	verbose    bool
}

func New(cfg *provider.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, provider.ErrAPIKeyRequired
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := defaultTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		verbose:    cfg.Verbose,
	}, nil
}

func (c *Client) CreateImage(ctx context.Context, prompt string, opts models.Options, source []byte) (*provider.ImageResult, error) {
	if prompt == "" {
		return nil, models.ErrEmptyPrompt
	}

	parts := []part{{Text: buildPrompt(prompt, opts)}}
	if len(source) > 0 {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: "image/png",
			Data:     base64.StdEncoding.EncodeToString(source),
		}})
	}

	req := &apiRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: opts.NativeForCall().String()},
		},
	}

	result, err := c.generate(ctx, opts.Model, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrGenerationFailed, err)
	}
	return result, nil
}

func (c *Client) EditImage(ctx context.Context, source []byte, instruction string, opts models.Options) (*provider.ImageResult, error) {
	if instruction == "" {
		return nil, models.ErrEmptyInstruction
	}
	if len(source) == 0 {
		return nil, models.ErrNoImageData
	}

	req := &apiRequest{
		Contents: []content{{Parts: []part{
			{Text: instruction},
			{InlineData: &inlineData{
				MimeType: "image/png",
				Data:     base64.StdEncoding.EncodeToString(source),
			}},
		}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}

	result, err := c.generate(ctx, opts.Model, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrEditFailed, err)
	}
	return result, nil
}

// SuggestVariants is best-effort: remote failures yield an empty slice.
func (c *Client) SuggestVariants(ctx context.Context, prompt string) ([]string, error) {
	req := &apiRequest{
		Contents: []content{{Parts: []part{{
			Text: "Rewrite the following image prompt three different ways, one per line, " +
				"keeping the subject but varying style and mood. Respond with only the three lines.\n\n" + prompt,
		}}}},
	}

	resp, err := c.call(ctx, suggestModel, req)
	if err != nil {
		return nil, nil
	}

	var variants []string
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			for _, line := range strings.Split(p.Text, "\n") {
				line = strings.TrimSpace(line)
				if line != "" {
					variants = append(variants, line)
				}
			}
		}
	}
	return variants, nil
}

// generate runs an image-producing call and extracts the inline payload,
// treating a text-only answer as a content refusal.
func (c *Client) generate(ctx context.Context, model string, req *apiRequest) (*provider.ImageResult, error) {
	resp, err := c.call(ctx, model, req)
	if err != nil {
		return nil, err
	}

	var refusalText string
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				decoded, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("failed to decode image payload: %w", err)
				}
				mime := p.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				return &provider.ImageResult{Bytes: decoded, MimeType: mime}, nil
			}
			if p.Text != "" {
				refusalText = p.Text
			}
		}
	}

	return nil, &provider.APIError{
		Kind:    provider.KindContentRefusal,
		Message: firstLine(refusalText),
	}
}

func (c *Client) call(ctx context.Context, model string, req *apiRequest) (*apiResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	c.logRequest(http.MethodPost, url, httpReq.Header, jsonData)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &provider.APIError{Kind: provider.KindTimeout, Message: "request timed out"}
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logResponse(resp.StatusCode, body)

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if apiResp.Error != nil {
			msg = apiResp.Error.Message
		}
		return nil, &provider.APIError{
			Kind:    classifyStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: msg,
		}
	}

	return &apiResp, nil
}

func classifyStatus(status int) provider.ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return provider.KindAuth
	case http.StatusTooManyRequests:
		return provider.KindQuota
	case http.StatusGatewayTimeout:
		return provider.KindTimeout
	default:
		return provider.KindTransient
	}
}

func buildPrompt(prompt string, opts models.Options) string {
	if opts.Style != "" {
		return fmt.Sprintf("%s. Aesthetic style: %s.", prompt, opts.Style)
	}
	return prompt
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (c *Client) logRequest(method, url string, headers http.Header, body []byte) {
	if !c.verbose {
		return
	}

	fmt.Fprintln(os.Stderr, "--- REQUEST ---")
	fmt.Fprintf(os.Stderr, "%s %s\n", method, url)
	fmt.Fprintln(os.Stderr, "Headers:")
	for key, values := range headers {
		for _, value := range values {
			if strings.ToLower(key) == "x-goog-api-key" {
				value = "[REDACTED]"
			}
			fmt.Fprintf(os.Stderr, "  %s: %s\n", key, value)
		}
	}
	if len(body) > 0 {
		fmt.Fprintln(os.Stderr, "Body:")
		fmt.Fprintf(os.Stderr, "  %s\n", truncateInlineData(body))
	}
	fmt.Fprintln(os.Stderr, "---------------")
}

func (c *Client) logResponse(statusCode int, body []byte) {
	if !c.verbose {
		return
	}

	fmt.Fprintln(os.Stderr, "--- RESPONSE ---")
	fmt.Fprintf(os.Stderr, "Status: %d\n", statusCode)
	if len(body) > 0 {
		fmt.Fprintln(os.Stderr, "Body:")
		fmt.Fprintf(os.Stderr, "  %s\n", truncateInlineData(body))
	}
	fmt.Fprintln(os.Stderr, "----------------")
}

// truncateInlineData shortens base64 payloads in a JSON body so verbose
// logs stay readable.
func truncateInlineData(body []byte) string {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}

	truncateDataFields(data)

	result, err := json.Marshal(data)
	if err != nil {
		return string(body)
	}
	return string(result)
}

func truncateDataFields(data map[string]interface{}) {
	for key, value := range data {
		switch v := value.(type) {
		case string:
			if key == "data" && len(v) > 100 {
				data[key] = v[:100] + "... [truncated]"
			}
		case map[string]interface{}:
			truncateDataFields(v)
		case []interface{}:
			for _, item := range v {
				if m, ok := item.(map[string]interface{}); ok {
					truncateDataFields(m)
				}
			}
		}
	}
}
