package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/greg-randall/prmptr/internal/config"
	"github.com/greg-randall/prmptr/internal/constants"
	"github.com/greg-randall/prmptr/internal/ctxutil"
	"github.com/greg-randall/prmptr/internal/domain"
	prmptrerrors "github.com/greg-randall/prmptr/internal/errors"
)

// openAIProviderInfo contains OpenAI-specific metadata for error messages.
//
//nolint:gochecknoglobals // Constant-like structure
var openAIProviderInfo = ProviderInfo{
	Name:        "openai",
	InstallHint: "set OPENAI_API_KEY with a key from https://platform.openai.com/api-keys",
	ErrType:     prmptrerrors.ErrProviderRequest,
	EnvVar:      "OPENAI_API_KEY",
}

// maxErrorBodyBytes bounds how much of an error response body is read for
// diagnostics.
const maxErrorBodyBytes = 8 << 10

// chatMessage is one message in a chat-completions request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for the chat-completions endpoint.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatResponse is the subset of the chat-completions response we consume.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIGenerator resolves prompts against an OpenAI-compatible
// chat-completions endpoint. Each request sends the configured system
// prompt followed by the substituted fragment prompt and returns the first
// choice's content, trimmed.
type OpenAIGenerator struct {
	cfg    *config.GenerationConfig
	client *http.Client
	logger zerolog.Logger
	getenv func(string) string
}

// OpenAIOption is a functional option for configuring OpenAIGenerator.
type OpenAIOption func(*OpenAIGenerator)

// WithOpenAILogger sets the logger for the OpenAIGenerator.
func WithOpenAILogger(logger zerolog.Logger) OpenAIOption {
	return func(g *OpenAIGenerator) {
		g.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used for API calls. Tests use this to
// point the generator at a local server.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(g *OpenAIGenerator) {
		if client != nil {
			g.client = client
		}
	}
}

// WithEnvLookup replaces the environment lookup used to read the API key.
// Tests use this to inject keys without touching the process environment.
func WithEnvLookup(getenv func(string) string) OpenAIOption {
	return func(g *OpenAIGenerator) {
		if getenv != nil {
			g.getenv = getenv
		}
	}
}

// NewOpenAIGenerator creates a generator for an OpenAI-compatible API.
// The API key is read from the configured environment variable per request,
// never stored in configuration files.
func NewOpenAIGenerator(cfg *config.GenerationConfig, opts ...OpenAIOption) *OpenAIGenerator {
	g := &OpenAIGenerator{
		cfg:    cfg,
		client: &http.Client{},
		logger: zerolog.Nop(),
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends the request's prompt to the chat-completions endpoint and
// returns the completion. The per-request timeout is enforced with a
// context deadline; request timeout takes precedence over the configured
// one.
func (g *OpenAIGenerator) Generate(ctx context.Context, req *domain.GenRequest) (*domain.GenResult, error) {
	// Check cancellation at entry
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	apiKey, err := g.apiKey()
	if err != nil {
		return nil, err
	}

	timeout := resolveTimeout(req, g.cfg)
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model := resolveModel(req, g.cfg)
	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: resolveSystemPrompt(req, g.cfg)},
			{Role: "user", Content: req.Prompt},
		},
	}

	g.logger.Debug().
		Str("fragment", req.Fragment).
		Str("model", model).
		Dur("timeout", timeout).
		Msg("sending chat completion request")

	start := time.Now()
	resp, err := g.post(reqCtx, apiKey, body)
	if err != nil {
		// Surface deadline and cancellation as-is so callers can tell a
		// timeout from a provider rejection.
		if ctxErr := reqCtx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	content := strings.TrimSpace(g.firstChoice(resp))
	if content == "" {
		return nil, fmt.Errorf("%w: fragment %q", prmptrerrors.ErrEmptyCompletion, req.Fragment)
	}

	duration := time.Since(start)
	g.logger.Debug().
		Str("fragment", req.Fragment).
		Int("response_len", len(content)).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("chat completion received")

	respModel := resp.Model
	if respModel == "" {
		respModel = model
	}
	return &domain.GenResult{
		Output:     content,
		Model:      respModel,
		DurationMs: int(duration.Milliseconds()),
	}, nil
}

// apiKey reads the API key from the configured environment variable.
func (g *OpenAIGenerator) apiKey() (string, error) {
	envVar := openAIProviderInfo.EnvVar
	if g.cfg != nil {
		if v := g.cfg.ResolveAPIKeyEnvVar(); v != "" {
			envVar = v
		}
	}
	key := strings.TrimSpace(g.getenv(envVar))
	if key == "" {
		return "", fmt.Errorf("%w: %s - %s",
			prmptrerrors.ErrAPIKeyMissing, envVar, openAIProviderInfo.InstallHint)
	}
	return key, nil
}

// post performs one chat-completions HTTP round trip.
func (g *OpenAIGenerator) post(ctx context.Context, apiKey string, body chatRequest) (*chatResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", prmptrerrors.ErrProviderRequest, err)
	}

	url := g.baseURL() + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", prmptrerrors.ErrProviderRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, WrapProviderError(openAIProviderInfo, err, nil)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		return nil, g.apiError(httpResp)
	}

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", prmptrerrors.ErrProviderRequest, err)
	}
	if resp.Error != nil {
		return nil, WrapProviderError(openAIProviderInfo, prmptrerrors.ErrProviderRequest, []byte(resp.Error.Message))
	}
	return &resp, nil
}

// apiError turns a non-200 response into a provider error carrying the API
// error message when one is present.
func (g *OpenAIGenerator) apiError(httpResp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBodyBytes))

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err == nil && resp.Error != nil {
		detail := fmt.Sprintf("status %d: %s", httpResp.StatusCode, resp.Error.Message)
		return WrapProviderError(openAIProviderInfo, prmptrerrors.ErrProviderRequest, []byte(detail))
	}

	detail := fmt.Sprintf("status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(raw)))
	return WrapProviderError(openAIProviderInfo, prmptrerrors.ErrProviderRequest, []byte(detail))
}

// firstChoice extracts the first choice's message content, or empty when
// the response has no choices.
func (g *OpenAIGenerator) firstChoice(resp *chatResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

// baseURL returns the configured API root without a trailing slash.
func (g *OpenAIGenerator) baseURL() string {
	base := ""
	if g.cfg != nil {
		base = g.cfg.BaseURL
	}
	if base == "" {
		base = constants.DefaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

// Compile-time check that OpenAIGenerator implements Generator.
var _ Generator = (*OpenAIGenerator)(nil)
