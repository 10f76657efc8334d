package analyze

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-aula/internal/apierr"
)

// Gemini endpoint defaults.
const (
	// DefaultGeminiBaseURL is Gemini's OpenAI-compatible API root.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

	// DefaultGeminiModel is used when none is configured.
	DefaultGeminiModel = "gemini-2.5-flash"

	// temperature is kept low for consistent extraction.
	temperature = 0.1
)

// Completer sends one system+user exchange and returns the reply.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (Completion, error)
}

// Completion is a model reply with its token accounting.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	ReasoningTokens  int
	TotalTokens      int
}

// chatCompleter is the subset of *openai.Client used here.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Completer     = (*GeminiClient)(nil)
	_ chatCompleter = (*openai.Client)(nil)
)

// GeminiSettings selects the endpoint, model and thinking policy.
type GeminiSettings struct {
	APIKey         string
	BaseURL        string
	Model          string
	Thinking       bool
	ThinkingBudget int // -1 lets the model decide.
	Timeout        time.Duration
}

// GeminiClient asks Gemini for schema-constrained JSON through its
// OpenAI-compatible chat endpoint.
type GeminiClient struct {
	client chatCompleter
	model  string
	effort string
}

// NewGeminiClient builds a client backed by go-openai.
func NewGeminiClient(s GeminiSettings) *GeminiClient {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	cfg := openai.DefaultConfig(s.APIKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: s.Timeout}
	return newGeminiClient(openai.NewClientWithConfig(cfg), s)
}

func newGeminiClient(client chatCompleter, s GeminiSettings) *GeminiClient {
	model := s.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		client: client,
		model:  model,
		effort: reasoningEffort(s.Thinking, s.ThinkingBudget),
	}
}

// Model returns the configured model name.
func (g *GeminiClient) Model() string { return g.model }

// reasoningEffort maps a thinking budget onto the compatibility layer's
// reasoning_effort values. "" leaves the model's dynamic default.
func reasoningEffort(enabled bool, budget int) string {
	switch {
	case !enabled || budget == 0:
		return "none"
	case budget < 0:
		return ""
	case budget <= 1024:
		return "low"
	case budget <= 8192:
		return "medium"
	default:
		return "high"
	}
}

// Complete requests a reply constrained to Schema.
func (g *GeminiClient) Complete(ctx context.Context, system, prompt string) (Completion, error) {
	schema := Schema
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "analise_aula",
				Schema: &schema,
			},
		},
		ReasoningEffort: g.effort,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, ErrEmptyPayload
	}

	c := Completion{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if d := resp.Usage.CompletionTokensDetails; d != nil {
		c.ReasoningTokens = d.ReasoningTokens
	}
	return c, nil
}

// classifyError maps go-openai errors to apierr sentinels. Gemini answers
// an invalid key with 400, so the message is checked before the status.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		switch {
		case strings.Contains(msg, "API key") || strings.Contains(msg, "API_KEY"):
			return fmt.Errorf("%s: %w", msg, apierr.ErrAuthFailed)
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			if strings.Contains(msg, "quota") || strings.Contains(msg, "billing") {
				return fmt.Errorf("%s: %w", msg, apierr.ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", msg, apierr.ErrRateLimit)
		case apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden:
			return fmt.Errorf("%s: %w", msg, apierr.ErrAuthFailed)
		case apiErr.HTTPStatusCode == http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", msg, apierr.ErrTimeout)
		case apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("%s: %w", msg, apierr.ErrServer)
		case apiErr.HTTPStatusCode >= 400:
			return fmt.Errorf("%s: %w", msg, apierr.ErrBadRequest)
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode >= 500 {
		return fmt.Errorf("HTTP %d: %w", reqErr.HTTPStatusCode, apierr.ErrServer)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("analysis request timed out: %w", apierr.ErrTimeout)
	}
	return err
}
