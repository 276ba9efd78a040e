package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"codeberg.org/maclinea/ledgerlingo/internal/batch"
)

// RemoteServiceError is returned when the endpoint answers with a
// non-success status
type RemoteServiceError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("remote service error: %d - %s", e.StatusCode, e.Body)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// Translator translates batches of ledger strings
type Translator struct {
	config  Config
	client  *openai.Client
	breaker *gobreaker.CircuitBreaker
}

// NewTranslator validates cfg and creates a translator for its endpoint
func NewTranslator(cfg Config) (*Translator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Translator{
		config: cfg,
		client: NewClient(cfg),
	}

	if cfg.MaxConsecutiveFailures > 0 {
		limit := cfg.MaxConsecutiveFailures
		t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "translate-batch",
			MaxRequests: 1,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= limit
			},
		})
	}

	return t, nil
}

// NewClient creates an OpenAI client for the configured endpoint. Requests
// carry the attribution headers OpenRouter expects.
func NewClient(cfg Config) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			referer: cfg.Referer,
			title:   cfg.Title,
		},
	}
	return openai.NewClientWithConfig(clientConfig)
}

type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (h *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if h.referer != "" {
		req.Header.Set("HTTP-Referer", h.referer)
	}
	if h.title != "" {
		req.Header.Set("X-Title", h.title)
	}
	return h.base.RoundTrip(req)
}

// Model returns the model identifier sent with every request
func (t *Translator) Model() string {
	return t.config.Model
}

// TranslateBatch sends all items in a single request and returns the
// translations keyed by item id. Items missing from the reply are simply
// absent from the result.
func (t *Translator) TranslateBatch(ctx context.Context, items []batch.Item) (map[int]string, error) {
	if len(items) == 0 {
		return map[int]string{}, nil
	}

	if t.breaker == nil {
		return t.translate(ctx, items)
	}

	result, err := t.breaker.Execute(func() (interface{}, error) {
		return t.translate(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	return result.(map[int]string), nil
}

func (t *Translator) translate(ctx context.Context, items []batch.Item) (map[int]string, error) {
	req := openai.ChatCompletionRequest{
		Model: t.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildUserPrompt(items),
			},
		},
		MaxTokens:   t.config.MaxTokens,
		Temperature: t.config.Temperature,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return map[int]string{}, nil
	}

	return ParseResponse(resp.Choices[0].Message.Content), nil
}

// classifyError turns the client's status errors into RemoteServiceError
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &RemoteServiceError{
			StatusCode: apiErr.HTTPStatusCode,
			Body:       apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &RemoteServiceError{
			StatusCode: reqErr.HTTPStatusCode,
			Body:       strings.TrimSpace(string(reqErr.Body)),
			Err:        err,
		}
	}

	return fmt.Errorf("chat completion request failed: %w", err)
}
