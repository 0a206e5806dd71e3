package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"

	"github.com/harshshukla07/SwiftCV/internal/config"
)

// Upstream failure classes. Handlers map these to distinct HTTP statuses;
// only ErrUnavailable is retried.
var (
	ErrQuotaExceeded = errors.New("ai quota exceeded")
	ErrAuthFailed    = errors.New("ai authentication failed")
	ErrUnavailable   = errors.New("ai service unavailable")
)

// Client wraps an OpenAI-compatible chat completions endpoint. The original
// deployment points it at Gemini's OpenAI compatibility layer, but any
// conforming endpoint works.
type Client struct {
	api    *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient builds a Client from config. The model identifier may be empty;
// callers must check Enabled before generating.
func NewClient(cfg config.AIConfig, logger *slog.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:    openai.NewClientWithConfig(apiCfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Enabled reports whether an external model identifier is configured.
func (c *Client) Enabled() bool {
	return c.model != ""
}

// Generate performs one chat completion with the given system and user
// messages and returns the raw reply text. Transient upstream failures are
// retried a bounded number of times with jittered exponential backoff;
// quota and authentication failures are surfaced immediately.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Enabled() {
		return "", errors.New("ai model is not configured")
	}

	backoff := retry.WithJitter(250*time.Millisecond,
		retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond)))

	var content string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
		})
		if err != nil {
			classified := classifyError(err)
			if errors.Is(classified, ErrUnavailable) {
				return retry.RetryableError(classified)
			}
			return classified
		}

		if len(resp.Choices) == 0 {
			return retry.RetryableError(fmt.Errorf("%w: empty completion", ErrUnavailable))
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("ai completion finished", slog.String("model", c.model), slog.Int("reply_chars", len(content)))
	return content, nil
}

// classifyError folds an upstream error into one of the failure classes.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return fmt.Errorf("%w: %v", ErrAuthFailed, err)
		case 402, 429:
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "billing"):
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	case strings.Contains(msg, "401") || strings.Contains(msg, "authentication"):
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// CleanResponse strips an optional markdown code fence wrapper (```json or
// ```) from a model reply so the JSON inside can be parsed.
func CleanResponse(response string) string {
	if !strings.Contains(response, "```") {
		return strings.TrimSpace(response)
	}

	var start int
	if i := strings.Index(response, "```json"); i >= 0 {
		start = i + len("```json")
	} else {
		start = strings.Index(response, "```") + len("```")
	}

	end := strings.LastIndex(response, "```")
	if end > start {
		return strings.TrimSpace(response[start:end])
	}
	return strings.TrimSpace(response)
}
