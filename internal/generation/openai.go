package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
)

const (
	defaultModel        = "gpt-4o-mini"
	defaultTemperature  = 0.7
	defaultMaxTokens    = 1500
	defaultHistoryTurns = 6
	defaultTimeout      = 45 * time.Second
)

// OpenAIConfig configures an OpenAI-compatible chat completion client.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
	HistoryTurns int
	Retry        *RetryConfig
}

// OpenAIGenerator implements Generator against the chat completions API.
type OpenAIGenerator struct {
	client       *openai.Client
	model        string
	temperature  float32
	maxTokens    int
	historyTurns int
	retry        RetryConfig
	logger       *observability.Logger
}

// NewOpenAIGenerator creates a generator. It fails with ErrNoCredentials
// when no API key is set.
func NewOpenAIGenerator(cfg OpenAIConfig, logger *observability.Logger) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoCredentials
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	g := &OpenAIGenerator{
		client:       openai.NewClientWithConfig(clientConfig),
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		historyTurns: cfg.HistoryTurns,
		retry:        DefaultRetryConfig(),
		logger:       logger.WithOperation("generation"),
	}
	if g.model == "" {
		g.model = defaultModel
	}
	if g.temperature <= 0 {
		g.temperature = defaultTemperature
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	if g.historyTurns <= 0 {
		g.historyTurns = defaultHistoryTurns
	}
	if cfg.Retry != nil {
		g.retry = *cfg.Retry
	}
	return g, nil
}

// Model returns the configured model name.
func (g *OpenAIGenerator) Model() string {
	return g.model
}

// Generate sends one chat completion request and returns the reply text.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()

	var resp openai.ChatCompletionResponse
	err := retryWithBackoff(ctx, g.retry, func() error {
		var callErr error
		resp, callErr = g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       g.model,
			Messages:    BuildMessages(req, g.historyTurns),
			MaxTokens:   g.maxTokens,
			Temperature: g.temperature,
		})
		return callErr
	})
	if err != nil {
		g.logger.WithContext(ctx).Warn().
			Err(err).
			Str("model", g.model).
			Dur("elapsed", time.Since(start)).
			Msg("Chat completion failed")
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}

	g.logger.WithContext(ctx).Debug().
		Str("model", g.model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Msg("Chat completion finished")

	return content, nil
}

// BuildMessages lays out the system directive, the grounding context, the
// trimmed history and the user message in that order.
func BuildMessages(req Request, historyTurns int) []openai.ChatCompletionMessage {
	history := TrimHistory(req.History, historyTurns)
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+3)

	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	if req.Context != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.Context})
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Message})

	return msgs
}
