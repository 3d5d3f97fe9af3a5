package llm

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-notes/config"
)

// Completer sends a single user prompt to a chat model and returns the
// reply text unmodified.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

var ErrEmptyResponse = errors.New("model returned no content")

type client struct {
	api         *openai.Client
	model       string
	temperature float32
	logger      *logrus.Logger
}

// NewClient builds a chat client for an OpenAI-compatible endpoint. It is
// safe for concurrent use and meant to be shared for the process lifetime.
func NewClient(cfg config.LLMConfig, logger *logrus.Logger) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("model API key is empty")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

func (c *client) Model() string { return c.model }

func (c *client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	c.logger.WithContext(ctx).WithFields(logrus.Fields{
		"model":             c.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debug("Chat completion finished")

	return resp.Choices[0].Message.Content, nil
}
