package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	modelName string
	maxTokens int64
}

func NewAnthropicClient(apiKey, model string, maxTokens int64) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{
		client:    &client,
		model:     anthropic.Model(model),
		modelName: "anthropic/" + model,
		maxTokens: maxTokens,
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", wrapAnthropicErr(ctx, err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("%w: no content from anthropic", ErrMalformed)
	}

	return resp.Content[0].Text, nil
}

func (c *AnthropicClient) ModelName() string {
	return c.modelName
}

func wrapAnthropicErr(ctx context.Context, err error) error {
	if wrapped, ok := classifyContext(ctx, err); ok {
		return wrapped
	}

	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return classifyStatus(apierr.StatusCode, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
