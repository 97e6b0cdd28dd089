package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type OpenAIClient struct {
	client    *openai.Client
	model     openai.ChatModel
	modelName string
	maxTokens int64
}

func NewOpenAIClient(apiKey, model string, maxTokens int64) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		client:    &client,
		model:     openai.ChatModel(model),
		modelName: "openai/" + model,
		maxTokens: maxTokens,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               c.model,
		MaxCompletionTokens: openai.Int(c.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", wrapOpenAIErr(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices from openai", ErrMalformed)
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) ModelName() string {
	return c.modelName
}

// GroqClient talks to Groq's OpenAI-compatible endpoint through the same SDK.
// The reasoning-effort parameter is only forwarded for Groq's reasoning
// models (the "openai/" prefixed ones); other models reject it.
type GroqClient struct {
	client    *openai.Client
	model     openai.ChatModel
	modelName string
	maxTokens int64
	effort    Effort
	reasoning bool
}

const groqBaseURL = "https://api.groq.com/openai/v1"

func NewGroqClient(apiKey, model string, maxTokens int64, effort Effort) *GroqClient {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(groqBaseURL),
	)
	return &GroqClient{
		client:    &client,
		model:     openai.ChatModel(model),
		modelName: "groq/" + model,
		maxTokens: maxTokens,
		effort:    effort,
		reasoning: len(model) > 7 && model[:7] == "openai/",
	}
}

func (c *GroqClient) Generate(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:               c.model,
		MaxCompletionTokens: openai.Int(c.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}

	if c.reasoning && c.effort != EffortNone {
		params.ReasoningEffort = shared.ReasoningEffort(c.effort)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrapOpenAIErr(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices from groq", ErrMalformed)
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *GroqClient) ModelName() string {
	return c.modelName
}

func wrapOpenAIErr(ctx context.Context, err error) error {
	if wrapped, ok := classifyContext(ctx, err); ok {
		return wrapped
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return classifyStatus(apierr.StatusCode, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
