package utils

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// TextGeneratorInterface is the contract against the LLM collaborator:
// prompt in, raw text out. Validation of the output happens in the services.
type TextGeneratorInterface interface {
	GenerateText(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, model string) (TextGeneratorInterface, error) {
	if apiKey == "" {
		return nil, errors.New("missing OpenAI api key")
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (o *OpenAIGenerator) GenerateText(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrUnexpectedAIOutput
	}

	return resp.Choices[0].Message.Content, nil
}
