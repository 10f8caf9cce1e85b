package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
)

type EmbeddingClientInterface interface {
	GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
}

type OpenAIEmbeddingClient struct {
	client *openai.Client
}

func NewOpenAIEmbeddingClient(apiKey string) (EmbeddingClientInterface, error) {
	if apiKey == "" {
		return nil, errors.New("missing OpenAI api key")
	}
	return &OpenAIEmbeddingClient{client: openai.NewClient(apiKey)}, nil
}

func (o *OpenAIEmbeddingClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.SmallEmbedding3,
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(resp.Data) == 0 {
		return pgvector.Vector{}, ErrUnexpectedAIOutput
	}

	return pgvector.NewVector(resp.Data[0].Embedding), nil
}
