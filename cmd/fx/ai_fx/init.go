package ai_fx

import (
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/fx"
	"rolepeek/pkg/utils"
)

var Module = fx.Provide(
	ProvideTextGenerator,
	ProvideEmbeddingClient,
	ProvideJobPostingFetcher)

// ProvideTextGenerator creates the chat-completion client based on
// environment variables. OpenAI is the default; Gemini is the budget option.
func ProvideTextGenerator() (utils.TextGeneratorInterface, error) {
	provider := getEnvWithDefault("AI_PROVIDER", "openai")

	switch strings.ToLower(provider) {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			log.Fatal("OPENAI_API_KEY is required when using OpenAI provider")
		}
		return utils.NewOpenAIGenerator(apiKey, os.Getenv("OPENAI_MODEL"))
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			log.Fatal("GEMINI_API_KEY is required when using Gemini provider")
		}
		return utils.NewGeminiGenerator(apiKey, getEnvWithDefault("GEMINI_MODEL", "gemini-1.5-flash"))
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s. Use 'openai' or 'gemini'", provider)
	}
}

func ProvideEmbeddingClient() (utils.EmbeddingClientInterface, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY is required for sample search embeddings")
	}
	return utils.NewOpenAIEmbeddingClient(apiKey)
}

func ProvideJobPostingFetcher() utils.JobPostingFetcherInterface {
	return utils.NewHTTPJobPostingFetcher()
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
