package llm

import (
	"fmt"
	"strings"

	"health-bot/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderYandex = "yandex"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	OpenaiAPIKey      string
	OpenaiBaseURL     string
	OpenaiVisionModel string
	YandexOAuthToken  string
	YandexFolderID    string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenaiAPIKey:      cfg.OpenAIAPIKey,
		OpenaiBaseURL:     cfg.OpenAIBaseURL,
		OpenaiVisionModel: cfg.OpenAIVisionModel,
		YandexOAuthToken:  cfg.YandexOAuthToken,
		YandexFolderID:    cfg.YandexFolderID,
	}
}

func (f *Factory) CreateClient(provider, model string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, model, f.OpenaiVisionModel), nil
	case ProviderYandex:
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
