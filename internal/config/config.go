package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	// Messaging platform
	ChannelSecret      string `env:"CHANNEL_SECRET,required"`
	ChannelAccessToken string `env:"CHANNEL_ACCESS_TOKEN,required"`
	PlatformAPIBase    string `env:"PLATFORM_API_BASE" envDefault:"https://api.line.me"`

	// LLM settings
	LLMProvider       LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey      string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string      `env:"OPENAI_BASE_URL"`
	OpenAIModel       string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIVisionModel string      `env:"OPENAI_VISION_MODEL" envDefault:"gpt-4o"`
	YandexOAuthToken  string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID    string      `env:"YANDEX_FOLDER_ID"`
	AITimeoutSeconds  int         `env:"AI_TIMEOUT_SECONDS" envDefault:"30"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`

	// Routing override
	ClinicPhone    string   `env:"CLINIC_PHONE" envDefault:"0123-456-789"`
	TriggerPhrases []string `env:"TRIGGER_PHRASES" envSeparator:":"`

	// Storage
	DataDir      string `env:"DATA_DIR" envDefault:"data/records"`
	ChartDir     string `env:"CHART_DIR" envDefault:"data/charts"`
	ChartBaseURL string `env:"CHART_BASE_URL" envDefault:"http://localhost:8080/charts"`

	// Dedup
	DedupCapacity int `env:"DEDUP_CAPACITY" envDefault:"4096"`

	// HTTP
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// History context window (turns kept in the AI request)
	HistoryWindow int `env:"HISTORY_WINDOW" envDefault:"20"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
