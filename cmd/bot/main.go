package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"health-bot/internal/config"
	"health-bot/internal/dedup"
	"health-bot/internal/history"
	"health-bot/internal/line"
	"health-bot/internal/llm"
	"health-bot/internal/orchestrator"
	"health-bot/internal/record"
	"health-bot/internal/report"
	"health-bot/internal/scheduler"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	store, err := record.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to init record store: %v", err)
	}

	seen, err := dedup.New(cfg.DedupCapacity)
	if err != nil {
		log.Fatalf("failed to init dedup set: %v", err)
	}

	platform := line.NewClient(cfg.PlatformAPIBase, cfg.ChannelAccessToken)

	factory := llm.NewFactory(cfg)
	defaultLLM, err := factory.CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	var altLLM llm.Client
	if cfg.YandexOAuthToken != "" {
		altLLM, err = factory.CreateClient(llm.ProviderYandex, "")
		if err != nil {
			log.Printf("alternate backend unavailable: %v", err)
		}
	}

	// Vision always goes through OpenAI regardless of the default provider.
	vision := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAIVisionModel)

	systemPrompt := readSystemPrompt(cfg.SystemPromptPath)

	orch := orchestrator.New(orchestrator.Options{
		Platform:     platform,
		Records:      store,
		History:      history.NewManager(cfg.HistoryWindow),
		DefaultLLM:   defaultLLM,
		AltLLM:       altLLM,
		Vision:       vision,
		SystemPrompt: systemPrompt,
		ClinicPhone:  cfg.ClinicPhone,
		Triggers:     cfg.TriggerPhrases,
		ChartDir:     cfg.ChartDir,
		ChartBaseURL: cfg.ChartBaseURL,
		AITimeout:    time.Duration(cfg.AITimeoutSeconds) * time.Second,
	})

	sched := scheduler.New()
	sched.SetReportFunction(func(ctx context.Context) error {
		records, err := store.LoadAll()
		if err != nil {
			return err
		}
		log.Printf("daily summary: %s", report.Format(report.Build(records, time.Now().UTC())))
		return nil
	})
	if err := sched.Start(); err != nil {
		log.Printf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	mux := http.NewServeMux()
	mux.Handle("/callback", line.NewWebhookHandler(cfg.ChannelSecret, seen, orch))
	mux.Handle("/charts/", http.StripPrefix("/charts/", http.FileServer(http.Dir(cfg.ChartDir))))

	log.Printf("listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func readSystemPrompt(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("system prompt file not found or unreadable at %s: %v", path, err)
		return ""
	}
	return string(data)
}
