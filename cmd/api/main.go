package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/hey-watchme/api-punchline/db"
	"github.com/hey-watchme/api-punchline/internal/handler"
	"github.com/hey-watchme/api-punchline/internal/pipeline"
	"github.com/hey-watchme/api-punchline/internal/repository"
	"github.com/hey-watchme/api-punchline/internal/source"
	"github.com/hey-watchme/api-punchline/pkg/llm"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	var cache handler.ResultCache
	if os.Getenv("REDIS_URL") != "" {
		if err := db.ConnectRedis(); err != nil {
			slog.Warn("redis unavailable, result cache disabled", "error", err)
		} else {
			cache = db.Cache{}
			defer db.CloseRedis()
		}
	}

	provider, err := llm.New(providerConfig())
	if err != nil {
		log.Fatalf("error configuring LLM provider: %v", err)
	}
	slog.Info("LLM provider configured", "model", provider.ModelName())

	extractionRepo := repository.NewExtractionRepository(db.DB)
	transcriptRepo := repository.NewTranscriptRepository(db.DB)

	orchestrator := pipeline.NewOrchestrator(provider, extractionRepo, slog.Default())
	resolver := source.NewResolver(transcriptRepo, slog.Default())

	extractHandler := handler.NewExtractHandler(orchestrator, resolver, extractionRepo, cache)
	historyHandler := handler.NewHistoryHandler(extractionRepo)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.POST("/extract", extractHandler.Extract)
	r.GET("/extract/:id", extractHandler.GetExtraction)
	r.GET("/history", historyHandler.GetHistory)
	r.GET("/health", historyHandler.GetHealth)

	err = r.Run(":8080")
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func providerConfig() llm.Config {
	cfg := llm.Config{
		Provider:        os.Getenv("LLM_PROVIDER"),
		Model:           os.Getenv("LLM_MODEL"),
		ReasoningEffort: llm.Effort(os.Getenv("LLM_REASONING_EFFORT")),
	}

	if cfg.Provider == "" {
		cfg.Provider = llm.ProviderOpenAI
	}

	switch cfg.Provider {
	case llm.ProviderOpenAI:
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	case llm.ProviderGroq:
		cfg.APIKey = os.Getenv("GROQ_API_KEY")
	case llm.ProviderAnthropic:
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if tokens, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxTokens = tokens
		} else {
			slog.Warn("invalid LLM_MAX_TOKENS, using default", "value", v)
		}
	}

	return cfg
}
