package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/hey-watchme/api-punchline/db"
	"github.com/hey-watchme/api-punchline/internal/model"
	"github.com/hey-watchme/api-punchline/internal/pipeline"
	"github.com/hey-watchme/api-punchline/internal/repository"
	"github.com/hey-watchme/api-punchline/internal/source"
	"github.com/hey-watchme/api-punchline/pkg/llm"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// One-shot extraction runner: resolves a historical transcript by device and
// date, runs the pipeline once, and prints the ranked punchlines.
func main() {
	deviceID := flag.String("device", "", "source device id")
	localDate := flag.String("date", "", "local date (YYYY-MM-DD)")
	localTime := flag.String("time", "", "optional local time (HH:MM:SS)")
	userID := flag.String("user", "", "optional user id to record against")
	flag.Parse()

	if *deviceID == "" || *localDate == "" {
		flag.Usage()
		os.Exit(2)
	}

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	provider, err := llm.New(providerConfig())
	if err != nil {
		log.Fatalf("error configuring LLM provider: %v", err)
	}

	extractionRepo := repository.NewExtractionRepository(db.DB)
	transcriptRepo := repository.NewTranscriptRepository(db.DB)
	resolver := source.NewResolver(transcriptRepo, slog.Default())
	orchestrator := pipeline.NewOrchestrator(provider, extractionRepo, slog.Default())

	record, err := resolver.Resolve(model.SourceLocator{
		DeviceID:  *deviceID,
		LocalDate: *localDate,
		LocalTime: *localTime,
	})
	if err != nil {
		log.Fatalf("error resolving transcript: %v", err)
	}

	req := &model.ExtractionRequest{
		RequestID:        uuid.NewString(),
		ConversationText: record.Text,
		UserID:           *userID,
		Context: map[string]any{
			"source":     "transcript_store",
			"device_id":  record.DeviceID,
			"local_date": record.LocalDate,
			"local_time": record.LocalTime,
		},
	}

	outcome, err := orchestrator.Run(context.Background(), req)
	if err != nil {
		log.Fatalf("error running extraction: %v", err)
	}

	slog.Info("extraction finished",
		"request_id", outcome.Request.RequestID,
		"candidates", outcome.Result.CandidateCount,
		"elapsed_ms", outcome.Result.ElapsedMS,
		"persisted", outcome.Result.Persisted,
	)

	output, err := json.MarshalIndent(outcome.Result.Punchlines, "", "  ")
	if err != nil {
		log.Fatalf("error encoding punchlines: %v", err)
	}
	fmt.Println(string(output))
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
