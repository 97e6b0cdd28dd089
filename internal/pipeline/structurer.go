package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hey-watchme/api-punchline/internal/model"
	"github.com/hey-watchme/api-punchline/pkg/llm"
)

// maxTranscriptRunes bounds the transcript fed into the structuring prompt.
// Longer input is cut at the last newline before the limit; punchline ranking
// needs the whole conversation in one context, so chunking is not attempted.
const maxTranscriptRunes = 24000

type Structurer struct {
	provider llm.Provider
	logger   *slog.Logger
}

func NewStructurer(provider llm.Provider, logger *slog.Logger) *Structurer {
	return &Structurer{provider: provider, logger: logger}
}

func (s *Structurer) Structure(ctx context.Context, transcript string) (*model.StructuredConversation, error) {
	text, truncated := truncateTranscript(transcript)
	if truncated {
		s.logger.Warn("transcript truncated before structuring",
			"original_runes", len([]rune(transcript)),
			"kept_runes", len([]rune(text)),
		)
	}

	raw, err := s.provider.Generate(ctx, fmt.Sprintf(structurePrompt, text))
	if err != nil {
		return nil, fmt.Errorf("structure call: %w", err)
	}

	conv, err := decodeConversation(raw)
	if err != nil {
		s.logger.Error("failed to validate structured conversation", "error", err)
		return nil, err
	}

	return conv, nil
}

func decodeConversation(raw string) (*model.StructuredConversation, error) {
	payload, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, &SchemaError{Field: "payload", Reason: err.Error()}
	}

	var parsed struct {
		Turns []struct {
			Speaker *string `json:"speaker"`
			Text    *string `json:"text"`
		} `json:"turns"`
		Speakers   []string   `json:"speakers"`
		TotalTurns llm.Number `json:"total_turns"`
		Summary    string     `json:"summary"`
	}

	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, &SchemaError{Field: "payload", Reason: err.Error()}
	}

	if len(parsed.Turns) == 0 {
		return nil, &SchemaError{Field: "turns", Reason: "missing or empty"}
	}

	turns := make([]model.Turn, 0, len(parsed.Turns))
	for i, t := range parsed.Turns {
		if t.Speaker == nil || *t.Speaker == "" {
			return nil, &SchemaError{Field: fmt.Sprintf("turns[%d].speaker", i), Reason: "missing"}
		}
		if t.Text == nil || *t.Text == "" {
			return nil, &SchemaError{Field: fmt.Sprintf("turns[%d].text", i), Reason: "missing"}
		}
		turns = append(turns, model.Turn{Speaker: *t.Speaker, Text: *t.Text})
	}

	speakers := parsed.Speakers
	if len(speakers) == 0 {
		speakers = speakersFromTurns(turns)
	}

	return &model.StructuredConversation{
		Turns:     turns,
		Speakers:  speakers,
		TurnCount: len(turns),
		Summary:   parsed.Summary,
	}, nil
}

func speakersFromTurns(turns []model.Turn) []string {
	seen := make(map[string]bool)
	var speakers []string
	for _, t := range turns {
		if !seen[t.Speaker] {
			seen[t.Speaker] = true
			speakers = append(speakers, t.Speaker)
		}
	}
	return speakers
}

func truncateTranscript(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= maxTranscriptRunes {
		return text, false
	}

	cut := string(runes[:maxTranscriptRunes])
	if idx := strings.LastIndex(cut, "\n"); idx > 0 {
		cut = cut[:idx]
	}
	return cut, true
}
