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

type Extractor struct {
	provider llm.Provider
	logger   *slog.Logger
}

func NewExtractor(provider llm.Provider, logger *slog.Logger) *Extractor {
	return &Extractor{provider: provider, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, conv *model.StructuredConversation) ([]model.PunchlineCandidate, error) {
	raw, err := e.provider.Generate(ctx, fmt.Sprintf(extractPrompt, formatConversation(conv)))
	if err != nil {
		return nil, fmt.Errorf("extract call: %w", err)
	}

	candidates, err := e.decodeCandidates(raw, conv)
	if err != nil {
		e.logger.Error("failed to validate punchline candidates", "error", err)
		return nil, err
	}

	return candidates, nil
}

func formatConversation(conv *model.StructuredConversation) string {
	var sb strings.Builder
	if conv.Summary != "" {
		sb.WriteString("Summary: " + conv.Summary + "\n\n")
	}
	for _, t := range conv.Turns {
		sb.WriteString(fmt.Sprintf("%s: %s\n", t.Speaker, t.Text))
	}
	return sb.String()
}

func (e *Extractor) decodeCandidates(raw string, conv *model.StructuredConversation) ([]model.PunchlineCandidate, error) {
	payload, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, &SchemaError{Field: "payload", Reason: err.Error()}
	}

	var parsed struct {
		Punchlines []struct {
			Rank              llm.Number `json:"rank"`
			Text              *string    `json:"text"`
			Speaker           *string    `json:"speaker"`
			StatusScore       llm.Number `json:"status_score"`
			ShareabilityScore llm.Number `json:"shareability_score"`
			Category          string     `json:"category"`
			Reasoning         string     `json:"reasoning"`
			Tags              []string   `json:"tags"`
			Reactions         []struct {
				Persona string `json:"persona"`
				Text    string `json:"text"`
			} `json:"reactions"`
		} `json:"punchlines"`
	}

	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		// Some models return the list without the wrapping object.
		if err2 := json.Unmarshal([]byte(payload), &parsed.Punchlines); err2 != nil {
			return nil, &SchemaError{Field: "payload", Reason: err.Error()}
		}
	}

	if len(parsed.Punchlines) == 0 {
		return nil, &SchemaError{Field: "punchlines", Reason: "missing or empty"}
	}

	var candidates []model.PunchlineCandidate
	for i, p := range parsed.Punchlines {
		if p.Text == nil || *p.Text == "" {
			return nil, &SchemaError{Field: fmt.Sprintf("punchlines[%d].text", i), Reason: "missing"}
		}
		if p.Speaker == nil || *p.Speaker == "" {
			return nil, &SchemaError{Field: fmt.Sprintf("punchlines[%d].speaker", i), Reason: "missing"}
		}
		// Out-of-range scores are clamped below, but an absent score is a
		// schema violation, not a zero.
		if !p.StatusScore.IsSet() {
			return nil, &SchemaError{Field: fmt.Sprintf("punchlines[%d].status_score", i), Reason: "missing"}
		}
		if !p.ShareabilityScore.IsSet() {
			return nil, &SchemaError{Field: fmt.Sprintf("punchlines[%d].shareability_score", i), Reason: "missing"}
		}

		if !traceable(*p.Text, conv) {
			e.logger.Warn("dropping punchline not traceable to any turn", "text", *p.Text)
			continue
		}

		c := model.PunchlineCandidate{
			Rank:              p.Rank.Int(),
			Text:              *p.Text,
			Speaker:           *p.Speaker,
			StatusScore:       e.clampScore(p.StatusScore, fmt.Sprintf("punchlines[%d].status_score", i)),
			ShareabilityScore: e.clampScore(p.ShareabilityScore, fmt.Sprintf("punchlines[%d].shareability_score", i)),
			Category:          model.NormalizeCategory(p.Category),
			Reasoning:         p.Reasoning,
			Tags:              p.Tags,
		}

		if c.Category == model.FallbackCategory && p.Category != model.FallbackCategory {
			e.logger.Warn("unknown category mapped to fallback", "category", p.Category)
		}

		for _, r := range p.Reactions {
			if !model.ValidPersona(r.Persona) {
				e.logger.Warn("dropping reaction with unknown persona", "persona", r.Persona)
				continue
			}
			c.Reactions = append(c.Reactions, model.Reaction{
				Persona: r.Persona,
				Text:    capReaction(r.Text),
			})
		}

		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return nil, &SchemaError{Field: "punchlines", Reason: "no candidate traceable to the conversation"}
	}

	e.repairRanks(candidates)
	return candidates, nil
}

// repairRanks re-derives rank from array order when the model's stated ranks
// are not the dense sequence 1..N. Repair is logged, never silent.
func (e *Extractor) repairRanks(candidates []model.PunchlineCandidate) {
	if ranksDense(candidates) {
		return
	}

	stated := make([]int, len(candidates))
	for i := range candidates {
		stated[i] = candidates[i].Rank
		candidates[i].Rank = i + 1
	}
	e.logger.Warn("inconsistent ranks repaired from array order", "stated_ranks", stated)
}

func ranksDense(candidates []model.PunchlineCandidate) bool {
	seen := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		if c.Rank < 1 || c.Rank > len(candidates) || seen[c.Rank] {
			return false
		}
		seen[c.Rank] = true
	}
	return true
}

func (e *Extractor) clampScore(n llm.Number, field string) int {
	v := n.Int()
	if v < 0 {
		e.logger.Warn("score clamped into range", "field", field, "value", v)
		return 0
	}
	if v > 100 {
		e.logger.Warn("score clamped into range", "field", field, "value", v)
		return 100
	}
	return v
}

func capReaction(text string) string {
	runes := []rune(text)
	if len(runes) <= model.MaxReactionLen {
		return text
	}
	return string(runes[:model.MaxReactionLen])
}

// traceable reports whether the candidate quote appears in some turn. The
// comparison ignores whitespace differences, since the model reflows text.
func traceable(text string, conv *model.StructuredConversation) bool {
	needle := squash(text)
	if needle == "" {
		return false
	}
	for _, t := range conv.Turns {
		if strings.Contains(squash(t.Text), needle) {
			return true
		}
	}
	return false
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}
