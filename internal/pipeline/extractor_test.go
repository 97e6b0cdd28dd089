package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hey-watchme/api-punchline/internal/model"
)

func testConversation() *model.StructuredConversation {
	return &model.StructuredConversation{
		Turns: []model.Turn{
			{Speaker: "Speaker A", Text: "それは面白いね"},
			{Speaker: "Speaker B", Text: "でしょ、昨日考えたんだ"},
		},
		Speakers:  []string{"Speaker A", "Speaker B"},
		TurnCount: 2,
		Summary:   "A short exchange.",
	}
}

func TestExtract_ValidResponse(t *testing.T) {
	provider := &fakeProvider{responses: []string{punchlinesResponse}}
	e := NewExtractor(provider, testLogger())

	candidates, err := e.Extract(context.Background(), testConversation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("candidates: got %d, want 1", len(candidates))
	}
	c := candidates[0]
	if c.Rank != 1 || c.Category != model.CategoryHumor || c.Speaker != "Speaker A" {
		t.Errorf("unexpected candidate: %+v", c)
	}
	if len(c.Reactions) != 1 || c.Reactions[0].Persona != model.PersonaComedian {
		t.Errorf("reactions: %+v", c.Reactions)
	}
}

func TestExtract_ClampsOutOfRangeScores(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"punchlines":[
		{"rank":1,"text":"それは面白いね","speaker":"Speaker A","status_score":150,"shareability_score":-5,"category":"humor","reasoning":"r"}
	]}`}}
	e := NewExtractor(provider, testLogger())

	candidates, err := e.Extract(context.Background(), testConversation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if candidates[0].StatusScore != 100 {
		t.Errorf("status score: got %d, want 100", candidates[0].StatusScore)
	}
	if candidates[0].ShareabilityScore != 0 {
		t.Errorf("shareability score: got %d, want 0", candidates[0].ShareabilityScore)
	}
}

func TestExtract_CoercesNumericStringScores(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"punchlines":[
		{"rank":"1","text":"それは面白いね","speaker":"Speaker A","status_score":"85","shareability_score":"92","category":"humor","reasoning":"r"}
	]}`}}
	e := NewExtractor(provider, testLogger())

	candidates, err := e.Extract(context.Background(), testConversation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates[0].StatusScore != 85 || candidates[0].ShareabilityScore != 92 {
		t.Errorf("coerced scores: %+v", candidates[0])
	}
}

func TestExtract_UnknownCategoryFallsBack(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"punchlines":[
		{"rank":1,"text":"それは面白いね","speaker":"Speaker A","status_score":50,"shareability_score":50,"category":"hilarious_banger","reasoning":"r"}
	]}`}}
	e := NewExtractor(provider, testLogger())

	candidates, err := e.Extract(context.Background(), testConversation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates[0].Category != model.FallbackCategory {
		t.Errorf("category: got %q, want %q", candidates[0].Category, model.FallbackCategory)
	}
}

func TestExtract_RepairsInconsistentRanks(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"punchlines":[
		{"rank":1,"text":"それは面白いね","speaker":"Speaker A","status_score":50,"shareability_score":50,"category":"humor","reasoning":"r"},
		{"rank":3,"text":"でしょ","speaker":"Speaker B","status_score":40,"shareability_score":40,"category":"humor","reasoning":"r"},
		{"rank":3,"text":"昨日考えたんだ","speaker":"Speaker B","status_score":30,"shareability_score":30,"category":"humor","reasoning":"r"}
	]}`}}
	e := NewExtractor(provider, testLogger())

	candidates, err := e.Extract(context.Background(), testConversation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, c := range candidates {
		if c.Rank != i+1 {
			t.Errorf("rank[%d]: got %d, want %d", i, c.Rank, i+1)
		}
	}
}

func TestExtract_KeepsConsistentRanks(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"punchlines":[
		{"rank":1,"text":"それは面白いね","speaker":"Speaker A","status_score":50,"shareability_score":50,"category":"humor","reasoning":"r"},
		{"rank":2,"text":"でしょ","speaker":"Speaker B","status_score":40,"shareability_score":40,"category":"humor","reasoning":"r"}
	]}`}}
	e := NewExtractor(provider, testLogger())

	candidates, err := e.Extract(context.Background(), testConversation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates[0].Rank != 1 || candidates[1].Rank != 2 {
		t.Errorf("ranks changed: %d, %d", candidates[0].Rank, candidates[1].Rank)
	}
}

func TestExtract_DropsFabricatedQuotes(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"punchlines":[
		{"rank":1,"text":"I never said this","speaker":"Speaker A","status_score":50,"shareability_score":50,"category":"humor","reasoning":"r"},
		{"rank":2,"text":"それは面白いね","speaker":"Speaker A","status_score":40,"shareability_score":40,"category":"humor","reasoning":"r"}
	]}`}}
	e := NewExtractor(provider, testLogger())

	candidates, err := e.Extract(context.Background(), testConversation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("candidates: got %d, want 1", len(candidates))
	}
	if candidates[0].Text != "それは面白いね" {
		t.Errorf("kept wrong candidate: %q", candidates[0].Text)
	}
	if candidates[0].Rank != 1 {
		t.Errorf("rank after drop: got %d, want 1", candidates[0].Rank)
	}
}

func TestExtract_AllFabricatedIsSchemaError(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"punchlines":[
		{"rank":1,"text":"totally invented","speaker":"Speaker A","status_score":50,"shareability_score":50,"category":"humor","reasoning":"r"}
	]}`}}
	e := NewExtractor(provider, testLogger())

	_, err := e.Extract(context.Background(), testConversation())

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if schemaErr.Field != "punchlines" {
		t.Errorf("field: got %q", schemaErr.Field)
	}
}

func TestExtract_EmptyListIsSchemaError(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"punchlines":[]}`}}
	e := NewExtractor(provider, testLogger())

	_, err := e.Extract(context.Background(), testConversation())

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError, got %v", err)
	}
}

func TestExtract_MissingTextNamesField(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"punchlines":[
		{"rank":1,"speaker":"Speaker A","status_score":50,"shareability_score":50,"category":"humor","reasoning":"r"}
	]}`}}
	e := NewExtractor(provider, testLogger())

	_, err := e.Extract(context.Background(), testConversation())

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if schemaErr.Field != "punchlines[0].text" {
		t.Errorf("field: got %q", schemaErr.Field)
	}
}

func TestExtract_MissingScoresNameField(t *testing.T) {
	cases := []struct {
		name     string
		response string
		field    string
	}{
		{
			"no status_score",
			`{"punchlines":[{"rank":1,"text":"それは面白いね","speaker":"Speaker A","shareability_score":50,"category":"humor","reasoning":"r"}]}`,
			"punchlines[0].status_score",
		},
		{
			"no shareability_score",
			`{"punchlines":[{"rank":1,"text":"それは面白いね","speaker":"Speaker A","status_score":50,"category":"humor","reasoning":"r"}]}`,
			"punchlines[0].shareability_score",
		},
		{
			"both scores absent",
			`{"punchlines":[{"rank":1,"text":"それは面白いね","speaker":"Speaker A","category":"humor","reasoning":"r"}]}`,
			"punchlines[0].status_score",
		},
		{
			"null status_score",
			`{"punchlines":[{"rank":1,"text":"それは面白いね","speaker":"Speaker A","status_score":null,"shareability_score":50,"category":"humor","reasoning":"r"}]}`,
			"punchlines[0].status_score",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &fakeProvider{responses: []string{tc.response}}
			e := NewExtractor(provider, testLogger())

			_, err := e.Extract(context.Background(), testConversation())

			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("want SchemaError, got %v", err)
			}
			if schemaErr.Field != tc.field {
				t.Errorf("field: got %q, want %q", schemaErr.Field, tc.field)
			}
		})
	}
}

func TestExtract_BareArrayAccepted(t *testing.T) {
	provider := &fakeProvider{responses: []string{`[
		{"rank":1,"text":"それは面白いね","speaker":"Speaker A","status_score":50,"shareability_score":50,"category":"humor","reasoning":"r"}
	]`}}
	e := NewExtractor(provider, testLogger())

	candidates, err := e.Extract(context.Background(), testConversation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("candidates: got %d, want 1", len(candidates))
	}
}

func TestExtract_FiltersUnknownPersonasAndCapsReactions(t *testing.T) {
	long := strings.Repeat("w", model.MaxReactionLen+40)
	provider := &fakeProvider{responses: []string{`{"punchlines":[
		{"rank":1,"text":"それは面白いね","speaker":"Speaker A","status_score":50,"shareability_score":50,"category":"humor","reasoning":"r",
		 "reactions":[
			{"persona":"comedian","text":"` + long + `"},
			{"persona":"random_guy","text":"should be dropped"}
		]}
	]}`}}
	e := NewExtractor(provider, testLogger())

	candidates, err := e.Extract(context.Background(), testConversation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reactions := candidates[0].Reactions
	if len(reactions) != 1 {
		t.Fatalf("reactions: got %d, want 1", len(reactions))
	}
	if len([]rune(reactions[0].Text)) != model.MaxReactionLen {
		t.Errorf("reaction not capped: %d runes", len([]rune(reactions[0].Text)))
	}
}
