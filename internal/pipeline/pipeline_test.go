package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/hey-watchme/api-punchline/internal/model"
)

type fakeProvider struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)

	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func (f *fakeProvider) ModelName() string {
	return "fake/model"
}

type fakeStore struct {
	requests    []*model.ExtractionRequest
	statuses    []string
	convs       []*model.StructuredConversation
	results     []*model.ExtractionResult
	failRequest bool
	failConv    bool
	failResult  bool
}

func (f *fakeStore) SaveRequest(req *model.ExtractionRequest) error {
	if f.failRequest {
		return errors.New("DB down")
	}
	f.requests = append(f.requests, req)
	return nil
}

func (f *fakeStore) UpdateRequestStatus(requestID, status string) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeStore) SaveStructuredConversation(conv *model.StructuredConversation) error {
	if f.failConv {
		return errors.New("DB down")
	}
	f.convs = append(f.convs, conv)
	return nil
}

func (f *fakeStore) SaveResult(res *model.ExtractionResult) error {
	if f.failResult {
		return errors.New("DB down")
	}
	f.results = append(f.results, res)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const structuredResponse = `{
	"turns": [
		{"speaker": "Speaker A", "text": "それは面白いね"},
		{"speaker": "Speaker B", "text": "でしょ"}
	],
	"speakers": ["Speaker A", "Speaker B"],
	"total_turns": 2,
	"summary": "A short exchange about something funny."
}`

const punchlinesResponse = `{
	"punchlines": [
		{
			"rank": 1,
			"text": "それは面白いね",
			"speaker": "Speaker A",
			"status_score": 70,
			"shareability_score": 88,
			"category": "humor",
			"reasoning": "Sets up the whole exchange.",
			"tags": ["banter"],
			"reactions": [
				{"persona": "comedian", "text": "Delivery is everything."}
			]
		}
	]
}`
