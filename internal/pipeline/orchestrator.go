package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/hey-watchme/api-punchline/internal/model"
	"github.com/hey-watchme/api-punchline/pkg/llm"
)

// callTimeout bounds each provider call. Generation is slow; a stuck call
// past this is reported as a provider timeout for that run only.
const callTimeout = 90 * time.Second

// Store is the persistence collaborator: three append-only collections keyed
// by request id, plus a status column for orchestration bookkeeping.
type Store interface {
	SaveRequest(req *model.ExtractionRequest) error
	UpdateRequestStatus(requestID, status string) error
	SaveStructuredConversation(conv *model.StructuredConversation) error
	SaveResult(res *model.ExtractionResult) error
}

type Orchestrator struct {
	structurer *Structurer
	extractor  *Extractor
	store      Store
	modelUsed  string
	logger     *slog.Logger
}

func NewOrchestrator(provider llm.Provider, store Store, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		structurer: NewStructurer(provider, logger),
		extractor:  NewExtractor(provider, logger),
		store:      store,
		modelUsed:  provider.ModelName(),
		logger:     logger,
	}
}

// RunOutcome carries everything one run produced, including artifacts that
// were computed but could not be persisted.
type RunOutcome struct {
	Request      *model.ExtractionRequest
	Conversation *model.StructuredConversation
	Result       *model.ExtractionResult
}

// Run executes the two-stage pipeline for one request. A Stage-1 failure
// aborts before Stage-2; a Stage-2 failure leaves the persisted structured
// conversation retrievable. Storage write failures after a successful
// generation degrade the result (Persisted=false) instead of discarding it.
func (o *Orchestrator) Run(ctx context.Context, req *model.ExtractionRequest) (*RunOutcome, error) {
	start := time.Now()
	persisted := true

	req.Status = model.StatusCreated
	if err := o.store.SaveRequest(req); err != nil {
		// Nothing expensive has happened yet, so failing here is cheaper
		// than returning an unsaved run.
		return nil, &PersistenceError{Op: "save request", Err: err}
	}

	o.setStatus(req, model.StatusStructuring)
	o.logger.Info("structuring conversation", "request_id", req.RequestID, "transcript_len", len(req.ConversationText))

	structureStart := time.Now()
	conv, err := o.timedStructure(ctx, req.ConversationText)
	structureMS := time.Since(structureStart).Milliseconds()
	if err != nil {
		o.setStatus(req, model.StatusFailed)
		return nil, stageError(StageStructuring, err)
	}
	conv.RequestID = req.RequestID

	if err := o.store.SaveStructuredConversation(conv); err != nil {
		o.logger.Error("failed to persist structured conversation", "request_id", req.RequestID, "error", err)
		persisted = false
	}

	o.setStatus(req, model.StatusStructured)
	o.setStatus(req, model.StatusExtracting)
	o.logger.Info("extracting punchlines", "request_id", req.RequestID, "turn_count", conv.TurnCount)

	extractStart := time.Now()
	candidates, err := o.timedExtract(ctx, conv)
	extractMS := time.Since(extractStart).Milliseconds()
	if err != nil {
		o.setStatus(req, model.StatusFailed)
		return nil, stageError(StageExtracting, err)
	}

	result := &model.ExtractionResult{
		RequestID:      req.RequestID,
		Punchlines:     candidates,
		CandidateCount: len(candidates),
		ElapsedMS:      time.Since(start).Milliseconds(),
		StructureMS:    structureMS,
		ExtractMS:      extractMS,
		ModelUsed:      o.modelUsed,
	}

	if err := o.store.SaveResult(result); err != nil {
		o.logger.Error("failed to persist extraction result", "request_id", req.RequestID, "error", err)
		persisted = false
	}
	result.Persisted = persisted

	o.setStatus(req, model.StatusCompleted)
	o.logger.Info("extraction completed",
		"request_id", req.RequestID,
		"candidates", result.CandidateCount,
		"elapsed_ms", result.ElapsedMS,
		"persisted", result.Persisted,
	)

	return &RunOutcome{Request: req, Conversation: conv, Result: result}, nil
}

func (o *Orchestrator) timedStructure(ctx context.Context, transcript string) (*model.StructuredConversation, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return o.structurer.Structure(callCtx, transcript)
}

func (o *Orchestrator) timedExtract(ctx context.Context, conv *model.StructuredConversation) ([]model.PunchlineCandidate, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return o.extractor.Extract(callCtx, conv)
}

func (o *Orchestrator) setStatus(req *model.ExtractionRequest, status string) {
	req.Status = status
	if err := o.store.UpdateRequestStatus(req.RequestID, status); err != nil {
		o.logger.Error("failed to update request status", "request_id", req.RequestID, "status", status, "error", err)
	}
}
