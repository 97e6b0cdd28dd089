package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hey-watchme/api-punchline/internal/model"
	"github.com/hey-watchme/api-punchline/internal/pipeline"
	"github.com/hey-watchme/api-punchline/internal/source"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PipelineRunner interface {
	Run(ctx context.Context, req *model.ExtractionRequest) (*pipeline.RunOutcome, error)
}

type SourceResolver interface {
	Resolve(loc model.SourceLocator) (*model.TranscriptRecord, error)
}

type ExtractionStore interface {
	GetRequestByID(requestID string) (*model.StoredExtraction, error)
	GetUserHistory(userID string, limit int) ([]model.HistoryEntry, error)
	GetRequestTotal() (int, error)
}

type ResultCache interface {
	CacheResult(requestID string, payload []byte) error
	GetCachedResult(requestID string) ([]byte, error)
}

type ExtractHandler struct {
	runner   PipelineRunner
	resolver SourceResolver
	store    ExtractionStore
	cache    ResultCache
}

// NewExtractHandler wires the pipeline behind the HTTP surface. cache may be
// nil when Redis is not configured.
func NewExtractHandler(runner PipelineRunner, resolver SourceResolver, store ExtractionStore, cache ResultCache) *ExtractHandler {
	return &ExtractHandler{runner: runner, resolver: resolver, store: store, cache: cache}
}

func (h *ExtractHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	textMode := req.ConversationText != ""
	sourceMode := req.SourceDeviceID != "" || req.SourceDate != "" || req.SourceTime != ""

	if textMode == sourceMode {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Provide exactly one of conversation_text or source_device_id + source_date",
		})
		return
	}

	text := req.ConversationText
	contextData := req.Context

	if sourceMode {
		if req.SourceDeviceID == "" || req.SourceDate == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "source_device_id and source_date are both required"})
			return
		}

		record, err := h.resolver.Resolve(model.SourceLocator{
			DeviceID:  req.SourceDeviceID,
			LocalDate: req.SourceDate,
			LocalTime: req.SourceTime,
		})
		if errors.Is(err, source.ErrNoTranscript) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			slog.Error("error resolving transcript source", "error", err, "device_id", req.SourceDeviceID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Transcript store error"})
			return
		}

		text = record.Text
		contextData = map[string]any{
			"source":     "transcript_store",
			"device_id":  record.DeviceID,
			"local_date": record.LocalDate,
			"local_time": record.LocalTime,
		}
	}

	extraction := &model.ExtractionRequest{
		RequestID:        uuid.NewString(),
		ConversationText: text,
		UserID:           req.UserID,
		Context:          contextData,
	}

	outcome, err := h.runner.Run(c.Request.Context(), extraction)
	if err != nil {
		writePipelineError(c, err)
		return
	}

	res := buildExtractionResponse("success", outcome.Request.RequestID, outcome.Conversation, outcome.Result)
	h.cacheResponse(outcome.Request.RequestID, res)
	c.JSON(http.StatusOK, res)
}

func (h *ExtractHandler) GetExtraction(c *gin.Context) {
	requestID := c.Param("id")

	if h.cache != nil {
		if payload, err := h.cache.GetCachedResult(requestID); err != nil {
			slog.Warn("result cache read failed", "error", err, "request_id", requestID)
		} else if payload != nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
	}

	stored, err := h.store.GetRequestByID(requestID)
	if err != nil {
		slog.Error("error fetching extraction", "error", err, "request_id", requestID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if stored == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found: " + requestID})
		return
	}

	res := buildExtractionResponse(stored.Request.Status, stored.Request.RequestID, stored.Conversation, stored.Result)
	if stored.Request.Status == model.StatusCompleted {
		h.cacheResponse(requestID, res)
	}
	c.JSON(http.StatusOK, res)
}

func (h *ExtractHandler) cacheResponse(requestID string, res ExtractionResponse) {
	if h.cache == nil || res.Metadata == nil || !res.Metadata.Persisted {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := h.cache.CacheResult(requestID, payload); err != nil {
		slog.Warn("result cache write failed", "error", err, "request_id", requestID)
	}
}

func buildExtractionResponse(status, requestID string, conv *model.StructuredConversation, result *model.ExtractionResult) ExtractionResponse {
	res := ExtractionResponse{
		Status:    status,
		RequestID: requestID,
	}

	if conv != nil {
		conversation := &ConversationResponse{
			Speakers:   conv.Speakers,
			TotalTurns: conv.TurnCount,
			Summary:    conv.Summary,
		}
		for _, t := range conv.Turns {
			conversation.Turns = append(conversation.Turns, TurnResponse{Speaker: t.Speaker, Text: t.Text})
		}
		res.StructuredConversation = conversation
	}

	if result != nil {
		for _, p := range result.Punchlines {
			punchline := PunchlineResponse{
				Rank:              p.Rank,
				Text:              p.Text,
				Speaker:           p.Speaker,
				StatusScore:       p.StatusScore,
				ShareabilityScore: p.ShareabilityScore,
				Category:          p.Category,
				Reasoning:         p.Reasoning,
				Tags:              p.Tags,
			}
			for _, r := range p.Reactions {
				punchline.Reactions = append(punchline.Reactions, ReactionResponse{Persona: r.Persona, Text: r.Text})
			}
			res.Punchlines = append(res.Punchlines, punchline)
		}

		res.Metadata = &MetadataResponse{
			CandidateCount: result.CandidateCount,
			ElapsedMS:      result.ElapsedMS,
			StructureMS:    result.StructureMS,
			ExtractMS:      result.ExtractMS,
			ModelUsed:      result.ModelUsed,
			Persisted:      result.Persisted,
		}
	}

	return res
}

// writePipelineError maps the pipeline error taxonomy onto HTTP statuses,
// always naming the failing stage and kind.
func writePipelineError(c *gin.Context, err error) {
	var stageErr *pipeline.PipelineError
	if errors.As(err, &stageErr) {
		slog.Error("pipeline run failed", "stage", stageErr.Stage, "kind", stageErr.Kind, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": stageErr.Error(),
			"stage": string(stageErr.Stage),
			"kind":  string(stageErr.Kind),
		})
		return
	}

	var persistErr *pipeline.PersistenceError
	if errors.As(err, &persistErr) {
		slog.Error("pipeline persistence failed", "op", persistErr.Op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	slog.Error("pipeline run failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
