package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/hey-watchme/api-punchline/internal/model"

	"github.com/lib/pq"
)

type ExtractionRepository struct {
	db *sql.DB
}

func NewExtractionRepository(db *sql.DB) *ExtractionRepository {
	return &ExtractionRepository{db: db}
}

func (r *ExtractionRepository) SaveRequest(req *model.ExtractionRequest) error {
	contextData, err := json.Marshal(req.Context)
	if err != nil {
		return err
	}

	return r.db.QueryRow(`
		INSERT INTO extraction_request(request_id, conversation_text, user_id, context_data, status)
		VALUES($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING created_at
	`, req.RequestID, req.ConversationText, req.UserID, contextData, req.Status).Scan(&req.CreatedAt)
}

func (r *ExtractionRepository) UpdateRequestStatus(requestID, status string) error {
	_, err := r.db.Exec(`
		UPDATE extraction_request SET status = $1 WHERE request_id = $2
	`, status, requestID)
	return err
}

func (r *ExtractionRepository) SaveStructuredConversation(conv *model.StructuredConversation) error {
	turns, err := json.Marshal(conv.Turns)
	if err != nil {
		return err
	}

	return r.db.QueryRow(`
		INSERT INTO structured_conversation(request_id, turns, speakers, turn_count, summary)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, conv.RequestID, turns, pq.Array(conv.Speakers), conv.TurnCount, conv.Summary).Scan(&conv.ID, &conv.CreatedAt)
}

func (r *ExtractionRepository) SaveResult(res *model.ExtractionResult) error {
	punchlines, err := json.Marshal(res.Punchlines)
	if err != nil {
		return err
	}

	return r.db.QueryRow(`
		INSERT INTO extraction_result(request_id, punchlines, candidate_count, elapsed_ms, structure_ms, extract_ms, model_used)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, res.RequestID, punchlines, res.CandidateCount, res.ElapsedMS, res.StructureMS, res.ExtractMS, res.ModelUsed).Scan(&res.ID, &res.CreatedAt)
}

func (r *ExtractionRepository) GetRequestByID(requestID string) (*model.StoredExtraction, error) {
	var stored model.StoredExtraction
	var userID sql.NullString
	var contextJSON []byte

	err := r.db.QueryRow(`
		SELECT request_id, conversation_text, user_id, context_data, status, created_at
		FROM extraction_request
		WHERE request_id = $1
	`, requestID).Scan(
		&stored.Request.RequestID, &stored.Request.ConversationText, &userID,
		&contextJSON, &stored.Request.Status, &stored.Request.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	stored.Request.UserID = userID.String
	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &stored.Request.Context); err != nil {
			return nil, err
		}
	}

	conv, err := r.getConversation(requestID)
	if err != nil {
		return nil, err
	}
	stored.Conversation = conv

	result, err := r.getResult(requestID)
	if err != nil {
		return nil, err
	}
	stored.Result = result

	return &stored, nil
}

func (r *ExtractionRepository) getConversation(requestID string) (*model.StructuredConversation, error) {
	var conv model.StructuredConversation
	var turnsJSON []byte

	err := r.db.QueryRow(`
		SELECT id, request_id, turns, speakers, turn_count, summary, created_at
		FROM structured_conversation
		WHERE request_id = $1
	`, requestID).Scan(
		&conv.ID, &conv.RequestID, &turnsJSON, pq.Array(&conv.Speakers),
		&conv.TurnCount, &conv.Summary, &conv.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(turnsJSON, &conv.Turns); err != nil {
		return nil, err
	}

	return &conv, nil
}

func (r *ExtractionRepository) getResult(requestID string) (*model.ExtractionResult, error) {
	var res model.ExtractionResult
	var punchlinesJSON []byte

	err := r.db.QueryRow(`
		SELECT id, request_id, punchlines, candidate_count, elapsed_ms, structure_ms, extract_ms, model_used, created_at
		FROM extraction_result
		WHERE request_id = $1
	`, requestID).Scan(
		&res.ID, &res.RequestID, &punchlinesJSON, &res.CandidateCount,
		&res.ElapsedMS, &res.StructureMS, &res.ExtractMS, &res.ModelUsed, &res.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(punchlinesJSON, &res.Punchlines); err != nil {
		return nil, err
	}

	res.Persisted = true
	return &res, nil
}

func (r *ExtractionRepository) GetUserHistory(userID string, limit int) ([]model.HistoryEntry, error) {
	rows, err := r.db.Query(`
		SELECT req.request_id, req.created_at, req.context_data, COALESCE(res.candidate_count, 0)
		FROM extraction_request req
		LEFT JOIN extraction_result res ON res.request_id = req.request_id
		WHERE req.user_id = $1
		ORDER BY req.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		var contextJSON []byte
		if err := rows.Scan(&entry.RequestID, &entry.CreatedAt, &contextJSON, &entry.PunchlineCount); err != nil {
			return nil, err
		}
		if len(contextJSON) > 0 {
			if err := json.Unmarshal(contextJSON, &entry.Context); err != nil {
				return nil, err
			}
		}
		history = append(history, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}

func (r *ExtractionRepository) GetRequestTotal() (int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM extraction_request`).Scan(&total)
	return total, err
}
