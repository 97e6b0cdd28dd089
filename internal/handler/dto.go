package handler

type ExtractRequest struct {
	ConversationText string         `json:"conversation_text"`
	UserID           string         `json:"user_id"`
	Context          map[string]any `json:"context"`
	SourceDeviceID   string         `json:"source_device_id"`
	SourceDate       string         `json:"source_date"`
	SourceTime       string         `json:"source_time"`
}

type TurnResponse struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type ConversationResponse struct {
	Turns      []TurnResponse `json:"turns"`
	Speakers   []string       `json:"speakers"`
	TotalTurns int            `json:"total_turns"`
	Summary    string         `json:"summary"`
}

type ReactionResponse struct {
	Persona string `json:"persona"`
	Text    string `json:"text"`
}

type PunchlineResponse struct {
	Rank              int                `json:"rank"`
	Text              string             `json:"text"`
	Speaker           string             `json:"speaker"`
	StatusScore       int                `json:"status_score"`
	ShareabilityScore int                `json:"shareability_score"`
	Category          string             `json:"category"`
	Reasoning         string             `json:"reasoning"`
	Tags              []string           `json:"tags,omitempty"`
	Reactions         []ReactionResponse `json:"reactions,omitempty"`
}

type MetadataResponse struct {
	CandidateCount int    `json:"candidate_count"`
	ElapsedMS      int64  `json:"elapsed_ms"`
	StructureMS    int64  `json:"structure_ms"`
	ExtractMS      int64  `json:"extract_ms"`
	ModelUsed      string `json:"model_used"`
	Persisted      bool   `json:"persisted"`
}

type ExtractionResponse struct {
	Status                 string                `json:"status"`
	RequestID              string                `json:"request_id"`
	StructuredConversation *ConversationResponse `json:"structured_conversation,omitempty"`
	Punchlines             []PunchlineResponse   `json:"punchlines,omitempty"`
	Metadata               *MetadataResponse     `json:"metadata,omitempty"`
}

type HistoryEntryResponse struct {
	RequestID      string         `json:"request_id"`
	CreatedAt      string         `json:"created_at"`
	Context        map[string]any `json:"context,omitempty"`
	PunchlineCount int            `json:"punchline_count"`
}

type HistoryResponse struct {
	UserID        string                 `json:"user_id"`
	Requests      []HistoryEntryResponse `json:"requests"`
	TotalRequests int                    `json:"total_requests"`
}
