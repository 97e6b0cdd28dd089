package model

import "time"

const (
	StatusCreated     = "created"
	StatusStructuring = "structuring"
	StatusStructured  = "structured"
	StatusExtracting  = "extracting"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
)

const (
	CategoryHumor        = "humor"
	CategoryInsight      = "insight"
	CategoryHeartwarming = "heartwarming"
	CategorySurprise     = "surprise"
	CategorySelfOwn      = "self_own"
	CategoryWordplay     = "wordplay"
	FallbackCategory     = "uncategorized"
)

var knownCategories = map[string]bool{
	CategoryHumor:        true,
	CategoryInsight:      true,
	CategoryHeartwarming: true,
	CategorySurprise:     true,
	CategorySelfOwn:      true,
	CategoryWordplay:     true,
}

// NormalizeCategory maps model output onto the fixed category set. Anything
// unrecognized becomes the fallback category rather than an error.
func NormalizeCategory(name string) string {
	if knownCategories[name] {
		return name
	}
	return FallbackCategory
}

const (
	PersonaComedian  = "comedian"
	PersonaCritic    = "critic"
	PersonaProfessor = "professor"

	MaxReactionLen = 120
)

var knownPersonas = map[string]bool{
	PersonaComedian:  true,
	PersonaCritic:    true,
	PersonaProfessor: true,
}

func ValidPersona(name string) bool {
	return knownPersonas[name]
}

type ExtractionRequest struct {
	RequestID        string
	ConversationText string
	UserID           string
	Context          map[string]any
	Status           string
	CreatedAt        time.Time
}

type Reaction struct {
	Persona string `json:"persona"`
	Text    string `json:"text"`
}

type PunchlineCandidate struct {
	Rank              int        `json:"rank"`
	Text              string     `json:"text"`
	Speaker           string     `json:"speaker"`
	StatusScore       int        `json:"status_score"`
	ShareabilityScore int        `json:"shareability_score"`
	Category          string     `json:"category"`
	Reasoning         string     `json:"reasoning"`
	Tags              []string   `json:"tags,omitempty"`
	Reactions         []Reaction `json:"reactions,omitempty"`
}

type ExtractionResult struct {
	ID             int64
	RequestID      string
	Punchlines     []PunchlineCandidate
	CandidateCount int
	ElapsedMS      int64
	StructureMS    int64
	ExtractMS      int64
	ModelUsed      string
	Persisted      bool
	CreatedAt      time.Time
}

// StoredExtraction is the composite read model for one request: the request
// row plus whichever stage artifacts were persisted before completion or
// failure.
type StoredExtraction struct {
	Request      ExtractionRequest
	Conversation *StructuredConversation
	Result       *ExtractionResult
}

type HistoryEntry struct {
	RequestID      string
	CreatedAt      time.Time
	Context        map[string]any
	PunchlineCount int
}
