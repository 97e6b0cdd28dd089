package model

import "time"

type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// StructuredConversation is the Stage-1 artifact. Speaker labels are inferred
// by the model from conversational cues; they are consistent within one
// conversation but are not verified identities and carry no meaning across
// requests.
type StructuredConversation struct {
	ID        int64
	RequestID string
	Turns     []Turn
	Speakers  []string
	TurnCount int
	Summary   string
	CreatedAt time.Time
}

// TranscriptRecord is one timestamped recording from the historical
// transcript store.
type TranscriptRecord struct {
	ID         int64
	DeviceID   string
	LocalDate  string
	LocalTime  string
	RecordedAt time.Time
	Text       string
}

// SourceLocator identifies a historical transcript by device and date, with
// an optional time of day. It is transient input, never persisted.
type SourceLocator struct {
	DeviceID  string
	LocalDate string
	LocalTime string
}
