package source

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hey-watchme/api-punchline/internal/model"
)

// ErrNoTranscript is returned when no record exists for a device and date.
// It is a caller-visible condition, never retried.
var ErrNoTranscript = errors.New("no transcript found")

type TranscriptStore interface {
	GetRecords(deviceID, localDate string) ([]model.TranscriptRecord, error)
}

type Resolver struct {
	store  TranscriptStore
	logger *slog.Logger
}

func NewResolver(store TranscriptStore, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// Resolve locates the single best-matching transcript record. With a time,
// an exact match wins, then the nearest record at or before the requested
// time, then the nearest overall. Without a time, the latest recording of
// the day wins.
func (r *Resolver) Resolve(loc model.SourceLocator) (*model.TranscriptRecord, error) {
	records, err := r.store.GetRecords(loc.DeviceID, loc.LocalDate)
	if err != nil {
		return nil, fmt.Errorf("query transcript store: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w for device %s on %s", ErrNoTranscript, loc.DeviceID, loc.LocalDate)
	}

	var picked *model.TranscriptRecord
	if loc.LocalTime == "" {
		picked = latest(records)
	} else {
		picked = closestTo(records, loc.LocalTime)
	}

	r.logger.Info("resolved transcript",
		"device_id", loc.DeviceID,
		"local_date", loc.LocalDate,
		"requested_time", loc.LocalTime,
		"picked_time", picked.LocalTime,
	)

	return picked, nil
}

func latest(records []model.TranscriptRecord) *model.TranscriptRecord {
	best := &records[0]
	for i := range records[1:] {
		if records[i+1].RecordedAt.After(best.RecordedAt) {
			best = &records[i+1]
		}
	}
	return best
}

func closestTo(records []model.TranscriptRecord, localTime string) *model.TranscriptRecord {
	target := parseClock(localTime)

	var bestPrior *model.TranscriptRecord
	var bestPriorDelta time.Duration
	var bestAny *model.TranscriptRecord
	var bestAnyDelta time.Duration

	for i := range records {
		rec := &records[i]
		if rec.LocalTime == localTime {
			return rec
		}

		delta := target - parseClock(rec.LocalTime)
		abs := delta
		if abs < 0 {
			abs = -abs
		}

		if delta >= 0 && (bestPrior == nil || abs < bestPriorDelta) {
			bestPrior = rec
			bestPriorDelta = abs
		}
		if bestAny == nil || abs < bestAnyDelta {
			bestAny = rec
			bestAnyDelta = abs
		}
	}

	if bestPrior != nil {
		return bestPrior
	}
	return bestAny
}

// parseClock converts HH:MM:SS (or HH:MM) into an offset from midnight.
// Unparseable times sort as midnight.
func parseClock(s string) time.Duration {
	layouts := []string{"15:04:05", "15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second
		}
	}
	return 0
}
