package source

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hey-watchme/api-punchline/internal/model"
)

type fakeTranscriptStore struct {
	records []model.TranscriptRecord
	err     error
}

func (f *fakeTranscriptStore) GetRecords(deviceID, localDate string) ([]model.TranscriptRecord, error) {
	return f.records, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dayRecords() []model.TranscriptRecord {
	base := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)
	return []model.TranscriptRecord{
		{ID: 1, DeviceID: "dev-1", LocalDate: "2026-01-21", LocalTime: "09:00:00", RecordedAt: base.Add(9 * time.Hour), Text: "morning"},
		{ID: 2, DeviceID: "dev-1", LocalDate: "2026-01-21", LocalTime: "12:30:00", RecordedAt: base.Add(12*time.Hour + 30*time.Minute), Text: "noon"},
		{ID: 3, DeviceID: "dev-1", LocalDate: "2026-01-21", LocalTime: "18:45:00", RecordedAt: base.Add(18*time.Hour + 45*time.Minute), Text: "evening"},
	}
}

func TestResolve_NoRecords(t *testing.T) {
	r := NewResolver(&fakeTranscriptStore{}, testLogger())

	_, err := r.Resolve(model.SourceLocator{DeviceID: "dev-1", LocalDate: "2026-01-21"})
	if !errors.Is(err, ErrNoTranscript) {
		t.Fatalf("want ErrNoTranscript, got %v", err)
	}
}

func TestResolve_StoreError(t *testing.T) {
	r := NewResolver(&fakeTranscriptStore{err: errors.New("DB down")}, testLogger())

	_, err := r.Resolve(model.SourceLocator{DeviceID: "dev-1", LocalDate: "2026-01-21"})
	if err == nil || errors.Is(err, ErrNoTranscript) {
		t.Fatalf("want store error, got %v", err)
	}
}

func TestResolve_NoTimePicksLatest(t *testing.T) {
	r := NewResolver(&fakeTranscriptStore{records: dayRecords()}, testLogger())

	rec, err := r.Resolve(model.SourceLocator{DeviceID: "dev-1", LocalDate: "2026-01-21"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Text != "evening" {
		t.Errorf("got %q, want latest of the day", rec.Text)
	}
}

func TestResolve_ExactTimeMatch(t *testing.T) {
	r := NewResolver(&fakeTranscriptStore{records: dayRecords()}, testLogger())

	rec, err := r.Resolve(model.SourceLocator{DeviceID: "dev-1", LocalDate: "2026-01-21", LocalTime: "12:30:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Text != "noon" {
		t.Errorf("got %q, want exact match", rec.Text)
	}
}

func TestResolve_NearestAtOrBefore(t *testing.T) {
	r := NewResolver(&fakeTranscriptStore{records: dayRecords()}, testLogger())

	// 13:00 sits between noon and evening; the prior record wins even though
	// evening is not much further away.
	rec, err := r.Resolve(model.SourceLocator{DeviceID: "dev-1", LocalDate: "2026-01-21", LocalTime: "13:00:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Text != "noon" {
		t.Errorf("got %q, want nearest prior record", rec.Text)
	}
}

func TestResolve_NoPriorFallsBackToNearest(t *testing.T) {
	r := NewResolver(&fakeTranscriptStore{records: dayRecords()}, testLogger())

	rec, err := r.Resolve(model.SourceLocator{DeviceID: "dev-1", LocalDate: "2026-01-21", LocalTime: "07:00:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Text != "morning" {
		t.Errorf("got %q, want nearest overall", rec.Text)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := NewResolver(&fakeTranscriptStore{records: dayRecords()}, testLogger())
	loc := model.SourceLocator{DeviceID: "dev-1", LocalDate: "2026-01-21", LocalTime: "13:00:00"}

	first, err := r.Resolve(loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.Resolve(loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("resolution not stable: %d then %d", first.ID, second.ID)
	}
}
