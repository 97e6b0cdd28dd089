package repository

import (
	"database/sql"

	"github.com/hey-watchme/api-punchline/internal/model"
)

// TranscriptRepository reads the historical transcript store. The collection
// is owned by the recording service; this side only queries it.
type TranscriptRepository struct {
	db *sql.DB
}

func NewTranscriptRepository(db *sql.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

func (r *TranscriptRepository) GetRecords(deviceID, localDate string) ([]model.TranscriptRecord, error) {
	rows, err := r.db.Query(`
		SELECT id, device_id, local_date, local_time, recorded_at, transcript
		FROM transcript_record
		WHERE device_id = $1 AND local_date = $2
		ORDER BY recorded_at DESC
	`, deviceID, localDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.TranscriptRecord
	for rows.Next() {
		var rec model.TranscriptRecord
		err := rows.Scan(&rec.ID, &rec.DeviceID, &rec.LocalDate, &rec.LocalTime, &rec.RecordedAt, &rec.Text)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
