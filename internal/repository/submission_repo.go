package repository

import (
	"database/sql"
	"encoding/json"

	"vocabduet/internal/database"
	"vocabduet/internal/models"
)

// SubmissionRepository handles game session history and the idempotency
// ledger for session submission
type SubmissionRepository struct {
	db *database.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *database.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// HasSubmission reports whether a session UUID has already been recorded
func (r *SubmissionRepository) HasSubmission(sessionUUID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM session_submissions WHERE session_uuid = ?`
	err := r.db.QueryRow(query, sessionUUID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordSubmission writes the session history row and marks the session
// UUID as submitted in one transaction. The returned record carries the
// assigned history ID.
func (r *SubmissionRepository) RecordSubmission(rec models.GameSessionRecord) (*models.GameSessionRecord, error) {
	answersJSON, err := json.Marshal(rec.Answers)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// The primary key makes a duplicate concurrent submit fail here
	// rather than double-write history.
	if _, err := tx.Exec(`INSERT INTO session_submissions (session_uuid) VALUES (?)`, rec.SessionID); err != nil {
		return nil, err
	}

	id, err := tx.ExecReturningID(`
		INSERT INTO game_sessions (session_uuid, user_id, language_code, game_mode, correct_count, incorrect_count, total_time_seconds, answers, submitted_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.SessionID,
		rec.UserID,
		rec.LanguageCode,
		string(rec.GameMode),
		rec.CorrectCount,
		rec.IncorrectCount,
		rec.TotalTimeSeconds,
		string(answersJSON),
		rec.SubmittedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	rec.ID = id
	return &rec, nil
}

// ListSessions retrieves recent session history for a user, newest first
func (r *SubmissionRepository) ListSessions(userID string, limit int) ([]models.GameSessionRecord, error) {
	query := `
		SELECT id, session_uuid, user_id, language_code, game_mode, correct_count,
		       incorrect_count, total_time_seconds, answers, submitted_by, created_at
		FROM game_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameSessionRecord
	for rows.Next() {
		var rec models.GameSessionRecord
		var answersJSON string

		err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.UserID,
			&rec.LanguageCode,
			&rec.GameMode,
			&rec.CorrectCount,
			&rec.IncorrectCount,
			&rec.TotalTimeSeconds,
			&answersJSON,
			&rec.SubmittedBy,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(answersJSON), &rec.Answers); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetSession retrieves one history record by its session UUID
func (r *SubmissionRepository) GetSession(sessionUUID string) (*models.GameSessionRecord, error) {
	query := `
		SELECT id, session_uuid, user_id, language_code, game_mode, correct_count,
		       incorrect_count, total_time_seconds, answers, submitted_by, created_at
		FROM game_sessions
		WHERE session_uuid = ?
	`

	var rec models.GameSessionRecord
	var answersJSON string

	err := r.db.QueryRow(query, sessionUUID).Scan(
		&rec.ID,
		&rec.SessionID,
		&rec.UserID,
		&rec.LanguageCode,
		&rec.GameMode,
		&rec.CorrectCount,
		&rec.IncorrectCount,
		&rec.TotalTimeSeconds,
		&answersJSON,
		&rec.SubmittedBy,
		&rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(answersJSON), &rec.Answers); err != nil {
		return nil, err
	}
	return &rec, nil
}
