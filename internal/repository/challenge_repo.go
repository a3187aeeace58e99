package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"vocabduet/internal/database"
	"vocabduet/internal/models"
)

// ChallengeRepository handles challenge database operations
type ChallengeRepository struct {
	db *database.DB
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *database.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// CreateChallenge persists a new challenge
func (r *ChallengeRepository) CreateChallenge(ch models.Challenge) error {
	configJSON, err := json.Marshal(ch.Config)
	if err != nil {
		return err
	}
	wordIDsJSON, err := json.Marshal(ch.WordIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO challenges (id, tutor_id, student_id, language_code, challenge_type, title, config, word_ids, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		ch.ID,
		ch.TutorID,
		ch.StudentID,
		ch.LanguageCode,
		string(ch.Type),
		ch.Title,
		string(configJSON),
		string(wordIDsJSON),
		string(ch.Status),
	)
	return err
}

// GetChallenge retrieves a challenge by ID, or nil if not found
func (r *ChallengeRepository) GetChallenge(id string) (*models.Challenge, error) {
	query := challengeSelect + ` WHERE id = ?`

	ch, err := scanChallenge(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// ListForStudent retrieves challenges addressed to a student, newest first
func (r *ChallengeRepository) ListForStudent(studentID string, status models.ChallengeStatus) ([]models.Challenge, error) {
	query := challengeSelect + ` WHERE student_id = ?`
	args := []interface{}{studentID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []models.Challenge
	for rows.Next() {
		ch, err := scanChallenge(rows.Scan)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, ch)
	}

	return challenges, rows.Err()
}

// ListForTutor retrieves challenges a tutor has sent, newest first
func (r *ChallengeRepository) ListForTutor(tutorID string, status models.ChallengeStatus) ([]models.Challenge, error) {
	query := challengeSelect + ` WHERE tutor_id = ?`
	args := []interface{}{tutorID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []models.Challenge
	for rows.Next() {
		ch, err := scanChallenge(rows.Scan)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, ch)
	}

	return challenges, rows.Err()
}

// MarkCompleted records the completion time on a pending challenge
func (r *ChallengeRepository) MarkCompleted(id string, completedAt time.Time) error {
	query := `
		UPDATE challenges
		SET status = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`
	_, err := r.db.Exec(query, string(models.ChallengeCompleted), completedAt, id, string(models.ChallengePending))
	return err
}

const challengeSelect = `
	SELECT id, tutor_id, student_id, language_code, challenge_type, title, config, word_ids, status, created_at, completed_at
	FROM challenges`

func scanChallenge(scan func(dest ...interface{}) error) (models.Challenge, error) {
	var ch models.Challenge
	var configJSON, wordIDsJSON string
	var completedAt sql.NullTime

	err := scan(
		&ch.ID,
		&ch.TutorID,
		&ch.StudentID,
		&ch.LanguageCode,
		&ch.Type,
		&ch.Title,
		&configJSON,
		&wordIDsJSON,
		&ch.Status,
		&ch.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return ch, err
	}

	if err := json.Unmarshal([]byte(configJSON), &ch.Config); err != nil {
		return ch, err
	}
	if err := json.Unmarshal([]byte(wordIDsJSON), &ch.WordIDs); err != nil {
		return ch, err
	}
	if completedAt.Valid {
		ch.CompletedAt = &completedAt.Time
	}
	return ch, nil
}
