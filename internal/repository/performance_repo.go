package repository

import (
	"database/sql"

	"vocabduet/internal/database"
	"vocabduet/internal/models"
)

// PerformanceRepository handles word performance database operations
type PerformanceRepository struct {
	db *database.DB
}

// NewPerformanceRepository creates a new performance repository
func NewPerformanceRepository(db *database.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// ListPerformance retrieves all performance rows for a user and language
func (r *PerformanceRepository) ListPerformance(userID, languageCode string) ([]models.WordPerformance, error) {
	query := `
		SELECT word_id, user_id, language_code, total_attempts, correct_attempts,
		       correct_streak, learned_at, last_practiced
		FROM word_performance
		WHERE user_id = ? AND language_code = ?
	`

	rows, err := r.db.Query(query, userID, languageCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perfs []models.WordPerformance
	for rows.Next() {
		perf, err := scanPerformance(rows.Scan)
		if err != nil {
			return nil, err
		}
		perfs = append(perfs, perf)
	}

	return perfs, rows.Err()
}

// GetPerformance retrieves one performance row, or nil if the word has
// never been attempted
func (r *PerformanceRepository) GetPerformance(wordID, userID string) (*models.WordPerformance, error) {
	query := `
		SELECT word_id, user_id, language_code, total_attempts, correct_attempts,
		       correct_streak, learned_at, last_practiced
		FROM word_performance
		WHERE word_id = ? AND user_id = ?
	`

	perf, err := scanPerformance(r.db.QueryRow(query, wordID, userID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &perf, nil
}

// UpsertPerformance writes a performance row, replacing any existing one.
// Counts are absolute; callers fold in the latest attempt before saving.
func (r *PerformanceRepository) UpsertPerformance(perf models.WordPerformance) error {
	query := r.db.Dialect.UpsertWordPerformance()

	var learnedAt sql.NullTime
	if perf.LearnedAt != nil {
		learnedAt = sql.NullTime{Time: *perf.LearnedAt, Valid: true}
	}

	_, err := r.db.Exec(query,
		perf.WordID,
		perf.UserID,
		perf.LanguageCode,
		perf.TotalAttempts,
		perf.CorrectAttempts,
		perf.CorrectStreak,
		learnedAt,
	)
	return err
}

func scanPerformance(scan func(dest ...interface{}) error) (models.WordPerformance, error) {
	var perf models.WordPerformance
	var learnedAt, lastPracticed sql.NullTime

	err := scan(
		&perf.WordID,
		&perf.UserID,
		&perf.LanguageCode,
		&perf.TotalAttempts,
		&perf.CorrectAttempts,
		&perf.CorrectStreak,
		&learnedAt,
		&lastPracticed,
	)
	if err != nil {
		return perf, err
	}

	if learnedAt.Valid {
		perf.LearnedAt = &learnedAt.Time
	}
	if lastPracticed.Valid {
		perf.LastPracticed = &lastPracticed.Time
	}
	return perf, nil
}
