package repository

import (
	"database/sql"

	"vocabduet/internal/database"
	"vocabduet/internal/models"
)

// PreferenceRepository handles save preference database operations
type PreferenceRepository struct {
	db *database.DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *database.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetPreference retrieves a user's save preference. Users with no stored
// preference default to ask.
func (r *PreferenceRepository) GetPreference(userID string) (models.SavePreference, error) {
	var value string
	query := `SELECT save_preference FROM preferences WHERE user_id = ?`
	err := r.db.QueryRow(query, userID).Scan(&value)
	if err == sql.ErrNoRows {
		return models.SaveAsk, nil
	}
	if err != nil {
		return models.SaveAsk, err
	}
	return models.ParseSavePreference(value), nil
}

// HasStoredPreference reports whether the user has ever recorded a choice
func (r *PreferenceRepository) HasStoredPreference(userID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM preferences WHERE user_id = ?`
	err := r.db.QueryRow(query, userID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetPreference updates or inserts a user's save preference
func (r *PreferenceRepository) SetPreference(userID string, pref models.SavePreference) error {
	query := r.db.Dialect.UpsertPreference()
	_, err := r.db.Exec(query, userID, string(pref))
	return err
}
