package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"vocabduet/internal/database"
	"vocabduet/internal/models"
)

// VocabRepository handles vocabulary database operations
type VocabRepository struct {
	db *database.DB
}

// NewVocabRepository creates a new vocabulary repository
func NewVocabRepository(db *database.DB) *VocabRepository {
	return &VocabRepository{db: db}
}

// ListVocabulary retrieves all vocabulary items for a user and language
func (r *VocabRepository) ListVocabulary(userID, languageCode string) ([]models.VocabularyItem, error) {
	query := `
		SELECT id, user_id, language_code, word, translation, word_type, context, unlocked_at
		FROM vocabulary
		WHERE user_id = ? AND language_code = ?
		ORDER BY unlocked_at ASC, id ASC
	`

	rows, err := r.db.Query(query, userID, languageCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.VocabularyItem
	for rows.Next() {
		var item models.VocabularyItem
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.LanguageCode,
			&item.Word,
			&item.Translation,
			&item.WordType,
			&item.Context,
			&item.UnlockedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// GetByIDs retrieves vocabulary items by their IDs, restricted to one user
func (r *VocabRepository) GetByIDs(userID string, ids []string) ([]models.VocabularyItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	query := fmt.Sprintf(`
		SELECT id, user_id, language_code, word, translation, word_type, context, unlocked_at
		FROM vocabulary
		WHERE user_id = ? AND id IN (%s)
	`, placeholders)

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.VocabularyItem
	for rows.Next() {
		var item models.VocabularyItem
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.LanguageCode,
			&item.Word,
			&item.Translation,
			&item.WordType,
			&item.Context,
			&item.UnlockedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// InsertNewWords adds authored word/translation pairs to a user's
// vocabulary and returns the created items
func (r *VocabRepository) InsertNewWords(userID, languageCode string, words []models.NewWord) ([]models.VocabularyItem, error) {
	if len(words) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO vocabulary (id, user_id, language_code, word, translation, word_type, context)
		VALUES (?, ?, ?, ?, ?, '', '')
	`

	created := make([]models.VocabularyItem, 0, len(words))
	for _, w := range words {
		item := models.VocabularyItem{
			ID:           uuid.New().String(),
			UserID:       userID,
			LanguageCode: languageCode,
			Word:         strings.TrimSpace(w.Word),
			Translation:  strings.TrimSpace(w.Translation),
		}
		if item.Word == "" || item.Translation == "" {
			return nil, fmt.Errorf("new word requires both word and translation")
		}
		if _, err := tx.Exec(query, item.ID, item.UserID, item.LanguageCode, item.Word, item.Translation); err != nil {
			return nil, err
		}
		created = append(created, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}
