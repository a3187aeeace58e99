package models

import "time"

// VocabularyItem represents a single word in a user's vocabulary.
// Items are immutable once created; the vocabulary store owns them.
type VocabularyItem struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	LanguageCode string    `json:"languageCode"`
	Word         string    `json:"word"`        // target-language text
	Translation  string    `json:"translation"` // native-language text
	WordType     string    `json:"wordType"`    // noun, verb, phrase, ...
	Context      string    `json:"context,omitempty"`
	UnlockedAt   time.Time `json:"unlockedAt"`
}

// WordPerformance tracks one user's history with one word.
// Rows are mutated by session submission; everything else reads them.
type WordPerformance struct {
	WordID          string     `json:"wordId"`
	UserID          string     `json:"userId"`
	LanguageCode    string     `json:"languageCode"`
	TotalAttempts   int        `json:"totalAttempts"`
	CorrectAttempts int        `json:"correctAttempts"`
	CorrectStreak   int        `json:"correctStreak"`
	LearnedAt       *time.Time `json:"learnedAt,omitempty"`
	LastPracticed   *time.Time `json:"lastPracticed,omitempty"`
}

// IncorrectAttempts derives the failure count from the attempt totals.
func (p WordPerformance) IncorrectAttempts() int {
	n := p.TotalAttempts - p.CorrectAttempts
	if n < 0 {
		return 0
	}
	return n
}

// NewWord is a word/translation pair authored during session or
// challenge setup that has not been persisted to the vocabulary yet.
type NewWord struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}
