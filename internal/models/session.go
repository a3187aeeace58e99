package models

import "time"

// GameMode identifies which practice game drives a session.
type GameMode string

const (
	ModeFlashcards     GameMode = "flashcards"
	ModeMultipleChoice GameMode = "multiple_choice"
	ModeTypeIt         GameMode = "type_it"
	ModeQuickFire      GameMode = "quick_fire"
)

// IsTimed reports whether the mode runs against a countdown instead of
// a fixed traversal.
func (m GameMode) IsTimed() bool {
	return m == ModeQuickFire
}

// Valid reports whether m is a known game mode.
func (m GameMode) Valid() bool {
	switch m {
	case ModeFlashcards, ModeMultipleChoice, ModeTypeIt, ModeQuickFire:
		return true
	}
	return false
}

// AnswerRecord captures one graded question. Records are appended in
// question order and never mutated afterwards.
type AnswerRecord struct {
	WordID        string   `json:"wordId,omitempty"`
	WordText      string   `json:"wordText"`
	CorrectAnswer string   `json:"correctAnswer"`
	UserAnswer    string   `json:"userAnswer,omitempty"`
	QuestionType  GameMode `json:"questionType"`
	IsCorrect     bool     `json:"isCorrect"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Score holds the running correct/incorrect tally for a session.
type Score struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Total returns the number of graded answers.
func (s Score) Total() int {
	return s.Correct + s.Incorrect
}

// SessionResult is the outcome of a completed session, handed to the
// persistence policy and the submission service.
type SessionResult struct {
	SessionID        string         `json:"sessionId"`
	GameMode         GameMode       `json:"gameMode"`
	Score            Score          `json:"score"`
	Answers          []AnswerRecord `json:"answers"`
	TotalTimeSeconds int            `json:"totalTimeSeconds"`
	TargetUserID     string         `json:"targetUserId,omitempty"`
	LanguageCode     string         `json:"languageCode"`
}

// GameSessionRecord is a persisted completed session, kept for history.
// SessionID is the client-generated UUID used for idempotent submission.
type GameSessionRecord struct {
	ID               int64          `json:"id"`
	SessionID        string         `json:"sessionId"`
	UserID           string         `json:"userId"`
	LanguageCode     string         `json:"languageCode"`
	GameMode         GameMode       `json:"gameMode"`
	CorrectCount     int            `json:"correctCount"`
	IncorrectCount   int            `json:"incorrectCount"`
	TotalTimeSeconds int            `json:"totalTimeSeconds"`
	Answers          []AnswerRecord `json:"answers"`
	SubmittedBy      string         `json:"submittedBy"`
	CreatedAt        time.Time      `json:"createdAt"`
}
