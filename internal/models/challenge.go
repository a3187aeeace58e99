package models

import "time"

// ChallengeType identifies the kind of asynchronous challenge.
type ChallengeType string

const (
	ChallengeQuiz      ChallengeType = "quiz"
	ChallengeQuickFire ChallengeType = "quickfire"
)

// ChallengeStatus tracks a challenge through its lifecycle.
type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "pending"
	ChallengeCompleted ChallengeStatus = "completed"
)

// ChallengeConfig carries the per-type play settings stored with a
// challenge.
type ChallengeConfig struct {
	WordCount        int      `json:"wordCount"`
	TimeLimitSeconds int      `json:"timeLimitSeconds,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	QuestionTypes    []string `json:"questionTypes,omitempty"`
	AutoWeakWords    bool     `json:"autoWeakWords,omitempty"`
}

// Challenge is a shareable session definition sent from a tutor to the
// linked partner, played asynchronously.
type Challenge struct {
	ID           string          `json:"id"`
	TutorID      string          `json:"tutorId"`
	StudentID    string          `json:"studentId"`
	LanguageCode string          `json:"languageCode"`
	Type         ChallengeType   `json:"type"`
	Title        string          `json:"title"`
	Config       ChallengeConfig `json:"config"`
	WordIDs      []string        `json:"wordIds"`
	Status       ChallengeStatus `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}
