package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"vocabduet/internal/engine"
	"vocabduet/internal/models"
)

// Quick-fire difficulty presets: how long the countdown runs.
const (
	QuickFireEasySeconds   = 90
	QuickFireMediumSeconds = 60
	QuickFireHardSeconds   = 30
)

// ChallengeStore persists challenges.
type ChallengeStore interface {
	CreateChallenge(ch models.Challenge) error
	GetChallenge(id string) (*models.Challenge, error)
	ListForStudent(studentID string, status models.ChallengeStatus) ([]models.Challenge, error)
	ListForTutor(tutorID string, status models.ChallengeStatus) ([]models.Challenge, error)
	MarkCompleted(id string, completedAt time.Time) error
}

// ComposeInput describes a challenge a tutor is sending to the linked
// partner.
type ComposeInput struct {
	TutorID       string
	StudentID     string
	StudentEmail  string
	StudentName   string
	TutorName     string
	LanguageCode  string
	Title         string
	Type          models.ChallengeType
	Config        models.ChallengeConfig
	ManualWordIDs []string
	NewWords      []models.NewWord
}

// ChallengeService assembles and manages asynchronous challenges.
type ChallengeService struct {
	challenges  ChallengeStore
	vocab       VocabularyStore
	perf        PerformanceStore
	selector    *engine.Selector
	prioritizer *engine.Prioritizer
	email       EmailSender
	rng         *rand.Rand // nil in production; injected in tests
}

// NewChallengeService creates a challenge service. email may be nil
// when notifications are disabled.
func NewChallengeService(
	challenges ChallengeStore,
	vocab VocabularyStore,
	perf PerformanceStore,
	selector *engine.Selector,
	prioritizer *engine.Prioritizer,
	email EmailSender,
) *ChallengeService {
	return &ChallengeService{
		challenges:  challenges,
		vocab:       vocab,
		perf:        perf,
		selector:    selector,
		prioritizer: prioritizer,
		email:       email,
	}
}

// TimeLimitForDifficulty maps a quick-fire difficulty preset to its
// countdown length.
func TimeLimitForDifficulty(difficulty string) int {
	switch difficulty {
	case "easy":
		return QuickFireEasySeconds
	case "hard":
		return QuickFireHardSeconds
	}
	return QuickFireMediumSeconds
}

// Compose builds and persists a challenge: new words are added to the
// partner's vocabulary, the word list is filled via the selector (or
// the weak-word suggestion when requested), and the partner is
// notified by email.
func (s *ChallengeService) Compose(ctx context.Context, in ComposeInput) (*models.Challenge, error) {
	cfg := in.Config
	if cfg.WordCount <= 0 {
		cfg.WordCount = 10
	}
	if in.Type == models.ChallengeQuickFire && cfg.TimeLimitSeconds <= 0 {
		cfg.TimeLimitSeconds = TimeLimitForDifficulty(cfg.Difficulty)
	}

	vocab, err := s.vocab.ListVocabulary(in.StudentID, in.LanguageCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	perfMap, err := s.loadPerformance(in.StudentID, in.LanguageCode)
	if err != nil {
		return nil, err
	}

	manual := in.ManualWordIDs
	if len(manual) == 0 && cfg.AutoWeakWords {
		manual = s.suggestWeakWords(vocab, perfMap, cfg.WordCount)
	}

	// Authored words go straight into the partner's vocabulary so the
	// challenge can reference them by id.
	if len(in.NewWords) > 0 {
		created, err := s.vocab.InsertNewWords(in.StudentID, in.LanguageCode, in.NewWords)
		if err != nil {
			return nil, fmt.Errorf("failed to save new words: %w", err)
		}
		for _, it := range created {
			vocab = append(vocab, it)
			manual = append(manual, it.ID)
		}
	}

	var set engine.WordSet
	if in.Type == models.ChallengeQuickFire && len(manual) == 0 {
		set, err = s.selector.SelectQuickFire(vocab, perfMap, cfg.WordCount, s.rng)
	} else {
		set, err = s.selector.Select(vocab, perfMap, manual, nil, cfg.WordCount, 1)
	}
	if err != nil {
		return nil, err
	}

	wordIDs := make([]string, 0, len(set.Items))
	for _, it := range set.Items {
		wordIDs = append(wordIDs, it.ID)
	}

	ch := models.Challenge{
		ID:           uuid.New().String(),
		TutorID:      in.TutorID,
		StudentID:    in.StudentID,
		LanguageCode: in.LanguageCode,
		Type:         in.Type,
		Title:        in.Title,
		Config:       cfg,
		WordIDs:      wordIDs,
		Status:       models.ChallengePending,
		CreatedAt:    time.Now(),
	}

	if err := s.challenges.CreateChallenge(ch); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	// Notification is best-effort; a failed email never fails the
	// challenge.
	if s.email != nil && in.StudentEmail != "" {
		if err := s.email.SendChallengeNotification(ctx, in.StudentEmail, in.StudentName, in.TutorName, ch); err != nil {
			log.Printf("Failed to send challenge notification for %s: %v", ch.ID, err)
		}
	}

	return &ch, nil
}

// suggestWeakWords picks attempted words that are not yet learned,
// weakest streak first.
func (s *ChallengeService) suggestWeakWords(vocab []models.VocabularyItem, perfMap map[string]models.WordPerformance, count int) []string {
	type candidate struct {
		id     string
		streak int
	}

	var candidates []candidate
	for _, it := range vocab {
		p, ok := perfMap[it.ID]
		if !ok || p.TotalAttempts == 0 || p.CorrectStreak >= StreakToLearn {
			continue
		}
		candidates = append(candidates, candidate{id: it.ID, streak: p.CorrectStreak})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].streak < candidates[j].streak
	})

	if len(candidates) > count {
		candidates = candidates[:count]
	}
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.id)
	}
	return ids
}

// Get retrieves one challenge.
func (s *ChallengeService) Get(id string) (*models.Challenge, error) {
	return s.challenges.GetChallenge(id)
}

// Words resolves a challenge's word list to vocabulary items, in the
// order the challenge was composed.
func (s *ChallengeService) Words(ch *models.Challenge) ([]models.VocabularyItem, error) {
	items, err := s.vocab.GetByIDs(ch.StudentID, ch.WordIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge words: %w", err)
	}

	byID := make(map[string]models.VocabularyItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	ordered := make([]models.VocabularyItem, 0, len(ch.WordIDs))
	for _, id := range ch.WordIDs {
		if it, ok := byID[id]; ok {
			ordered = append(ordered, it)
		}
	}
	return ordered, nil
}

// ListForStudent lists a partner's challenges, optionally filtered by
// status.
func (s *ChallengeService) ListForStudent(studentID string, status models.ChallengeStatus) ([]models.Challenge, error) {
	return s.challenges.ListForStudent(studentID, status)
}

// ListForTutor lists the challenges a tutor has sent, optionally
// filtered by status.
func (s *ChallengeService) ListForTutor(tutorID string, status models.ChallengeStatus) ([]models.Challenge, error) {
	return s.challenges.ListForTutor(tutorID, status)
}

// Complete marks a pending challenge as played.
func (s *ChallengeService) Complete(id string) error {
	return s.challenges.MarkCompleted(id, time.Now())
}

func (s *ChallengeService) loadPerformance(userID, languageCode string) (map[string]models.WordPerformance, error) {
	rows, err := s.perf.ListPerformance(userID, languageCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load performance: %w", err)
	}
	perfMap := make(map[string]models.WordPerformance, len(rows))
	for _, p := range rows {
		perfMap[p.WordID] = p
	}
	return perfMap, nil
}
