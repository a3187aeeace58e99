package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"vocabduet/internal/engine"
	"vocabduet/internal/models"
	"vocabduet/internal/validation"
)

// StreakToLearn is the correct streak at which a word is marked learned.
const StreakToLearn = 5

var (
	// ErrSessionNotFound is returned for unknown or already discarded sessions.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionAlreadySubmitted marks a replayed submission; callers
	// treat it as success.
	ErrSessionAlreadySubmitted = errors.New("session already submitted")
)

// VocabularyStore reads and extends a user's vocabulary.
type VocabularyStore interface {
	ListVocabulary(userID, languageCode string) ([]models.VocabularyItem, error)
	GetByIDs(userID string, ids []string) ([]models.VocabularyItem, error)
	InsertNewWords(userID, languageCode string, words []models.NewWord) ([]models.VocabularyItem, error)
}

// PerformanceStore reads and writes per-word performance rows.
type PerformanceStore interface {
	ListPerformance(userID, languageCode string) ([]models.WordPerformance, error)
	GetPerformance(wordID, userID string) (*models.WordPerformance, error)
	UpsertPerformance(perf models.WordPerformance) error
}

// SubmissionStore records completed sessions and the idempotency ledger.
type SubmissionStore interface {
	HasSubmission(sessionUUID string) (bool, error)
	RecordSubmission(rec models.GameSessionRecord) (*models.GameSessionRecord, error)
	ListSessions(userID string, limit int) ([]models.GameSessionRecord, error)
	GetSession(sessionUUID string) (*models.GameSessionRecord, error)
}

// SessionConfig carries the tunable session sizes. SessionTTL bounds
// how long an abandoned session stays in memory before the sweeper
// drops it.
type SessionConfig struct {
	WordCount          int
	MinimumWords       int
	QuickFireWordCount int
	QuickFireTime      time.Duration
	SessionTTL         time.Duration
}

// StartSessionInput is everything needed to begin a play-through.
// TargetUserID is set when a tutor runs the session against the linked
// partner's vocabulary and progress; empty means self-practice.
type StartSessionInput struct {
	UserID        string
	TargetUserID  string
	LanguageCode  string
	Mode          models.GameMode
	ManualWordIDs []string
	NewWords      []models.NewWord
}

// SessionView is the handler-facing snapshot of a session.
type SessionView struct {
	SessionID            string               `json:"sessionId"`
	Mode                 models.GameMode      `json:"mode"`
	State                engine.State         `json:"state"`
	Score                models.Score         `json:"score"`
	Index                int                  `json:"index"`
	Total                int                  `json:"total"`
	Current              *engine.SessionWord  `json:"current,omitempty"`
	TimeRemainingSeconds int                  `json:"timeRemainingSeconds,omitempty"`
	Words                []engine.SessionWord `json:"words,omitempty"`
}

// GradeResult reports one graded answer back to the caller.
type GradeResult struct {
	Accepted       bool                `json:"accepted"`
	Explanation    string              `json:"explanation,omitempty"`
	RateLimited    bool                `json:"rateLimited,omitempty"`
	AdvanceDelayMS int                 `json:"advanceDelayMs"`
	State          engine.State        `json:"state"`
	Score          models.Score        `json:"score"`
	Index          int                 `json:"index"`
	Total          int                 `json:"total"`
	Current        *engine.SessionWord `json:"current,omitempty"`
}

// CompletionView is returned when a session reaches Completed: the
// final result plus the persistence decision for the client to act on.
type CompletionView struct {
	Result   models.SessionResult `json:"result"`
	Decision Decision             `json:"decision"`
}

// activeSession is one live session. The machine is not safe for
// concurrent use, so mu must be held across every machine and
// validator access; handler goroutines hit the same session.
type activeSession struct {
	mu           sync.Mutex
	machine      *engine.Machine
	validator    *validation.Validator
	userID       string
	targetUserID string
	languageCode string
	createdAt    time.Time
}

// progressUserID is the user whose vocabulary and performance the
// session reads and writes.
func (a *activeSession) progressUserID() string {
	if a.targetUserID != "" {
		return a.targetUserID
	}
	return a.userID
}

// SessionService orchestrates live sessions: word selection, answer
// grading, completion, and submission.
type SessionService struct {
	vocab       VocabularyStore
	perf        PerformanceStore
	submissions SubmissionStore
	policy      *PersistencePolicy
	selector    *engine.Selector

	semantic         validation.SemanticClient
	normOpts         validation.NormalizeOptions
	validatorTimeout time.Duration

	cfg SessionConfig
	rng *rand.Rand // nil in production; injected in tests

	mu       sync.Mutex
	sessions map[string]*activeSession
}

// NewSessionService creates a session service
func NewSessionService(
	vocab VocabularyStore,
	perf PerformanceStore,
	submissions SubmissionStore,
	policy *PersistencePolicy,
	selector *engine.Selector,
	semantic validation.SemanticClient,
	normOpts validation.NormalizeOptions,
	validatorTimeout time.Duration,
	cfg SessionConfig,
) *SessionService {
	if cfg.WordCount <= 0 {
		cfg.WordCount = 10
	}
	if cfg.MinimumWords <= 0 {
		cfg.MinimumWords = 1
	}
	if cfg.QuickFireWordCount <= 0 {
		cfg.QuickFireWordCount = 10
	}
	if cfg.QuickFireTime <= 0 {
		cfg.QuickFireTime = 60 * time.Second
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	svc := &SessionService{
		vocab:            vocab,
		perf:             perf,
		submissions:      submissions,
		policy:           policy,
		selector:         selector,
		semantic:         semantic,
		normOpts:         normOpts,
		validatorTimeout: validatorTimeout,
		cfg:              cfg,
		sessions:         make(map[string]*activeSession),
	}
	go svc.cleanupSessions()
	return svc
}

// cleanupSessions periodically drops sessions abandoned mid-play; a
// client that never saves, discards, or aborts must not leak memory.
func (s *SessionService) cleanupSessions() {
	for {
		time.Sleep(10 * time.Minute)
		s.sweepExpired(time.Now())
	}
}

func (s *SessionService) sweepExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if now.Sub(sess.createdAt) > s.cfg.SessionTTL {
			delete(s.sessions, id)
		}
	}
}

// StartSession selects a word set and starts a new machine for it.
// Newly authored words are persisted to the practicing user's
// vocabulary before play begins.
func (s *SessionService) StartSession(in StartSessionInput) (*SessionView, error) {
	if !in.Mode.Valid() {
		return nil, fmt.Errorf("unknown game mode %q", in.Mode)
	}

	progressUser := in.UserID
	if in.TargetUserID != "" {
		progressUser = in.TargetUserID
	}

	vocab, err := s.vocab.ListVocabulary(progressUser, in.LanguageCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	perfMap, err := s.loadPerformance(progressUser, in.LanguageCode)
	if err != nil {
		return nil, err
	}

	var set engine.WordSet
	if in.Mode.IsTimed() {
		set, err = s.selector.SelectQuickFire(vocab, perfMap, s.cfg.QuickFireWordCount, s.rng)
	} else {
		set, err = s.selector.Select(vocab, perfMap, in.ManualWordIDs, in.NewWords, s.cfg.WordCount, s.cfg.MinimumWords)
	}
	if err != nil {
		return nil, err
	}

	// Authored words become part of the vocabulary as soon as the
	// session starts; their performance rows begin with the session's
	// own answers.
	if len(set.NewWords) > 0 {
		created, err := s.vocab.InsertNewWords(progressUser, in.LanguageCode, set.NewWords)
		if err != nil {
			return nil, fmt.Errorf("failed to save new words: %w", err)
		}
		set = engine.WordSet{Items: append(set.Items, created...)}
	}

	machine := engine.NewMachine(in.Mode)
	var timeLimit time.Duration
	if in.Mode.IsTimed() {
		timeLimit = s.cfg.QuickFireTime
	}
	if err := machine.Start(set, timeLimit); err != nil {
		return nil, err
	}

	sess := &activeSession{
		machine:      machine,
		validator:    validation.NewValidator(s.semantic, s.normOpts, s.validatorTimeout),
		userID:       in.UserID,
		targetUserID: in.TargetUserID,
		languageCode: in.LanguageCode,
		createdAt:    time.Now(),
	}

	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	view := s.view(id, sess)
	view.Words = set.SessionWords()
	return view, nil
}

// Grade validates the current question's answer and advances the
// machine. The quick-fire clock is checked first, so a late answer
// completes the session instead of scoring.
func (s *SessionService) Grade(ctx context.Context, sessionID, userAnswer string) (*GradeResult, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.machine.Tick()
	current, ok := sess.machine.Current()
	if !ok {
		return nil, &engine.InvalidTransitionError{State: sess.machine.State(), Op: "grade"}
	}

	verdict := sess.validator.Validate(ctx, userAnswer, current.Translation, validation.WordContext{
		TargetWord:     current.Word,
		TargetLanguage: sess.languageCode,
	})

	rec := models.AnswerRecord{
		WordID:        current.WordID,
		WordText:      current.Word,
		CorrectAnswer: current.Translation,
		UserAnswer:    userAnswer,
		QuestionType:  sess.machine.Mode(),
		IsCorrect:     verdict.Accepted,
		Explanation:   verdict.Explanation,
	}
	if err := sess.machine.Grade(rec); err != nil {
		return nil, err
	}

	res := &GradeResult{
		Accepted:       verdict.Accepted,
		Explanation:    verdict.Explanation,
		RateLimited:    verdict.RateLimited,
		AdvanceDelayMS: int(engine.AdvanceDelay(verdict.Accepted) / time.Millisecond),
		State:          sess.machine.State(),
		Score:          sess.machine.Score(),
		Index:          sess.machine.Index(),
		Total:          sess.machine.Total(),
	}
	if cur, ok := sess.machine.Current(); ok {
		res.Current = &cur
	}
	return res, nil
}

// ContinueBasic disables semantic validation for the rest of the
// session, after a rate-limit notice.
func (s *SessionService) ContinueBasic(sessionID string) error {
	sess, err := s.get(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.validator.UseBasicOnly()
	return nil
}

// Complete finalizes a session and returns the persistence decision.
// For quick-fire it also accepts time running out as completion.
func (s *SessionService) Complete(sessionID string) (*CompletionView, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.machine.Tick()
	if sess.machine.State() != engine.StateCompleted {
		return nil, &engine.InvalidTransitionError{State: sess.machine.State(), Op: "complete"}
	}

	hasPartner := sess.targetUserID != ""
	decision, err := s.policy.DecideForUser(sess.userID, hasPartner)
	if err != nil {
		return nil, err
	}

	return &CompletionView{
		Result:   sess.machine.Result(sessionID, sess.targetUserID, sess.languageCode),
		Decision: decision,
	}, nil
}

// Save submits a completed session: history row, idempotency mark, and
// per-word progress. remember optionally persists the user's prompt
// answer for future sessions; pass SaveAsk to leave it unset.
func (s *SessionService) Save(sessionID string, remember models.SavePreference) (*models.GameSessionRecord, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.machine.State() != engine.StateCompleted {
		return nil, &engine.InvalidTransitionError{State: sess.machine.State(), Op: "save"}
	}

	if remember.Storable() {
		if err := s.policy.RememberChoice(sess.userID, remember); err != nil {
			log.Printf("Failed to remember save preference for %s: %v", sess.userID, err)
		}
	}

	submitted, err := s.submissions.HasSubmission(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check submission ledger: %w", err)
	}
	if submitted {
		return nil, ErrSessionAlreadySubmitted
	}

	result := sess.machine.Result(sessionID, sess.targetUserID, sess.languageCode)
	rec, err := s.submissions.RecordSubmission(models.GameSessionRecord{
		SessionID:        sessionID,
		UserID:           sess.progressUserID(),
		LanguageCode:     sess.languageCode,
		GameMode:         result.GameMode,
		CorrectCount:     result.Score.Correct,
		IncorrectCount:   result.Score.Incorrect,
		TotalTimeSeconds: result.TotalTimeSeconds,
		Answers:          result.Answers,
		SubmittedBy:      sess.userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	s.applyProgress(sess.progressUserID(), sess.languageCode, result.Answers)
	return rec, nil
}

// Discard drops a completed or declined session without saving.
func (s *SessionService) Discard(sessionID string) {
	s.discard(sessionID)
}

// Abort cancels an in-progress session. With recorded answers it
// requires explicit confirmation; the session never reaches the
// persistence policy.
func (s *SessionService) Abort(sessionID string, confirmed bool) error {
	sess, err := s.get(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	err = sess.machine.Abort(confirmed)
	sess.mu.Unlock()
	if err != nil {
		return err
	}
	s.discard(sessionID)
	return nil
}

// RememberChoice persists the user's save-prompt answer without saving
// the session, used when the prompt is declined with "remember".
func (s *SessionService) RememberChoice(userID string, pref models.SavePreference) error {
	return s.policy.RememberChoice(userID, pref)
}

// Owns reports whether the session exists and belongs to the user.
func (s *SessionService) Owns(sessionID, userID string) bool {
	sess, err := s.get(sessionID)
	return err == nil && sess.userID == userID
}

// State returns a snapshot of a live session.
func (s *SessionService) State(sessionID string) (*SessionView, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.machine.Tick()
	return s.view(sessionID, sess), nil
}

// History lists a user's saved sessions, newest first.
func (s *SessionService) History(userID string, limit int) ([]models.GameSessionRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.submissions.ListSessions(userID, limit)
}

// HistoryDetail retrieves one saved session with its full answer list.
// Both the session's subject and its submitter may view it.
func (s *SessionService) HistoryDetail(userID, sessionUUID string) (*models.GameSessionRecord, error) {
	rec, err := s.submissions.GetSession(sessionUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if rec == nil || (rec.UserID != userID && rec.SubmittedBy != userID) {
		return nil, ErrSessionNotFound
	}
	return rec, nil
}

// applyProgress folds a session's answers into per-word performance
// rows. A failed upsert is logged and skipped; progress writes must
// never block the player.
func (s *SessionService) applyProgress(userID, languageCode string, answers []models.AnswerRecord) {
	now := time.Now()
	for _, a := range answers {
		if a.WordID == "" {
			continue
		}

		existing, err := s.perf.GetPerformance(a.WordID, userID)
		if err != nil {
			log.Printf("Failed to read performance for word %s: %v", a.WordID, err)
			continue
		}

		perf := models.WordPerformance{WordID: a.WordID, UserID: userID, LanguageCode: languageCode}
		if existing != nil {
			perf = *existing
		}

		perf.TotalAttempts++
		if a.IsCorrect {
			perf.CorrectAttempts++
			perf.CorrectStreak++
		} else {
			perf.CorrectStreak = 0
		}
		if perf.CorrectStreak >= StreakToLearn && perf.LearnedAt == nil {
			perf.LearnedAt = &now
		}

		if err := s.perf.UpsertPerformance(perf); err != nil {
			log.Printf("Failed to save performance for word %s: %v", a.WordID, err)
		}
	}
}

func (s *SessionService) loadPerformance(userID, languageCode string) (map[string]models.WordPerformance, error) {
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

func (s *SessionService) get(sessionID string) (*activeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionService) discard(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// view snapshots a session. Callers hold sess.mu, except during
// StartSession where the session is not yet published.
func (s *SessionService) view(sessionID string, sess *activeSession) *SessionView {
	v := &SessionView{
		SessionID:            sessionID,
		Mode:                 sess.machine.Mode(),
		State:                sess.machine.State(),
		Score:                sess.machine.Score(),
		Index:                sess.machine.Index(),
		Total:                sess.machine.Total(),
		TimeRemainingSeconds: int(sess.machine.TimeRemaining() / time.Second),
	}
	if cur, ok := sess.machine.Current(); ok {
		v.Current = &cur
	}
	return v
}
