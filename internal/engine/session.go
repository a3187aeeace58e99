package engine

import (
	"time"

	"vocabduet/internal/models"
)

// State is the lifecycle phase of a game session.
type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateAborted    State = "aborted"
)

// Display pacing after a graded answer. Correct answers advance faster
// so the learner is not held up by their own success.
const (
	CorrectAdvanceDelay   = 800 * time.Millisecond
	IncorrectAdvanceDelay = 1500 * time.Millisecond
)

// AdvanceDelay returns how long the rendering layer should hold the
// feedback view before moving to the next question.
func AdvanceDelay(correct bool) time.Duration {
	if correct {
		return CorrectAdvanceDelay
	}
	return IncorrectAdvanceDelay
}

// Machine drives one play-through of a game mode. It owns the session
// state exclusively: current question, score, and the per-answer
// records. All mutation goes through the named transition methods so
// the machine is testable without any rendering layer.
//
// The machine is not safe for concurrent use; one session is driven by
// one event loop.
type Machine struct {
	mode    models.GameMode
	words   []SessionWord
	index   int
	score   models.Score
	answers []models.AnswerRecord
	state   State

	startedAt time.Time
	deadline  time.Time // zero for untimed modes
	now       func() time.Time
}

// MachineOption configures a Machine at construction.
type MachineOption func(*Machine)

// WithClock injects the time source, used by tests to drive the
// quick-fire countdown deterministically.
func WithClock(now func() time.Time) MachineOption {
	return func(m *Machine) { m.now = now }
}

// NewMachine creates an idle machine for the given mode.
func NewMachine(mode models.GameMode, opts ...MachineOption) *Machine {
	m := &Machine{
		mode:  mode,
		state: StateIdle,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start transitions Idle -> InProgress with the given word set.
// Starting with zero words is a contract violation, not a trivially
// completed session. timeLimit only applies to timed modes.
func (m *Machine) Start(set WordSet, timeLimit time.Duration) error {
	if m.state != StateIdle {
		return &InvalidTransitionError{State: m.state, Op: "start"}
	}
	words := set.SessionWords()
	if len(words) == 0 {
		return &InvalidTransitionError{State: m.state, Op: "start with empty word set"}
	}
	m.words = words
	m.index = 0
	m.score = models.Score{}
	m.answers = make([]models.AnswerRecord, 0, len(words))
	m.startedAt = m.now()
	if m.mode.IsTimed() && timeLimit > 0 {
		m.deadline = m.startedAt.Add(timeLimit)
	}
	m.state = StateInProgress
	return nil
}

// Restart begins a fresh play-through of the same mode with a newly
// selected word set. Prior answers are discarded, never reused.
func (m *Machine) Restart(set WordSet, timeLimit time.Duration) error {
	if m.state == StateIdle {
		return &InvalidTransitionError{State: m.state, Op: "restart"}
	}
	m.state = StateIdle
	m.deadline = time.Time{}
	return m.Start(set, timeLimit)
}

// Grade records one answered question: appends exactly one
// AnswerRecord and updates the score together, then advances. In a
// timed mode an expired clock completes the session instead, and the
// late answer is not scored.
func (m *Machine) Grade(rec models.AnswerRecord) error {
	if m.state != StateInProgress {
		return &InvalidTransitionError{State: m.state, Op: "grade"}
	}
	if m.expired() {
		m.state = StateCompleted
		return &InvalidTransitionError{State: m.state, Op: "grade after time expired"}
	}
	if len(m.answers) >= len(m.words) {
		return &InvalidTransitionError{State: m.state, Op: "grade beyond final question"}
	}

	m.answers = append(m.answers, rec)
	if rec.IsCorrect {
		m.score.Correct++
	} else {
		m.score.Incorrect++
	}
	if m.index < len(m.words)-1 {
		m.index++
	}
	if len(m.answers) == len(m.words) {
		m.state = StateCompleted
	}
	return nil
}

// Tick checks the quick-fire countdown and completes the session when
// time has run out. Unanswered questions stay unscored. No-op for
// untimed modes or outside InProgress.
func (m *Machine) Tick() {
	if m.state == StateInProgress && m.expired() {
		m.state = StateCompleted
	}
}

// Abort transitions InProgress -> Aborted, discarding the session.
// Once at least one answer has been recorded the caller must pass
// confirmed=true, which backs an explicit confirmation prompt. An
// aborted session never reaches the persistence policy.
func (m *Machine) Abort(confirmed bool) error {
	if m.state != StateInProgress {
		return &InvalidTransitionError{State: m.state, Op: "abort"}
	}
	if len(m.answers) > 0 && !confirmed {
		return &InvalidTransitionError{State: m.state, Op: "abort without confirmation"}
	}
	m.state = StateAborted
	m.words = nil
	m.answers = nil
	m.score = models.Score{}
	return nil
}

// Current returns the question in play.
func (m *Machine) Current() (SessionWord, bool) {
	if m.state != StateInProgress || m.index >= len(m.words) {
		return SessionWord{}, false
	}
	return m.words[m.index], true
}

// State returns the lifecycle phase.
func (m *Machine) State() State { return m.state }

// Mode returns the game mode the machine was built for.
func (m *Machine) Mode() models.GameMode { return m.mode }

// Score returns the running tally.
func (m *Machine) Score() models.Score { return m.score }

// Index returns the zero-based position of the current question.
func (m *Machine) Index() int { return m.index }

// Total returns the number of questions in the session.
func (m *Machine) Total() int { return len(m.words) }

// Answers returns a copy of the graded answers in question order.
func (m *Machine) Answers() []models.AnswerRecord {
	out := make([]models.AnswerRecord, len(m.answers))
	copy(out, m.answers)
	return out
}

// TimeRemaining returns the countdown left in a timed session, zero
// once expired or for untimed modes.
func (m *Machine) TimeRemaining() time.Duration {
	if m.deadline.IsZero() {
		return 0
	}
	left := m.deadline.Sub(m.now())
	if left < 0 {
		return 0
	}
	return left
}

// Elapsed returns the wall time since the session started.
func (m *Machine) Elapsed() time.Duration {
	if m.startedAt.IsZero() {
		return 0
	}
	return m.now().Sub(m.startedAt)
}

// Result packages the completed session for the persistence policy.
func (m *Machine) Result(sessionID, targetUserID, languageCode string) models.SessionResult {
	return models.SessionResult{
		SessionID:        sessionID,
		GameMode:         m.mode,
		Score:            m.score,
		Answers:          m.Answers(),
		TotalTimeSeconds: int(m.Elapsed() / time.Second),
		TargetUserID:     targetUserID,
		LanguageCode:     languageCode,
	}
}

func (m *Machine) expired() bool {
	return !m.deadline.IsZero() && !m.now().Before(m.deadline)
}
