package engine

import (
	"sort"

	"vocabduet/internal/models"
)

// PriorityConfig holds the tunable constants behind weak-word
// ranking. The default values are product heuristics; the engine's
// contract does not depend on them.
type PriorityConfig struct {
	// IncorrectWeight multiplies the incorrect-attempt count.
	IncorrectWeight int
	// StreakWeight multiplies the correct streak, which counts against
	// the priority.
	StreakWeight int
	// WeakMaxStreak is the streak below which an attempted word still
	// counts as weak.
	WeakMaxStreak int
}

// DefaultPriorityConfig returns the production tuning.
func DefaultPriorityConfig() PriorityConfig {
	return PriorityConfig{
		IncorrectWeight: 2,
		StreakWeight:    1,
		WeakMaxStreak:   3,
	}
}

// Prioritizer ranks vocabulary by how much the learner needs to
// practice each word. It is pure: no I/O, deterministic for identical
// inputs.
type Prioritizer struct {
	cfg PriorityConfig
}

// NewPrioritizer creates a prioritizer with the given tuning.
func NewPrioritizer(cfg PriorityConfig) *Prioritizer {
	return &Prioritizer{cfg: cfg}
}

// Priority computes the ranking score for one performance record.
// Higher means the word is selected earlier. A word with no history
// scores zero.
func (p *Prioritizer) Priority(perf models.WordPerformance) int {
	return perf.IncorrectAttempts()*p.cfg.IncorrectWeight - perf.CorrectStreak*p.cfg.StreakWeight
}

// IsWeak reports whether a word with the given history counts as not
// yet mastered. Words never attempted are not weak; they are simply
// unranked.
func (p *Prioritizer) IsWeak(perf models.WordPerformance) bool {
	if perf.TotalAttempts == 0 {
		return false
	}
	return perf.IncorrectAttempts() > 0 || perf.CorrectStreak < p.cfg.WeakMaxStreak
}

// Rank returns vocab ordered by descending priority. Words missing
// from perf are treated as having an empty record. The sort is stable,
// so equal-priority words keep their input order and repeated calls
// with identical inputs produce identical output.
func (p *Prioritizer) Rank(vocab []models.VocabularyItem, perf map[string]models.WordPerformance) []models.VocabularyItem {
	ranked := make([]models.VocabularyItem, len(vocab))
	copy(ranked, vocab)

	sort.SliceStable(ranked, func(i, j int) bool {
		return p.Priority(perf[ranked[i].ID]) > p.Priority(perf[ranked[j].ID])
	})
	return ranked
}
