package engine

import (
	"math/rand"
	"time"

	"vocabduet/internal/models"
)

// WordSet is the fixed word list for one session: vocabulary items in
// play order plus any newly authored pairs not yet persisted. Built
// once per session and immutable for the session's lifetime.
type WordSet struct {
	Items    []models.VocabularyItem
	NewWords []models.NewWord
}

// Size returns the total question count.
func (s WordSet) Size() int {
	return len(s.Items) + len(s.NewWords)
}

// SessionWord is one question in a session. WordID is empty for newly
// authored words that have no vocabulary record yet.
type SessionWord struct {
	WordID      string
	Word        string
	Translation string
}

// SessionWords flattens the set into play order: selected vocabulary
// first, newly authored words after.
func (s WordSet) SessionWords() []SessionWord {
	words := make([]SessionWord, 0, s.Size())
	for _, it := range s.Items {
		words = append(words, SessionWord{WordID: it.ID, Word: it.Word, Translation: it.Translation})
	}
	for _, nw := range s.NewWords {
		words = append(words, SessionWord{Word: nw.Word, Translation: nw.Translation})
	}
	return words
}

// Selector builds session word lists from manual picks, new words, and
// priority-ranked auto-fill.
type Selector struct {
	prioritizer *Prioritizer
}

// NewSelector creates a selector backed by the given prioritizer.
func NewSelector(p *Prioritizer) *Selector {
	return &Selector{prioritizer: p}
}

// Select builds the word set for a linear session. Manually chosen ids
// come first, in the order chosen; remaining capacity is auto-filled
// from the priority ranking of the rest of the vocabulary. Returns a
// BelowMinimumError when the combined set falls short of minimumCount.
// The result never contains duplicate word ids and never exceeds
// targetCount.
func (s *Selector) Select(
	vocab []models.VocabularyItem,
	perf map[string]models.WordPerformance,
	manualIDs []string,
	newWords []models.NewWord,
	targetCount, minimumCount int,
) (WordSet, error) {
	byID := make(map[string]models.VocabularyItem, len(vocab))
	for _, it := range vocab {
		byID[it.ID] = it
	}

	set := WordSet{NewWords: newWords}
	if len(set.NewWords) > targetCount {
		set.NewWords = set.NewWords[:targetCount]
	}
	taken := make(map[string]bool, len(manualIDs))

	for _, id := range manualIDs {
		if taken[id] {
			continue
		}
		it, ok := byID[id]
		if !ok {
			continue
		}
		if set.Size() >= targetCount {
			break
		}
		set.Items = append(set.Items, it)
		taken[id] = true
	}

	if capacity := targetCount - set.Size(); capacity > 0 {
		remaining := make([]models.VocabularyItem, 0, len(vocab))
		for _, it := range vocab {
			if !taken[it.ID] {
				remaining = append(remaining, it)
			}
		}
		for _, it := range s.prioritizer.Rank(remaining, perf) {
			if capacity == 0 {
				break
			}
			set.Items = append(set.Items, it)
			capacity--
		}
	}

	if set.Size() < minimumCount {
		return WordSet{}, &BelowMinimumError{Have: set.Size(), Minimum: minimumCount}
	}
	return set, nil
}

// SelectQuickFire draws a quick-fire word set: up to half the target
// from shuffled weak words, the rest sampled from the remainder, the
// combined set shuffled again. rng may be nil in production, in which
// case a time-seeded source is used; tests inject a seeded source for
// reproducibility.
func (s *Selector) SelectQuickFire(
	vocab []models.VocabularyItem,
	perf map[string]models.WordPerformance,
	count int,
	rng *rand.Rand,
) (WordSet, error) {
	if len(vocab) == 0 {
		return WordSet{}, &BelowMinimumError{Have: 0, Minimum: 1}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var weak, other []models.VocabularyItem
	for _, it := range vocab {
		p, ok := perf[it.ID]
		if ok && s.prioritizer.IsWeak(p) {
			weak = append(weak, it)
		} else {
			other = append(other, it)
		}
	}

	shuffle(weak, rng)
	shuffle(other, rng)

	weakTake := count / 2
	if weakTake > len(weak) {
		weakTake = len(weak)
	}
	otherTake := count - weakTake
	if otherTake > len(other) {
		otherTake = len(other)
	}
	// When the remainder is short, backfill from weak words.
	if short := count - weakTake - otherTake; short > 0 {
		extra := len(weak) - weakTake
		if short > extra {
			short = extra
		}
		weakTake += short
	}

	combined := make([]models.VocabularyItem, 0, weakTake+otherTake)
	combined = append(combined, weak[:weakTake]...)
	combined = append(combined, other[:otherTake]...)
	shuffle(combined, rng)

	return WordSet{Items: combined}, nil
}

func shuffle(items []models.VocabularyItem, rng *rand.Rand) {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
