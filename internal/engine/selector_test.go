package engine

import (
	"errors"
	"math/rand"
	"testing"

	"vocabduet/internal/models"
)

func newSelector() *Selector {
	return NewSelector(NewPrioritizer(DefaultPriorityConfig()))
}

func TestSelectWeakWordsFillFirst(t *testing.T) {
	s := newSelector()

	// 3 weak words (2 incorrect each), 7 untouched. A 5-word auto-fill
	// must yield the 3 weak words first, then 2 of the rest in
	// original relative order.
	vocab := vocabItems("w1", "w2", "w3", "n1", "n2", "n3", "n4", "n5", "n6", "n7")
	perf := map[string]models.WordPerformance{
		"w1": {TotalAttempts: 2, CorrectAttempts: 0},
		"w2": {TotalAttempts: 2, CorrectAttempts: 0},
		"w3": {TotalAttempts: 2, CorrectAttempts: 0},
	}

	set, err := s.Select(vocab, perf, nil, nil, 5, 1)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}

	wantOrder := []string{"w1", "w2", "w3", "n1", "n2"}
	if len(set.Items) != len(wantOrder) {
		t.Fatalf("got %d items, want %d", len(set.Items), len(wantOrder))
	}
	for i, id := range wantOrder {
		if set.Items[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, set.Items[i].ID, id)
		}
	}
}

func TestSelectManualPicksComeFirst(t *testing.T) {
	s := newSelector()

	vocab := vocabItems("a", "b", "c", "d")
	perf := map[string]models.WordPerformance{
		"a": {TotalAttempts: 3, CorrectAttempts: 0}, // weakest, but not picked
	}

	set, err := s.Select(vocab, perf, []string{"d", "b"}, nil, 3, 1)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}

	wantOrder := []string{"d", "b", "a"}
	for i, id := range wantOrder {
		if set.Items[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, set.Items[i].ID, id)
		}
	}
}

func TestSelectNoDuplicatesNeverExceedsTarget(t *testing.T) {
	s := newSelector()

	vocab := vocabItems("a", "b", "c", "d", "e")

	set, err := s.Select(vocab, nil, []string{"a", "a", "b"}, nil, 4, 1)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if set.Size() > 4 {
		t.Errorf("set size %d exceeds target 4", set.Size())
	}

	seen := make(map[string]bool)
	for _, it := range set.Items {
		if seen[it.ID] {
			t.Errorf("duplicate word id %s", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestSelectBelowMinimum(t *testing.T) {
	s := newSelector()

	tests := []struct {
		name     string
		vocab    []models.VocabularyItem
		newWords []models.NewWord
		minimum  int
		wantErr  bool
	}{
		{
			name:    "not enough vocabulary",
			vocab:   vocabItems("a", "b"),
			minimum: 5,
			wantErr: true,
		},
		{
			name:     "new words alone satisfy minimum",
			vocab:    nil,
			newWords: []models.NewWord{{Word: "kot", Translation: "cat"}, {Word: "pies", Translation: "dog"}},
			minimum:  2,
			wantErr:  false,
		},
		{
			name:    "empty vocabulary and no new words",
			vocab:   nil,
			minimum: 1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Select(tt.vocab, nil, nil, tt.newWords, 10, tt.minimum)
			var belowMin *BelowMinimumError
			if tt.wantErr {
				if !errors.As(err, &belowMin) {
					t.Errorf("want BelowMinimumError, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSelectNewWordsCountTowardCapacity(t *testing.T) {
	s := newSelector()

	vocab := vocabItems("a", "b", "c")
	newWords := []models.NewWord{{Word: "kot", Translation: "cat"}}

	set, err := s.Select(vocab, nil, nil, newWords, 3, 1)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got := set.Size(); got != 3 {
		t.Errorf("set size = %d, want 3", got)
	}
	if len(set.Items) != 2 {
		t.Errorf("auto-filled %d items, want 2 (one slot taken by new word)", len(set.Items))
	}
}

func TestSelectTruncatesExcessNewWords(t *testing.T) {
	s := newSelector()

	vocab := vocabItems("a", "b")
	var newWords []models.NewWord
	for i := 0; i < 7; i++ {
		newWords = append(newWords, models.NewWord{
			Word:        string(rune('p' + i)),
			Translation: string(rune('P' + i)),
		})
	}

	set, err := s.Select(vocab, nil, nil, newWords, 5, 1)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got := set.Size(); got != 5 {
		t.Errorf("set size = %d, want 5", got)
	}
	if len(set.NewWords) != 5 {
		t.Errorf("kept %d new words, want first 5", len(set.NewWords))
	}
	if len(set.Items) != 0 {
		t.Errorf("auto-filled %d items, want 0 (new words fill the whole set)", len(set.Items))
	}
	for i, nw := range set.NewWords {
		if nw.Word != newWords[i].Word {
			t.Errorf("new word %d: got %s, want %s (order must be preserved)", i, nw.Word, newWords[i].Word)
		}
	}
}

func TestSelectQuickFireSplit(t *testing.T) {
	s := newSelector()

	vocab := vocabItems("w1", "w2", "w3", "w4", "n1", "n2", "n3", "n4", "n5", "n6")
	perf := map[string]models.WordPerformance{}
	for _, id := range []string{"w1", "w2", "w3", "w4"} {
		perf[id] = models.WordPerformance{TotalAttempts: 2, CorrectAttempts: 0}
	}

	rng := rand.New(rand.NewSource(42))
	set, err := s.SelectQuickFire(vocab, perf, 6, rng)
	if err != nil {
		t.Fatalf("SelectQuickFire() error: %v", err)
	}
	if got := set.Size(); got != 6 {
		t.Fatalf("set size = %d, want 6", got)
	}

	weakCount := 0
	seen := make(map[string]bool)
	for _, it := range set.Items {
		if seen[it.ID] {
			t.Errorf("duplicate word id %s", it.ID)
		}
		seen[it.ID] = true
		if p, ok := perf[it.ID]; ok && p.IncorrectAttempts() > 0 {
			weakCount++
		}
	}
	if weakCount != 3 {
		t.Errorf("weak word count = %d, want 3 (half of target)", weakCount)
	}
}

func TestSelectQuickFireBackfillsFromWeak(t *testing.T) {
	s := newSelector()

	// Every word is weak; the "random remainder" half must be
	// backfilled from the weak pool.
	vocab := vocabItems("a", "b", "c", "d")
	perf := map[string]models.WordPerformance{}
	for _, it := range vocab {
		perf[it.ID] = models.WordPerformance{TotalAttempts: 1, CorrectAttempts: 0}
	}

	set, err := s.SelectQuickFire(vocab, perf, 4, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("SelectQuickFire() error: %v", err)
	}
	if got := set.Size(); got != 4 {
		t.Errorf("set size = %d, want 4", got)
	}
}

func TestSelectQuickFireReproducibleWithSeed(t *testing.T) {
	s := newSelector()
	vocab := vocabItems("a", "b", "c", "d", "e", "f")

	first, err := s.SelectQuickFire(vocab, nil, 4, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("SelectQuickFire() error: %v", err)
	}
	second, err := s.SelectQuickFire(vocab, nil, 4, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("SelectQuickFire() error: %v", err)
	}

	for i := range first.Items {
		if first.Items[i].ID != second.Items[i].ID {
			t.Fatalf("same seed produced different draws at position %d", i)
		}
	}
}

func TestSelectQuickFireEmptyVocabulary(t *testing.T) {
	s := newSelector()

	_, err := s.SelectQuickFire(nil, nil, 10, rand.New(rand.NewSource(1)))
	var belowMin *BelowMinimumError
	if !errors.As(err, &belowMin) {
		t.Errorf("want BelowMinimumError, got %v", err)
	}
}
