package engine

import (
	"testing"

	"vocabduet/internal/models"
)

func vocabItems(ids ...string) []models.VocabularyItem {
	items := make([]models.VocabularyItem, len(ids))
	for i, id := range ids {
		items[i] = models.VocabularyItem{ID: id, Word: "w-" + id, Translation: "t-" + id}
	}
	return items
}

func TestPriority(t *testing.T) {
	p := NewPrioritizer(DefaultPriorityConfig())

	tests := []struct {
		name string
		perf models.WordPerformance
		want int
	}{
		{
			name: "no history scores zero",
			perf: models.WordPerformance{},
			want: 0,
		},
		{
			name: "two incorrect attempts",
			perf: models.WordPerformance{TotalAttempts: 4, CorrectAttempts: 2},
			want: 4,
		},
		{
			name: "streak counts against priority",
			perf: models.WordPerformance{TotalAttempts: 5, CorrectAttempts: 5, CorrectStreak: 5},
			want: -5,
		},
		{
			name: "mixed record",
			perf: models.WordPerformance{TotalAttempts: 6, CorrectAttempts: 3, CorrectStreak: 1},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Priority(tt.perf); got != tt.want {
				t.Errorf("Priority() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRankWeakWordsFirst(t *testing.T) {
	p := NewPrioritizer(DefaultPriorityConfig())

	vocab := vocabItems("a", "b", "c", "d")
	perf := map[string]models.WordPerformance{
		"b": {TotalAttempts: 3, CorrectAttempts: 1}, // priority 4
		"d": {TotalAttempts: 2, CorrectAttempts: 1}, // priority 2
	}

	got := p.Rank(vocab, perf)
	wantOrder := []string{"b", "d", "a", "c"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestRankStableForTies(t *testing.T) {
	p := NewPrioritizer(DefaultPriorityConfig())

	// All words share priority 0; input order must survive.
	vocab := vocabItems("x", "y", "z")
	for i := 0; i < 10; i++ {
		got := p.Rank(vocab, nil)
		for j, want := range []string{"x", "y", "z"} {
			if got[j].ID != want {
				t.Fatalf("run %d position %d: got %s, want %s", i, j, got[j].ID, want)
			}
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	p := NewPrioritizer(DefaultPriorityConfig())

	vocab := vocabItems("a", "b")
	perf := map[string]models.WordPerformance{
		"b": {TotalAttempts: 1, CorrectAttempts: 0},
	}

	p.Rank(vocab, perf)
	if vocab[0].ID != "a" || vocab[1].ID != "b" {
		t.Error("Rank() mutated its input slice")
	}
}

func TestUnattemptedNeverOutranksFailed(t *testing.T) {
	p := NewPrioritizer(DefaultPriorityConfig())

	vocab := vocabItems("fresh", "failed")
	perf := map[string]models.WordPerformance{
		"failed": {TotalAttempts: 1, CorrectAttempts: 0},
	}

	got := p.Rank(vocab, perf)
	if got[0].ID != "failed" {
		t.Errorf("word with incorrect attempts should rank first, got %s", got[0].ID)
	}
}

func TestIsWeak(t *testing.T) {
	p := NewPrioritizer(DefaultPriorityConfig())

	tests := []struct {
		name string
		perf models.WordPerformance
		want bool
	}{
		{
			name: "never attempted is not weak",
			perf: models.WordPerformance{},
			want: false,
		},
		{
			name: "has failures",
			perf: models.WordPerformance{TotalAttempts: 2, CorrectAttempts: 1, CorrectStreak: 4},
			want: true,
		},
		{
			name: "low streak",
			perf: models.WordPerformance{TotalAttempts: 2, CorrectAttempts: 2, CorrectStreak: 2},
			want: true,
		},
		{
			name: "mastered",
			perf: models.WordPerformance{TotalAttempts: 5, CorrectAttempts: 5, CorrectStreak: 5},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsWeak(tt.perf); got != tt.want {
				t.Errorf("IsWeak() = %v, want %v", got, tt.want)
			}
		})
	}
}
